// Package metrics 提供命令分发与快照写入的 Prometheus 指标。
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome 标记命令执行结果
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeUnknown = "unknown"
)

// Recorder 汇总所有指标
type Recorder struct {
	registry *prometheus.Registry

	commandsTotal    *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	namespaceEntries prometheus.Gauge
	snapshotBytes    *prometheus.CounterVec
	snapshotsTotal   *prometheus.CounterVec
}

// New 在独立的 registry 上注册指标
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memfs_commands_total",
				Help: "Total number of dispatched shell commands",
			},
			[]string{"command", "outcome"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "memfs_command_duration_seconds",
				Help:    "Time spent executing a shell command",
				Buckets: []float64{.00001, .0001, .001, .01, .1},
			},
			[]string{"command"},
		),
		namespaceEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memfs_namespace_entries",
				Help: "Number of paths currently stored in the namespace",
			},
		),
		snapshotBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memfs_snapshot_bytes_total",
				Help: "Bytes of snapshot data transferred",
			},
			[]string{"direction"},
		),
		snapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "memfs_snapshots_total",
				Help: "Snapshot load/save attempts",
			},
			[]string{"direction", "status"},
		),
	}
	reg.MustRegister(r.commandsTotal, r.commandDuration, r.namespaceEntries, r.snapshotBytes, r.snapshotsTotal)
	return r
}

// Registry 返回底层 registry，便于测试与导出
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveCommand 记录一次命令
func (r *Recorder) ObserveCommand(command, outcome string, elapsed time.Duration, entries int) {
	if r == nil {
		return
	}
	r.commandsTotal.WithLabelValues(command, outcome).Inc()
	r.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
	r.namespaceEntries.Set(float64(entries))
}

// SetEntries 更新命名空间大小
func (r *Recorder) SetEntries(entries int) {
	if r == nil {
		return
	}
	r.namespaceEntries.Set(float64(entries))
}

// ObserveSnapshot 记录一次快照读写，direction 为 load 或 save
func (r *Recorder) ObserveSnapshot(direction string, bytes int64, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.snapshotsTotal.WithLabelValues(direction, status).Inc()
	if bytes > 0 {
		r.snapshotBytes.WithLabelValues(direction).Add(float64(bytes))
	}
}

// Handler 返回 /metrics 处理器
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve 在 addr 上暴露 /metrics，ctx 取消后关闭
func (r *Recorder) Serve(ctx context.Context, addr string) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return ln.Addr(), done, nil
}
