package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"memfs/pkg/dispatch"
	"memfs/pkg/endpoint"
	"memfs/pkg/logging"
	"memfs/pkg/metrics"
	"memfs/pkg/namespace"
	"memfs/pkg/shell"
	"memfs/pkg/snapshot"
	"memfs/pkg/ui"
)

const (
	directionLoad = "load"
	directionSave = "save"
)

// Run 运行一次交互会话：可选恢复快照、执行命令循环、退出时按需保存
func Run(ctx context.Context, cfg *Config, in io.Reader, out, errOut io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg, errOut)
	if err != nil {
		return err
	}
	defer logger.Close()

	recorder := metrics.New()
	if cfg.MetricsAddr != "" {
		addr, done, err := recorder.Serve(ctx, cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("start metrics listener: %w", err)
		}
		logger.Info("metrics listening", "addr", addr.String())
		go func() {
			if err := <-done; err != nil {
				logger.Warn("metrics server stopped", "err", err)
			}
		}()
	}

	progress := newProgress(cfg, errOut)
	session := namespace.New()
	if cfg.LoadFrom != "" {
		state, err := loadState(ctx, cfg, cfg.LoadFrom, progress, logger.Logger, recorder)
		if err != nil {
			return err
		}
		if err := session.Restore(state); err != nil {
			return fmt.Errorf("restore %s: %w", cfg.LoadFrom, err)
		}
		logger.Info("session restored", "from", cfg.LoadFrom, "cwd", session.Cwd(), "entries", session.Len())
	}
	recorder.SetEntries(session.Len())

	sh := shell.New(dispatch.New(session, logger.Logger, recorder), shell.Options{
		In:          in,
		Out:         out,
		Interactive: cfg.Interactive,
		Cwd:         session.Cwd,
		SaveTo:      cfg.SaveTo,
		Save: func(ctx context.Context, dest string) error {
			return saveState(ctx, cfg, dest, session.Snapshot(), progress, logger.Logger, recorder)
		},
		Logger: logger.Logger,
	})
	return sh.Run(ctx)
}

// Inspect 打印 raw 处快照的当前目录与全部路径
func Inspect(ctx context.Context, cfg *Config, raw string, out, errOut io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg, errOut)
	if err != nil {
		return err
	}
	defer logger.Close()

	state, err := loadState(ctx, cfg, raw, newProgress(cfg, errOut), logger.Logger, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current directory: %s\n", state.CurrentDirectory)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSIZE\tPATH")
	s := namespace.New()
	if err := s.Restore(state); err != nil {
		return err
	}
	for _, p := range s.Paths() {
		n, _ := s.Lookup(p)
		size := "-"
		if n.IsFile() {
			size = fmt.Sprintf("%d", len(n.Content))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Kind, size, p)
	}
	return tw.Flush()
}

func loadState(ctx context.Context, cfg *Config, raw string, progress ui.Progress, logger *slog.Logger, recorder *metrics.Recorder) (namespace.State, error) {
	store, fs, rel, err := openStore(ctx, cfg, raw, progress, logger)
	if err != nil {
		return namespace.State{}, err
	}
	defer fs.Close()
	state, n, err := store.Load(ctx, rel)
	recorder.ObserveSnapshot(directionLoad, n, err)
	if err != nil {
		return namespace.State{}, fmt.Errorf("load snapshot: %w", err)
	}
	return state, nil
}

func saveState(ctx context.Context, cfg *Config, raw string, state namespace.State, progress ui.Progress, logger *slog.Logger, recorder *metrics.Recorder) error {
	store, fs, rel, err := openStore(ctx, cfg, raw, progress, logger)
	if err != nil {
		recorder.ObserveSnapshot(directionSave, 0, err)
		return err
	}
	defer fs.Close()
	res, err := store.Save(ctx, rel, state)
	recorder.ObserveSnapshot(directionSave, res.Bytes, err)
	return err
}

func openStore(ctx context.Context, cfg *Config, raw string, progress ui.Progress, logger *slog.Logger) (*snapshot.Store, endpoint.FileSystem, string, error) {
	ep, err := endpoint.ParseEndpoint(raw, cfg.Endpoint)
	if err != nil {
		return nil, nil, "", err
	}
	if ep.Type == endpoint.EndpointLocal {
		abs, err := filepath.Abs(ep.Path)
		if err != nil {
			return nil, nil, "", err
		}
		ep.Path = abs
	}
	fs, rel, err := endpoint.Connect(ctx, ep)
	if err != nil {
		return nil, nil, "", fmt.Errorf("connect %s: %w", ep.DisplayName(), err)
	}
	logger.Debug("snapshot endpoint", "type", ep.Type, "location", ep.DisplayName())
	store := snapshot.NewStore(fs, snapshot.Options{
		Checksum: cfg.Checksum,
		Progress: progress,
		Logger:   logger,
	})
	return store, fs, rel, nil
}

func newLogger(cfg *Config, errOut io.Writer) (*logging.Logger, error) {
	writers := []io.Writer{errOut}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
	}
	return logging.New(cfg.LogLevel, writers...)
}

func newProgress(cfg *Config, errOut io.Writer) ui.Progress {
	if cfg.NoProgress {
		return ui.NoopProgress{}
	}
	return ui.NewBarProgress(errOut)
}
