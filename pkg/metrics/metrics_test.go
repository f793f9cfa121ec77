package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCommand(t *testing.T) {
	r := New()
	r.ObserveCommand("mkdir", OutcomeOK, time.Millisecond, 2)
	r.ObserveCommand("mkdir", OutcomeOK, time.Millisecond, 3)
	r.ObserveCommand("cat", OutcomeFailed, time.Millisecond, 3)

	if got := testutil.ToFloat64(r.commandsTotal.WithLabelValues("mkdir", OutcomeOK)); got != 2 {
		t.Fatalf("mkdir ok = %v", got)
	}
	if got := testutil.ToFloat64(r.commandsTotal.WithLabelValues("cat", OutcomeFailed)); got != 1 {
		t.Fatalf("cat failed = %v", got)
	}
	if got := testutil.ToFloat64(r.namespaceEntries); got != 3 {
		t.Fatalf("entries = %v", got)
	}
}

func TestObserveSnapshot(t *testing.T) {
	r := New()
	r.ObserveSnapshot("save", 128, nil)
	r.ObserveSnapshot("save", 0, errors.New("boom"))
	if got := testutil.ToFloat64(r.snapshotBytes.WithLabelValues("save")); got != 128 {
		t.Fatalf("bytes = %v", got)
	}
	if got := testutil.ToFloat64(r.snapshotsTotal.WithLabelValues("save", "error")); got != 1 {
		t.Fatalf("errors = %v", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveCommand("ls", OutcomeOK, 0, 1)
	r.ObserveSnapshot("load", 1, nil)
	r.SetEntries(1)
}

func TestServe(t *testing.T) {
	r := New()
	r.SetEntries(7)
	ctx, cancel := context.WithCancel(context.Background())
	addr, done, err := r.Serve(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	resp, err := http.Get("http://" + addr.String() + "/metrics")
	if err != nil {
		cancel()
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "memfs_namespace_entries 7") {
		cancel()
		t.Fatalf("metrics body missing gauge:\n%s", body)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server exit: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
