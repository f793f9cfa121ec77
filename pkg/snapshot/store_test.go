package snapshot

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"memfs/pkg/endpoint"
	"memfs/pkg/namespace"
)

type countingProgress struct {
	started  int
	finished int
	bytes    int64
}

func (c *countingProgress) Start(total int64, desc string) { c.started++ }
func (c *countingProgress) AddBytes(n int64)               { c.bytes += n }
func (c *countingProgress) Finish()                        { c.finished++ }

func sampleState(t *testing.T) namespace.State {
	t.Helper()
	s := namespace.New()
	if _, err := s.MakeDirectory("docs"); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := s.WriteContent("'hello' > /docs/a.txt"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.ChangeDirectory("docs"); err != nil {
		t.Fatalf("cd: %v", err)
	}
	return s.Snapshot()
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	fs := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/snapshots")
	progress := &countingProgress{}
	store := NewStore(fs, Options{Checksum: endpoint.ChecksumSHA256, Progress: progress})

	state := sampleState(t)
	res, err := store.Save(ctx, "nested/state.json", state)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if res.Checksum == "" || res.Bytes == 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	loaded, n, err := store.Load(ctx, "nested/state.json")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if n != res.Bytes {
		t.Fatalf("read %d bytes, wrote %d", n, res.Bytes)
	}
	if loaded.CurrentDirectory != "/docs" {
		t.Fatalf("unexpected cwd %s", loaded.CurrentDirectory)
	}
	if got := loaded.FileSystem["/docs/a.txt"]; !got.IsFile() || got.Content != "hello" {
		t.Fatalf("unexpected file node %+v", got)
	}
	if !loaded.FileSystem["/docs"].IsDir() {
		t.Fatalf("directory tag lost")
	}
	if progress.started != 2 || progress.finished != 2 || progress.bytes != 2*res.Bytes {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode(namespace.New().Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "{\n  \"currentDirectory\": \"/\",\n  \"fileSystem\": {\n    \"/\": {}\n  }\n}\n"
	if string(data) != want {
		t.Fatalf("unexpected encoding:\n%s", data)
	}
}

func TestLoadMissing(t *testing.T) {
	fs := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/snapshots")
	store := NewStore(fs, Options{})
	if _, _, err := store.Load(context.Background(), "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsInvalidState(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := afero.WriteFile(base, "/snapshots/bad.json", []byte(`{"currentDirectory":"/x","fileSystem":{"/":{}}}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewStore(endpoint.NewLocalFSWith(base, "/snapshots"), Options{})
	if _, _, err := store.Load(context.Background(), "bad.json"); !errors.Is(err, namespace.ErrInvalidState) {
		t.Fatalf("err = %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil || !strings.Contains(err.Error(), "decode snapshot") {
		t.Fatalf("err = %v", err)
	}
}

type brokenFS struct {
	endpoint.FileSystem
}

func (b brokenFS) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	return nil, errors.New("connection reset")
}

func TestLoadPropagatesErrors(t *testing.T) {
	fs := brokenFS{endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/")}
	_, _, err := NewStore(fs, Options{}).Load(context.Background(), "x.json")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
