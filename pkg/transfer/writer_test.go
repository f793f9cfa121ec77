package transfer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"memfs/pkg/endpoint"
)

type corruptFS struct {
	endpoint.FileSystem
}

func (c corruptFS) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("tampered")), nil
}

type hashFS struct {
	endpoint.FileSystem
	sum   []byte
	err   error
	calls int
}

func (h *hashFS) ComputeRemoteHash(ctx context.Context, rel string, algo endpoint.ChecksumAlgo) ([]byte, error) {
	h.calls++
	return h.sum, h.err
}

func readAll(t *testing.T, fs endpoint.FileSystem, rel string) string {
	t.Helper()
	r, err := fs.Open(context.Background(), rel)
	if err != nil {
		t.Fatalf("open %s: %v", rel, err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	return string(data)
}

func TestWriterWrite(t *testing.T) {
	fs := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/out")
	w := Writer{FS: fs, Checksum: endpoint.ChecksumSHA256}
	content := "hello world"
	res, err := w.Write(context.Background(), "state.json", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if res.Bytes != int64(len(content)) {
		t.Fatalf("unexpected byte count %d", res.Bytes)
	}
	if res.Checksum != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Fatalf("unexpected checksum %s", res.Checksum)
	}
	if got := readAll(t, fs, "state.json"); got != content {
		t.Fatalf("unexpected content: %s", got)
	}
}

func TestWriterWithoutChecksum(t *testing.T) {
	fs := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/out")
	w := Writer{FS: corruptFS{fs}, Checksum: endpoint.ChecksumNone}
	res, err := w.Write(context.Background(), "a", strings.NewReader("data"), 0)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if res.Checksum != "" {
		t.Fatalf("checksum should be empty, got %s", res.Checksum)
	}
}

func TestWriterDetectsMismatch(t *testing.T) {
	base := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/out")
	w := Writer{FS: corruptFS{base}, Checksum: endpoint.ChecksumMD5}
	_, err := w.Write(context.Background(), "state.json", strings.NewReader("original"), 8)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v", err)
	}
	if _, err := base.Stat(context.Background(), "state.json"); !endpoint.IsNotFound(err) {
		t.Fatalf("corrupt file should be removed, stat err = %v", err)
	}
}

func TestWriterUsesRemoteHash(t *testing.T) {
	base := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/out")
	fs := &hashFS{FileSystem: base, sum: []byte{1, 2, 3}}
	w := Writer{FS: fs, Checksum: endpoint.ChecksumSHA1}
	if _, err := w.Write(context.Background(), "x", strings.NewReader("abc"), 3); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v", err)
	}
	if fs.calls != 1 {
		t.Fatalf("remote hash not used")
	}
}

func TestWriterFallsBackWhenRemoteHashUnavailable(t *testing.T) {
	base := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/out")
	fs := &hashFS{FileSystem: base, err: endpoint.ErrHashCommandUnavailable}
	w := Writer{FS: fs, Checksum: endpoint.ChecksumSHA256}
	if _, err := w.Write(context.Background(), "x", strings.NewReader("abc"), 3); err != nil {
		t.Fatalf("fallback verification failed: %v", err)
	}
}

func TestWriterHonoursContext(t *testing.T) {
	fs := endpoint.NewLocalFSWith(afero.NewMemMapFs(), "/out")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := Writer{FS: fs, Checksum: endpoint.ChecksumNone}
	if _, err := w.Write(ctx, "x", strings.NewReader("abc"), 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
