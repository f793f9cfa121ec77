package transfer

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"

	"memfs/pkg/endpoint"
	"memfs/pkg/ui"
)

// Writer 将数据写入端点文件系统，并在写入后校验内容
type Writer struct {
	FS       endpoint.FileSystem
	Checksum endpoint.ChecksumAlgo
	Logger   *slog.Logger
	Progress ui.Progress
}

// Result 描述一次写入
type Result struct {
	RelPath  string
	Bytes    int64
	Checksum string
}

// ErrChecksumMismatch 表示写入端内容与源数据不一致
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Write 把 src 的内容完整写入 relPath；size 仅用于进度显示，未知时传 0
func (w *Writer) Write(ctx context.Context, relPath string, src io.Reader, size int64) (Result, error) {
	logger := w.logger()
	progress := w.progress()
	result := Result{RelPath: relPath}

	dest, err := w.FS.Create(ctx, relPath, 0o644)
	if err != nil {
		return result, fmt.Errorf("create %s: %w", relPath, err)
	}

	progress.Start(size, relPath)
	writers := []io.Writer{dest, progressWriter{progress: progress}}
	srcHash := newHash(w.Checksum)
	if srcHash != nil {
		writers = append(writers, srcHash)
	}
	n, copyErr := io.Copy(io.MultiWriter(writers...), contextReader{ctx: ctx, r: src})
	closeErr := dest.Close()
	progress.Finish()
	result.Bytes = n
	if copyErr != nil {
		return result, fmt.Errorf("write %s: %w", relPath, copyErr)
	}
	if closeErr != nil {
		return result, fmt.Errorf("close %s: %w", relPath, closeErr)
	}
	if srcHash == nil {
		logger.Debug("write finished without verification", "path", relPath, "bytes", n)
		return result, nil
	}

	srcSum := srcHash.Sum(nil)
	destSum, err := w.destChecksum(ctx, relPath)
	if err != nil {
		return result, fmt.Errorf("verify %s: %w", relPath, err)
	}
	if !bytes.Equal(srcSum, destSum) {
		if rmErr := w.FS.Remove(ctx, relPath); rmErr != nil {
			logger.Warn("failed to remove corrupt file", "path", relPath, "err", rmErr)
		}
		return result, fmt.Errorf("%s: %w", relPath, ErrChecksumMismatch)
	}
	result.Checksum = fmt.Sprintf("%x", srcSum)
	logger.Debug("write verified", "path", relPath, "bytes", n, "algo", w.Checksum, "sum", result.Checksum)
	return result, nil
}

func (w *Writer) destChecksum(ctx context.Context, relPath string) ([]byte, error) {
	if remote, ok := w.FS.(endpoint.RemoteHashFS); ok {
		sum, err := remote.ComputeRemoteHash(ctx, relPath, w.Checksum)
		if err == nil {
			return sum, nil
		}
		if !errors.Is(err, endpoint.ErrHashCommandUnavailable) {
			return nil, err
		}
		w.logger().Debug("remote hash unavailable, reading back", "path", relPath)
	}
	reader, err := w.FS.Open(ctx, relPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	h := newHash(w.Checksum)
	if _, err := io.Copy(h, reader); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

func (w *Writer) progress() ui.Progress {
	if w.Progress == nil {
		return ui.NoopProgress{}
	}
	return w.Progress
}

func newHash(algo endpoint.ChecksumAlgo) hash.Hash {
	switch algo {
	case endpoint.ChecksumMD5:
		return md5.New()
	case endpoint.ChecksumSHA1:
		return sha1.New()
	case endpoint.ChecksumSHA256:
		return sha256.New()
	default:
		return nil
	}
}

type progressWriter struct {
	progress ui.Progress
}

func (p progressWriter) Write(b []byte) (int, error) {
	p.progress.AddBytes(int64(len(b)))
	return len(b), nil
}

// contextReader 在每次读取前检查 ctx
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
