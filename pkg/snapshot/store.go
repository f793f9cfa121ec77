package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"memfs/pkg/endpoint"
	"memfs/pkg/namespace"
	"memfs/pkg/transfer"
	"memfs/pkg/ui"
)

// ErrNotFound 表示快照文件不存在
var ErrNotFound = errors.New("snapshot not found")

// Options 控制快照读写的校验、进度与日志
type Options struct {
	Checksum endpoint.ChecksumAlgo
	Progress ui.Progress
	Logger   *slog.Logger
}

// Store 负责在端点上存取会话快照
type Store struct {
	fs   endpoint.FileSystem
	opts Options
}

// NewStore 创建 Store
func NewStore(fs endpoint.FileSystem, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Progress == nil {
		opts.Progress = ui.NoopProgress{}
	}
	return &Store{fs: fs, opts: opts}
}

// Encode 生成快照文件内容，两空格缩进
func Encode(state namespace.State) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode 解析并校验快照内容
func Decode(data []byte) (namespace.State, error) {
	var state namespace.State
	if err := json.Unmarshal(data, &state); err != nil {
		return namespace.State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := state.Validate(); err != nil {
		return namespace.State{}, err
	}
	return state, nil
}

// Save 将 state 写入 rel，写入后按配置的算法校验
func (s *Store) Save(ctx context.Context, rel string, state namespace.State) (transfer.Result, error) {
	data, err := Encode(state)
	if err != nil {
		return transfer.Result{RelPath: rel}, err
	}
	if dir := path.Dir(rel); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(ctx, dir); err != nil {
			return transfer.Result{RelPath: rel}, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	w := transfer.Writer{
		FS:       s.fs,
		Checksum: s.opts.Checksum,
		Logger:   s.opts.Logger,
		Progress: s.opts.Progress,
	}
	res, err := w.Write(ctx, rel, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return res, err
	}
	s.opts.Logger.Info("snapshot saved", "root", s.fs.Root(), "path", rel, "bytes", res.Bytes, "entries", len(state.FileSystem))
	return res, nil
}

// Load 读取 rel 处的快照，返回状态与读取的字节数
func (s *Store) Load(ctx context.Context, rel string) (namespace.State, int64, error) {
	reader, err := s.fs.Open(ctx, rel)
	if err != nil {
		if endpoint.IsNotFound(err) {
			return namespace.State{}, 0, fmt.Errorf("%s: %w", rel, ErrNotFound)
		}
		return namespace.State{}, 0, err
	}
	defer reader.Close()

	size := int64(0)
	if meta, err := s.fs.Stat(ctx, rel); err == nil {
		size = meta.Size
	}
	s.opts.Progress.Start(size, rel)
	data, err := io.ReadAll(io.TeeReader(reader, progressWriter{s.opts.Progress}))
	s.opts.Progress.Finish()
	if err != nil {
		return namespace.State{}, int64(len(data)), fmt.Errorf("read %s: %w", rel, err)
	}
	state, err := Decode(data)
	if err != nil {
		return namespace.State{}, int64(len(data)), fmt.Errorf("%s: %w", rel, err)
	}
	s.opts.Logger.Info("snapshot loaded", "root", s.fs.Root(), "path", rel, "bytes", len(data), "entries", len(state.FileSystem))
	return state, int64(len(data)), nil
}

type progressWriter struct {
	progress ui.Progress
}

func (p progressWriter) Write(b []byte) (int, error) {
	p.progress.AddBytes(int64(len(b)))
	return len(b), nil
}
