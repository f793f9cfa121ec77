package endpoint

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalFS 基于 afero 实现 FileSystem，生产环境使用 OsFs
type LocalFS struct {
	fs   afero.Fs
	root string
}

// NewLocalFS 创建基于真实文件系统的 LocalFS
func NewLocalFS(root string) *LocalFS {
	return NewLocalFSWith(afero.NewOsFs(), root)
}

// NewLocalFSWith 使用给定的 afero.Fs，测试中可传入 MemMapFs
func NewLocalFSWith(base afero.Fs, root string) *LocalFS {
	return &LocalFS{fs: base, root: root}
}

func (l *LocalFS) Root() string {
	return l.root
}

func (l *LocalFS) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	return l.fs.Open(l.full(relPath))
}

func (l *LocalFS) Create(_ context.Context, relPath string, perm fs.FileMode) (io.WriteCloser, error) {
	full := l.full(relPath)
	if err := l.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return l.fs.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
}

func (l *LocalFS) MkdirAll(_ context.Context, relPath string) error {
	return l.fs.MkdirAll(l.full(relPath), 0o755)
}

func (l *LocalFS) Remove(_ context.Context, relPath string) error {
	return l.fs.RemoveAll(l.full(relPath))
}

func (l *LocalFS) Stat(_ context.Context, relPath string) (FileMeta, error) {
	info, err := l.fs.Stat(l.full(relPath))
	if err != nil {
		return FileMeta{}, fmt.Errorf("stat %s: %w", relPath, err)
	}
	return FileMeta{
		RelPath: relPath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (l *LocalFS) Close() error {
	return nil
}

func (l *LocalFS) full(relPath string) string {
	return filepath.Join(l.root, relPath)
}
