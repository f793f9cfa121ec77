package endpoint

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"time"
)

// FileMeta 描述存放端上的快照文件
type FileMeta struct {
	RelPath string
	Size    int64
	ModTime time.Time
}

// FileSystem 抽象快照存放端的文件能力，路径均相对于 Root
type FileSystem interface {
	Root() string
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	Create(ctx context.Context, relPath string, perm fs.FileMode) (io.WriteCloser, error)
	MkdirAll(ctx context.Context, relPath string) error
	Remove(ctx context.Context, relPath string) error
	Stat(ctx context.Context, relPath string) (FileMeta, error)
	Close() error
}

// IsNotFound 判断错误是否表示目标不存在，兼容 ssh 命令输出
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	return strings.Contains(err.Error(), "No such file") || strings.Contains(err.Error(), "not found")
}
