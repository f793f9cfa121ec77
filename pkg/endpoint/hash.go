package endpoint

import (
	"context"
	"errors"
)

// ErrHashCommandUnavailable 表示远端不支持某个 hash 命令
var ErrHashCommandUnavailable = errors.New("hash command unavailable")

// RemoteHashFS 表示能够在存放端直接计算摘要的文件系统，避免把快照读回本地
type RemoteHashFS interface {
	ComputeRemoteHash(ctx context.Context, relPath string, algo ChecksumAlgo) ([]byte, error)
}
