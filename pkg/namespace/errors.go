package namespace

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 路径不存在或类型不符
	ErrNotFound = errors.New("not found")
	// ErrExists 路径已存在
	ErrExists = errors.New("already exists")
	// ErrParentNotFound 父目录不存在
	ErrParentNotFound = errors.New("parent directory not found")
	// ErrNotDirectory 目标不是目录
	ErrNotDirectory = errors.New("not a directory")
	// ErrIsDirectory 目标是目录
	ErrIsDirectory = errors.New("is a directory")
	// ErrSyntax echo 语法错误
	ErrSyntax = errors.New("invalid syntax")
	// ErrRoot 根目录不允许被移动、覆盖或删除
	ErrRoot = errors.New("root directory cannot be modified")
	// ErrInvalidState 快照内容不满足命名空间约束
	ErrInvalidState = errors.New("invalid state")
)

// PathError 记录失败的操作与对应路径
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}
