package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger 包装 slog.Logger，统一关闭日志文件
type Logger struct {
	*slog.Logger
	closers []io.Closer
}

// New 创建 Logger，输出到给定 writer；标准输出/错误不会被关闭
func New(level string, writers ...io.Writer) (*Logger, error) {
	if len(writers) == 0 {
		return nil, fmt.Errorf("at least one log writer is required")
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	var closerList []io.Closer
	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = io.MultiWriter(writers...)
	}
	for _, w := range writers {
		if c, ok := w.(io.Closer); ok && !isStdStream(w) {
			closerList = append(closerList, c)
		}
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: lvl,
	})
	return &Logger{
		Logger:  slog.New(handler),
		closers: closerList,
	}, nil
}

// Discard 返回丢弃全部输出的 Logger
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Close 关闭所有 writer
func (l *Logger) Close() error {
	var lastErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			lastErr = err
		}
	}
	l.closers = nil
	return lastErr
}

// ParseLevel 解析 debug / info / warn / error，空字符串视为 info
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

type namedFile interface {
	Name() string
}

func isStdStream(w io.Writer) bool {
	f, ok := w.(namedFile)
	if !ok {
		return false
	}
	switch f.Name() {
	case "/dev/stdout", "/dev/stderr":
		return true
	}
	return false
}
