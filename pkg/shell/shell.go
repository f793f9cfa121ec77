// Package shell 实现交互式命令循环：读入一行、交给分发器执行、输出结果，
// 并在 exit 时处理状态保存确认。
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"memfs/pkg/dispatch"
)

const (
	Banner      = `In-Memory FileSystem. Type "exit" to quit.`
	confirmText = "Do you want to save the current state? [y/n]: "
	pathText    = "Enter the path to save the state: "
	savedText   = "File system state saved successfully."
	exitCommand = "exit"
)

// Executor 执行一行命令，dispatch.Dispatcher 实现了该接口
type Executor interface {
	Execute(line string) dispatch.Response
}

// Saver 把当前状态保存到 dest
type Saver func(ctx context.Context, dest string) error

// Options 配置 Shell 的输入输出与退出行为
type Options struct {
	In  io.Reader
	Out io.Writer
	// Interactive 为 true 时输出 "<cwd>> " 提示符
	Interactive bool
	// Cwd 返回当前目录，用于提示符
	Cwd func() string
	// SaveTo 非空时退出直接保存到该位置，不再询问
	SaveTo string
	Save   Saver
	Logger *slog.Logger
}

// Shell 是单线程的命令循环
type Shell struct {
	exec   Executor
	opts   Options
	in     *bufio.Scanner
	logger *slog.Logger
}

// New 创建 Shell
func New(exec Executor, opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Cwd == nil {
		opts.Cwd = func() string { return "/" }
	}
	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Shell{exec: exec, opts: opts, in: scanner, logger: logger}
}

// Run 运行命令循环，直到 exit、输入结束或 ctx 被取消。
// 只有保存失败或读取输入出错时返回 error。
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.opts.Out, Banner)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.opts.Interactive {
			fmt.Fprintf(s.opts.Out, "%s> ", s.opts.Cwd())
		}
		line, ok := s.readLine()
		if !ok {
			s.logger.Debug("input closed")
			return s.finish(ctx, false)
		}
		if strings.EqualFold(strings.TrimSpace(line), exitCommand) {
			return s.finish(ctx, true)
		}
		resp := s.exec.Execute(line)
		if resp.Output != "" {
			fmt.Fprintln(s.opts.Out, resp.Output)
		}
	}
}

func (s *Shell) finish(ctx context.Context, ask bool) error {
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	dest := s.opts.SaveTo
	if dest == "" {
		if !ask {
			return nil
		}
		yes, ok := s.confirm()
		if !ok || !yes {
			return nil
		}
		if dest, ok = s.askPath(); !ok {
			return nil
		}
	}
	return s.save(ctx, dest)
}

func (s *Shell) save(ctx context.Context, dest string) error {
	if s.opts.Save == nil {
		return fmt.Errorf("save %s: no saver configured", dest)
	}
	if err := s.opts.Save(ctx, dest); err != nil {
		fmt.Fprintf(s.opts.Out, "Failed to save state: %v\n", err)
		return fmt.Errorf("save %s: %w", dest, err)
	}
	fmt.Fprintln(s.opts.Out, savedText)
	return nil
}

// confirm 反复询问直到得到 y 或 n；输入结束视为 n
func (s *Shell) confirm() (yes bool, ok bool) {
	for {
		fmt.Fprint(s.opts.Out, confirmText)
		line, ok := s.readLine()
		if !ok {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, true
		case "n":
			return false, true
		}
	}
}

func (s *Shell) askPath() (string, bool) {
	for {
		fmt.Fprint(s.opts.Out, pathText)
		line, ok := s.readLine()
		if !ok {
			return "", false
		}
		if p := strings.TrimSpace(line); p != "" {
			return p, true
		}
	}
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSuffix(s.in.Text(), "\r"), true
}
