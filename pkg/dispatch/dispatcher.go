// Package dispatch 将一行命令文本映射到命名空间操作，并生成用户可见的结果文本。
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"memfs/pkg/metrics"
	"memfs/pkg/namespace"
)

// Response 是一次命令的执行结果
type Response struct {
	Command string
	Output  string
	Err     error
}

// String 返回需要展示给用户的文本
func (r Response) String() string {
	return r.Output
}

// ErrUnknownCommand 表示命令不在分发表中
var ErrUnknownCommand = errors.New("unknown command")

type handler func(s *namespace.Session, args []string, rest string) Response

var commands = map[string]handler{
	"mkdir": runMkdir,
	"cd":    runCd,
	"ls":    runLs,
	"grep":  runGrep,
	"cat":   runCat,
	"touch": runTouch,
	"echo":  runEcho,
	"mv":    runMv,
	"cp":    runCp,
	"rm":    runRm,
}

// Dispatcher 持有会话引用，单线程使用
type Dispatcher struct {
	session *namespace.Session
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New 创建 Dispatcher；logger 与 recorder 可以为 nil
func New(session *namespace.Session, logger *slog.Logger, recorder *metrics.Recorder) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{session: session, logger: logger, metrics: recorder}
}

// Execute 解析并执行一行命令。任何失败都体现在 Response 中，不会 panic 也不会返回 error。
func (d *Dispatcher) Execute(line string) Response {
	line = strings.TrimSpace(line)
	if line == "" {
		return Response{}
	}
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	args := fields[1:]
	rest := ""
	if idx := strings.IndexFunc(line, unicode.IsSpace); idx >= 0 {
		rest = line[idx+1:]
	}

	start := time.Now()
	run, found := commands[verb]
	if !found {
		d.logger.Debug("unknown command", "command", verb)
		d.metrics.ObserveCommand("unknown", metrics.OutcomeUnknown, time.Since(start), d.session.Len())
		return Response{
			Command: verb,
			Output:  fmt.Sprintf("Unknown command: %s", verb),
			Err:     fmt.Errorf("%w: %s", ErrUnknownCommand, verb),
		}
	}
	resp := run(d.session, args, rest)
	resp.Command = verb
	outcome := metrics.OutcomeOK
	if resp.Err != nil {
		outcome = metrics.OutcomeFailed
		d.logger.Debug("command failed", "command", verb, "err", resp.Err)
	} else {
		d.logger.Debug("command done", "command", verb, "cwd", d.session.Cwd())
	}
	d.metrics.ObserveCommand(verb, outcome, time.Since(start), d.session.Len())
	return resp
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func fail(err error, format string, a ...any) Response {
	return Response{Output: fmt.Sprintf(format, a...), Err: err}
}

func ok(format string, a ...any) Response {
	return Response{Output: fmt.Sprintf(format, a...)}
}

func runMkdir(s *namespace.Session, args []string, _ string) Response {
	name := arg(args, 0)
	p, err := s.MakeDirectory(name)
	switch {
	case err == nil:
		return ok("Directory %s created.", p)
	case errors.Is(err, namespace.ErrExists):
		return fail(err, "Directory %s already exists.", p)
	default:
		return fail(err, "Directory %s not found.", name)
	}
}

func runCd(s *namespace.Session, args []string, _ string) Response {
	target := arg(args, 0)
	if err := s.ChangeDirectory(target); err != nil {
		return fail(err, "Directory %s not found.", target)
	}
	return Response{}
}

func runLs(s *namespace.Session, args []string, _ string) Response {
	dir, entries, err := s.List(arg(args, 0))
	if err != nil {
		return fail(err, "Directory %s not found.", dir)
	}
	if len(entries) == 0 {
		return ok("Directory %s is empty.", dir)
	}
	return Response{Output: strings.Join(entries, "\n")}
}

func runGrep(s *namespace.Session, args []string, _ string) Response {
	name := arg(args, 1)
	out, err := s.Search(arg(args, 0), name)
	if err != nil {
		return fail(err, "File %s not found.", name)
	}
	return Response{Output: out}
}

func runCat(s *namespace.Session, args []string, _ string) Response {
	name := arg(args, 0)
	out, err := s.ReadFile(name)
	if err != nil {
		return fail(err, "File %s not found.", name)
	}
	return Response{Output: out}
}

func runTouch(s *namespace.Session, args []string, _ string) Response {
	name := arg(args, 0)
	_, err := s.CreateEmpty(name)
	switch {
	case err == nil:
		return ok("File %s created.", name)
	case errors.Is(err, namespace.ErrExists):
		return fail(err, "File %s already exists.", name)
	case errors.Is(err, namespace.ErrParentNotFound):
		return fail(err, "Directory %s not found.", errPath(err))
	default:
		return fail(err, "File %s not found.", name)
	}
}

func runEcho(s *namespace.Session, _ []string, rest string) Response {
	res, err := s.WriteContent(rest)
	switch {
	case err == nil:
	case errors.Is(err, namespace.ErrSyntax):
		return fail(err, "Invalid echo command syntax.")
	case errors.Is(err, namespace.ErrParentNotFound):
		return fail(err, "Directory %s not found.", errPath(err))
	case errors.Is(err, namespace.ErrIsDirectory):
		return fail(err, "%s is a directory.", res.Target)
	default:
		return fail(err, "File %s not found.", res.Target)
	}
	if res.Created {
		return ok("File %s created.\nText written to %s.", res.Target, res.Target)
	}
	return ok("Text written to %s.", res.Target)
}

func runMv(s *namespace.Session, args []string, _ string) Response {
	src, dst := arg(args, 0), arg(args, 1)
	if err := s.Move(src, dst); err != nil {
		return transferFailure(err, "move", src, dst)
	}
	return ok("Moved %s to %s.", src, dst)
}

func runCp(s *namespace.Session, args []string, _ string) Response {
	src, dst := arg(args, 0), arg(args, 1)
	if err := s.Copy(src, dst); err != nil {
		return transferFailure(err, "copy", src, dst)
	}
	return ok("Copied %s to %s.", src, dst)
}

func transferFailure(err error, verb, src, dst string) Response {
	switch {
	case errors.Is(err, namespace.ErrRoot):
		return fail(err, "Cannot %s %s to %s: root directory cannot be replaced.", verb, src, dst)
	case src != "" && errPath(err) == "":
		return fail(err, "Destination not specified.")
	default:
		return fail(err, "Source %s not found.", src)
	}
}

func runRm(s *namespace.Session, args []string, _ string) Response {
	target := arg(args, 0)
	err := s.Remove(target)
	switch {
	case err == nil:
		return ok("Removed %s.", target)
	case errors.Is(err, namespace.ErrRoot):
		return fail(err, "Cannot remove the root directory.")
	default:
		return fail(err, "%s not found.", target)
	}
}

func errPath(err error) string {
	var pe *namespace.PathError
	if errors.As(err, &pe) {
		return pe.Path
	}
	return ""
}
