package endpoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"path"
	"strconv"
	"strings"
	"time"
)

// RemoteFS 使用 ssh 在远端执行命令
type RemoteFS struct {
	endpoint Endpoint
}

// NewRemoteFS 创建远端文件系统，ep.Path 为快照所在目录
func NewRemoteFS(ep Endpoint) *RemoteFS {
	return &RemoteFS{endpoint: ep}
}

func (r *RemoteFS) Root() string {
	return r.endpoint.Path
}

func (r *RemoteFS) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	cmd := r.sshCommand(ctx, fmt.Sprintf("cat %s", shellQuote(r.remote(relPath))))
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &cmdReadCloser{Cmd: cmd, Reader: stdout}, nil
}

func (r *RemoteFS) Create(ctx context.Context, relPath string, perm fs.FileMode) (io.WriteCloser, error) {
	remote := r.remote(relPath)
	dir := path.Dir(remote)
	script := fmt.Sprintf("set -eu; mkdir -p %s; cat > %s; chmod %04o %s",
		shellQuote(dir), shellQuote(remote), perm&0o777, shellQuote(remote))
	cmd := r.sshCommand(ctx, script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &cmdWriteCloser{Cmd: cmd, Writer: stdin}, nil
}

func (r *RemoteFS) MkdirAll(ctx context.Context, relPath string) error {
	_, err := r.runSSHCommand(ctx, fmt.Sprintf("mkdir -p %s", shellQuote(r.remote(relPath))))
	return err
}

func (r *RemoteFS) Remove(ctx context.Context, relPath string) error {
	_, err := r.runSSHCommand(ctx, fmt.Sprintf("rm -rf %s", shellQuote(r.remote(relPath))))
	return err
}

func (r *RemoteFS) Stat(ctx context.Context, relPath string) (FileMeta, error) {
	script := fmt.Sprintf("stat -c '%%s|%%Y' %s", shellQuote(r.remote(relPath)))
	out, err := r.runSSHCommand(ctx, script)
	if err != nil {
		return FileMeta{}, fmt.Errorf("stat %s: %w: %s", relPath, err, strings.TrimSpace(string(out)))
	}
	return parseStatLine(relPath, string(out))
}

func (r *RemoteFS) Close() error {
	return nil
}

// ComputeRemoteHash 在远端执行 md5sum / sha1sum / sha256sum
func (r *RemoteFS) ComputeRemoteHash(ctx context.Context, relPath string, algo ChecksumAlgo) ([]byte, error) {
	tool := hashCommand(algo)
	if tool == "" {
		return nil, fmt.Errorf("%w: %s", ErrHashCommandUnavailable, algo)
	}
	out, err := r.runSSHCommand(ctx, fmt.Sprintf("%s %s", tool, shellQuote(r.remote(relPath))))
	if err != nil {
		if strings.Contains(string(out), "not found") {
			return nil, fmt.Errorf("%w: %s", ErrHashCommandUnavailable, tool)
		}
		return nil, fmt.Errorf("%s: %w", tool, err)
	}
	return parseHashOutput(out)
}

func (r *RemoteFS) remote(relPath string) string {
	return path.Join(r.endpoint.Path, filepathToPosix(relPath))
}

func (r *RemoteFS) runSSHCommand(ctx context.Context, cmd string) ([]byte, error) {
	return r.sshCommand(ctx, cmd).CombinedOutput()
}

func (r *RemoteFS) sshCommand(ctx context.Context, cmd string) *exec.Cmd {
	return exec.CommandContext(ctx, "ssh", buildSSHArgs(r.endpoint, cmd)...)
}

func buildSSHArgs(ep Endpoint, remoteCmd string) []string {
	var args []string
	if ep.SSHOpts.Identity != "" {
		args = append(args, "-i", ep.SSHOpts.Identity)
	}
	if ep.SSHOpts.Port != 0 {
		args = append(args, "-p", strconv.Itoa(ep.SSHOpts.Port))
	}
	for _, extra := range ep.SSHOpts.ExtraOpts {
		if strings.TrimSpace(extra) == "" {
			continue
		}
		args = append(args, "-o", extra)
	}
	target := ep.Host
	if ep.User != "" {
		target = fmt.Sprintf("%s@%s", ep.User, ep.Host)
	}
	args = append(args, target, remoteCmd)
	return args
}

func hashCommand(algo ChecksumAlgo) string {
	switch algo {
	case ChecksumMD5:
		return "md5sum"
	case ChecksumSHA1:
		return "sha1sum"
	case ChecksumSHA256:
		return "sha256sum"
	default:
		return ""
	}
}

// parseHashOutput 解析 "<hex>  <file>" 格式
func parseHashOutput(out []byte) ([]byte, error) {
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrHashCommandUnavailable)
	}
	sum, err := hex.DecodeString(fields[0])
	if err != nil {
		return nil, fmt.Errorf("hash output invalid: %q", strings.TrimSpace(string(out)))
	}
	return sum, nil
}

// parseStatLine 解析 "size|mtime" 格式
func parseStatLine(relPath, line string) (FileMeta, error) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return FileMeta{}, fmt.Errorf("stat output invalid: %s", line)
	}
	size, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return FileMeta{}, fmt.Errorf("stat size invalid: %s", line)
	}
	mod, _ := strconv.ParseInt(parts[1], 10, 64)
	return FileMeta{
		RelPath: relPath,
		Size:    size,
		ModTime: time.Unix(mod, 0),
	}, nil
}

func shellQuote(val string) string {
	return "'" + strings.ReplaceAll(val, "'", `'\''`) + "'"
}

func filepathToPosix(rel string) string {
	return strings.ReplaceAll(rel, "\\", "/")
}

type cmdReadCloser struct {
	Cmd    *exec.Cmd
	Reader io.ReadCloser
}

func (c *cmdReadCloser) Read(p []byte) (int, error) {
	return c.Reader.Read(p)
}

func (c *cmdReadCloser) Close() error {
	if err := c.Reader.Close(); err != nil {
		return err
	}
	return c.Cmd.Wait()
}

type cmdWriteCloser struct {
	Cmd    *exec.Cmd
	Writer io.WriteCloser
}

func (c *cmdWriteCloser) Write(p []byte) (int, error) {
	return c.Writer.Write(p)
}

func (c *cmdWriteCloser) Close() error {
	if err := c.Writer.Close(); err != nil {
		return err
	}
	return c.Cmd.Wait()
}
