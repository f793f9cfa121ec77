package endpoint

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// EndpointType 表示快照存放位置的类型
type EndpointType int

const (
	EndpointLocal EndpointType = iota
	EndpointRemote
	EndpointS3
)

func (t EndpointType) String() string {
	switch t {
	case EndpointLocal:
		return "local"
	case EndpointRemote:
		return "ssh"
	case EndpointS3:
		return "s3"
	default:
		return fmt.Sprintf("endpoint(%d)", int(t))
	}
}

// ChecksumAlgo 定义快照写入后的校验算法
type ChecksumAlgo string

const (
	ChecksumNone   ChecksumAlgo = "none"
	ChecksumMD5    ChecksumAlgo = "md5"
	ChecksumSHA1   ChecksumAlgo = "sha1"
	ChecksumSHA256 ChecksumAlgo = "sha256"
)

// ParseChecksum 解析校验算法名称
func ParseChecksum(val string) (ChecksumAlgo, error) {
	switch algo := ChecksumAlgo(strings.ToLower(strings.TrimSpace(val))); algo {
	case ChecksumNone, ChecksumMD5, ChecksumSHA1, ChecksumSHA256:
		return algo, nil
	case "":
		return ChecksumSHA256, nil
	default:
		return "", fmt.Errorf("unknown checksum algorithm %q", val)
	}
}

// SSHOptions 对应 CLI 传入的 ssh 参数
type SSHOptions struct {
	Port      int
	Identity  string
	ExtraOpts []string
}

// S3Options 对应 CLI 传入的 S3 参数，留空时使用 AWS 默认配置链
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// Options 汇总解析端点所需的附加参数
type Options struct {
	SSH SSHOptions
	S3  S3Options
}

// Endpoint 表示一个快照文件的位置
type Endpoint struct {
	Type    EndpointType
	User    string
	Host    string
	Bucket  string
	Path    string
	SSHOpts SSHOptions
	S3Opts  S3Options
}

var remotePattern = regexp.MustCompile(`^([a-zA-Z0-9_\-\.]+@)?[^:/]+:.+`)

const s3Scheme = "s3://"

// ParseEndpoint 识别本地路径、user@host:/path 与 s3://bucket/key 三种形式
func ParseEndpoint(raw string, opts Options) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, errors.New("empty snapshot path")
	}

	if strings.HasPrefix(raw, s3Scheme) {
		bucket, key, _ := strings.Cut(strings.TrimPrefix(raw, s3Scheme), "/")
		key = strings.Trim(key, "/")
		if bucket == "" || key == "" {
			return Endpoint{}, fmt.Errorf("invalid s3 location %q, want s3://bucket/key", raw)
		}
		return Endpoint{
			Type:   EndpointS3,
			Bucket: bucket,
			Path:   key,
			S3Opts: opts.S3,
		}, nil
	}

	if remotePattern.MatchString(raw) {
		colonIdx := strings.Index(raw, ":")
		if colonIdx <= 0 || colonIdx == len(raw)-1 {
			return Endpoint{}, fmt.Errorf("invalid remote path %q", raw)
		}
		userHost := raw[:colonIdx]
		destPath := raw[colonIdx+1:]
		user := ""
		host := userHost
		if strings.Contains(userHost, "@") {
			parts := strings.SplitN(userHost, "@", 2)
			user = parts[0]
			host = parts[1]
		}
		return Endpoint{
			Type: EndpointRemote,
			User: user,
			Host: host,
			Path: destPath,
			SSHOpts: SSHOptions{
				Port:      opts.SSH.Port,
				Identity:  opts.SSH.Identity,
				ExtraOpts: append([]string{}, opts.SSH.ExtraOpts...),
			},
		}, nil
	}

	return Endpoint{
		Type: EndpointLocal,
		Path: filepath.Clean(raw),
	}, nil
}

// Split 拆分为所在目录与文件名
func (e Endpoint) Split() (dir, name string) {
	if e.Type == EndpointLocal {
		return filepath.Dir(e.Path), filepath.Base(e.Path)
	}
	dir, name = path.Dir(e.Path), path.Base(e.Path)
	if e.Type == EndpointS3 && dir == "." {
		dir = ""
	}
	return dir, name
}

// DisplayName 返回用于日志显示的端点名
func (e Endpoint) DisplayName() string {
	switch e.Type {
	case EndpointRemote:
		target := e.Host
		if e.User != "" {
			target = fmt.Sprintf("%s@%s", e.User, e.Host)
		}
		return fmt.Sprintf("%s:%s", target, e.Path)
	case EndpointS3:
		return s3Scheme + e.Bucket + "/" + e.Path
	default:
		return e.Path
	}
}

// Connect 为端点所在目录创建 FileSystem，并返回快照文件在其中的相对路径
func Connect(ctx context.Context, ep Endpoint) (FileSystem, string, error) {
	dir, name := ep.Split()
	switch ep.Type {
	case EndpointLocal:
		return NewLocalFS(dir), name, nil
	case EndpointRemote:
		remote := ep
		remote.Path = dir
		return NewRemoteFS(remote), name, nil
	case EndpointS3:
		fs, err := NewS3FS(ctx, ep.Bucket, dir, ep.S3Opts)
		if err != nil {
			return nil, "", err
		}
		return fs, name, nil
	default:
		return nil, "", fmt.Errorf("unknown endpoint type %v", ep.Type)
	}
}
