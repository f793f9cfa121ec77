package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"memfs/pkg/core"
	"memfs/pkg/endpoint"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "memfs: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	loadFrom    string
	saveTo      string
	checksum    string
	port        int
	identity    string
	sshOptions  []string
	s3Region    string
	s3Endpoint  string
	s3PathStyle bool
	s3AccessKey string
	s3SecretKey string
	logFile     string
	logLevel    string
	noProgress  bool
	metricsAddr string
}

func (f *flags) config() *core.Config {
	return &core.Config{
		LoadFrom: f.loadFrom,
		SaveTo:   f.saveTo,
		Checksum: endpoint.ChecksumAlgo(f.checksum),
		Endpoint: endpoint.Options{
			SSH: endpoint.SSHOptions{
				Port:      f.port,
				Identity:  f.identity,
				ExtraOpts: f.sshOptions,
			},
			S3: endpoint.S3Options{
				Region:    f.s3Region,
				Endpoint:  f.s3Endpoint,
				AccessKey: f.s3AccessKey,
				SecretKey: f.s3SecretKey,
				PathStyle: f.s3PathStyle,
			},
		},
		LogFile:     f.logFile,
		LogLevel:    f.logLevel,
		NoProgress:  f.noProgress || !term.IsTerminal(int(os.Stderr.Fd())),
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		MetricsAddr: f.metricsAddr,
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "memfs",
		Short:         "内存文件系统交互式命令行",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return core.Run(contextOf(cmd), f.config(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.checksum, "checksum", string(endpoint.ChecksumSHA256), "快照写入后的校验算法：none / md5 / sha1 / sha256")
	pf.IntVarP(&f.port, "port", "p", 0, "SSH 端口，0 表示使用 ssh 默认值")
	pf.StringVarP(&f.identity, "identity", "i", "", "SSH 私钥路径")
	pf.StringArrayVarP(&f.sshOptions, "ssh-option", "o", nil, "透传 ssh 参数，可多次指定")
	pf.StringVar(&f.s3Region, "s3-region", "", "S3 区域，默认使用 AWS 配置链")
	pf.StringVar(&f.s3Endpoint, "s3-endpoint", "", "自定义 S3 端点，例如 MinIO")
	pf.BoolVar(&f.s3PathStyle, "s3-path-style", false, "使用 path-style 访问 S3")
	pf.StringVar(&f.s3AccessKey, "s3-access-key", "", "S3 access key，需与 --s3-secret-key 同时使用")
	pf.StringVar(&f.s3SecretKey, "s3-secret-key", "", "S3 secret key")
	pf.StringVar(&f.logFile, "log-file", "", "额外写入的日志文件")
	pf.StringVar(&f.logLevel, "log-level", "warn", "日志级别：debug / info / warn / error")
	pf.BoolVar(&f.noProgress, "no-progress", false, "禁用进度条显示")
	cmd.MarkFlagsRequiredTogether("s3-access-key", "s3-secret-key")

	cmd.Flags().StringVar(&f.loadFrom, "load", "", "启动时恢复的快照位置 (本地路径、user@host:/path 或 s3://bucket/key)")
	cmd.Flags().StringVar(&f.saveTo, "save", "", "退出时直接保存到该位置，不再询问")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "在该地址暴露 /metrics，例如 127.0.0.1:9100")

	cmd.AddCommand(newInspectCmd(f))
	return cmd
}

func newInspectCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "查看快照中的当前目录与路径",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return core.Inspect(contextOf(cmd), f.config(), args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
