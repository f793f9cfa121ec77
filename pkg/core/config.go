package core

import (
	"fmt"

	"memfs/pkg/endpoint"
	"memfs/pkg/logging"
)

const defaultLogLevel = "warn"

// Config 表示一次运行的配置
type Config struct {
	// LoadFrom 非空时启动前从该位置恢复快照
	LoadFrom string
	// SaveTo 非空时退出直接保存，不再询问
	SaveTo      string
	Checksum    endpoint.ChecksumAlgo
	Endpoint    endpoint.Options
	LogFile     string
	LogLevel    string
	NoProgress  bool
	Interactive bool
	MetricsAddr string
}

// Validate 进行基础校验并补齐默认值
func (c *Config) Validate() error {
	algo, err := endpoint.ParseChecksum(string(c.Checksum))
	if err != nil {
		return err
	}
	c.Checksum = algo
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, loc := range []string{c.LoadFrom, c.SaveTo} {
		if loc == "" {
			continue
		}
		if _, err := endpoint.ParseEndpoint(loc, c.Endpoint); err != nil {
			return fmt.Errorf("snapshot location %q: %w", loc, err)
		}
	}
	if c.Endpoint.SSH.Port < 0 || c.Endpoint.SSH.Port > 65535 {
		return fmt.Errorf("invalid ssh port %d", c.Endpoint.SSH.Port)
	}
	return nil
}
