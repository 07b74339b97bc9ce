// Package config 读取命令行工具的 YAML 配置文件。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/xmidt-org/sallust"
	"gopkg.in/yaml.v3"
)

// Backend 是抓包后端的类型。
type Backend string

const (
	BackendNpcap   Backend = "npcap"
	BackendWinPcap Backend = "winpcap"
)

// Config 是命令行工具的配置。
type Config struct {
	// Backend 是抓包后端，空值表示自动检测。
	Backend Backend `yaml:"backend"`
	// Interactive 允许在服务未运行时询问用户是否启动。
	Interactive bool `yaml:"interactive"`
	// Extended 使接口地址包含 anycast 和 multicast 地址。
	Extended bool `yaml:"extended"`
	// HelperPath 是 WlanHelper.exe 的路径，空值表示 Npcap 安装目录下的默认位置。
	HelperPath string `yaml:"helper_path"`
	// HelperTimeout 是单次 WlanHelper 调用的超时时间。
	HelperTimeout time.Duration `yaml:"helper_timeout"`
	// AddressCache 是地址缓存文件，用于合成系统枚举不到的接口。
	AddressCache string `yaml:"address_cache"`
	// ManufFile 是 Wireshark manuf 文件，用于解析 MAC 厂商。
	ManufFile string `yaml:"manuf_file"`
	// Logger 是日志配置。
	Logger sallust.Config `yaml:"logger"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		HelperTimeout: 10 * time.Second,
		Logger: sallust.Config{
			Level:            "warn",
			Encoding:         "console",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		},
	}
}

// Load 读取配置文件，未出现的字段保持默认值。path 为空时直接返回默认配置。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case "", BackendNpcap, BackendWinPcap:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.HelperTimeout < 0 {
		return fmt.Errorf("negative helper_timeout %s", c.HelperTimeout)
	}
	return nil
}
