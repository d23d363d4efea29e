// Package config loads runtime configuration from environment variables and
// an optional config file, with sensible defaults for local use.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the CLI and server need to run.
type Config struct {
	ProjectRoot  string   `mapstructure:"project_root"`
	StoreURL     string   `mapstructure:"store_url"`
	APIKey       string   `mapstructure:"api_key"`
	ProgressAddr string   `mapstructure:"progress_addr"`
	DBPath       string   `mapstructure:"db_path"`
	ListenAddr   string   `mapstructure:"listen_addr"`
	BatchSize    int      `mapstructure:"batch_size"`
	ExcludeDirs  []string `mapstructure:"exclude_dirs"`
}

// Load reads configuration with precedence: explicit config file (if path is
// non-empty), then CODEGRAPH_* environment variables, then defaults.
func Load(configFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("project_root", "/project")
	v.SetDefault("store_url", "")
	v.SetDefault("api_key", "dev-key-123")
	v.SetDefault("progress_addr", "")
	v.SetDefault("db_path", "codegraph.db")
	v.SetDefault("listen_addr", ":5001")
	v.SetDefault("batch_size", 1000)
	v.SetDefault("exclude_dirs", []string{".git", ".svn", ".hg", "node_modules", "__pycache__", "vendor"})

	v.SetEnvPrefix("CODEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Version-control metadata is excluded no matter what the caller set.
	cfg.ExcludeDirs = ensureVCSDirs(cfg.ExcludeDirs)
	return cfg, nil
}

func ensureVCSDirs(dirs []string) []string {
	present := map[string]bool{}
	for _, d := range dirs {
		present[d] = true
	}
	for _, d := range []string{".git", ".svn", ".hg"} {
		if !present[d] {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
