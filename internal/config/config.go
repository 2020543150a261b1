// Package config resolves reqpad settings from flags, environment and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. REQPAD_TIMEOUT
	EnvPrefix = "reqpad"

	KeyDataDir         = "data-dir"
	KeyTimeout         = "timeout"
	KeyMaxResponseSize = "max-response-size"
	KeyTick            = "tick"
	KeyNoColor         = "no-color"
	KeyVerbose         = "verbose"

	DefaultTimeout         = 30 * time.Second
	DefaultMaxResponseSize = 50 * 1024 * 1024
	DefaultTick            = 50 * time.Millisecond
)

// Config holds the resolved settings
type Config struct {
	DataDir         string
	Timeout         time.Duration
	MaxResponseSize int64
	Tick            time.Duration
	NoColor         bool
	Verbose         bool
}

// RegisterFlags adds the global flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyDataDir, "", "Directory holding the workspace database (default ~/.reqpad)")
	fs.Duration(KeyTimeout, DefaultTimeout, "Request timeout, 0 disables it")
	fs.Int64(KeyMaxResponseSize, DefaultMaxResponseSize, "Maximum response body size in bytes")
	fs.Duration(KeyTick, DefaultTick, "How often a pending send is polled")
	fs.Bool(KeyNoColor, false, "Disable colored output")
	fs.BoolP(KeyVerbose, "v", false, "Show response headers")
}

// Load binds fs to a fresh viper instance and resolves the settings.
// Flags win over REQPAD_* environment variables, which win over defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyMaxResponseSize, DefaultMaxResponseSize)
	v.SetDefault(KeyTick, DefaultTick)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := &Config{
		DataDir:         v.GetString(KeyDataDir),
		Timeout:         v.GetDuration(KeyTimeout),
		MaxResponseSize: v.GetInt64(KeyMaxResponseSize),
		Tick:            v.GetDuration(KeyTick),
		NoColor:         v.GetBool(KeyNoColor),
		Verbose:         v.GetBool(KeyVerbose),
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".reqpad")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", cfg.Timeout)
	}
	if cfg.MaxResponseSize <= 0 {
		return nil, fmt.Errorf("max-response-size must be positive: %d", cfg.MaxResponseSize)
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}

	return cfg, nil
}
