// Package config loads settings for the report binaries from an optional
// file and REPORT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

const EnvPrefix = "REPORT"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Page     PageConfig     `mapstructure:"page"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Server   ServerConfig   `mapstructure:"server"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Drafting DraftingConfig `mapstructure:"drafting"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// PageConfig is in millimetres.
type PageConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Margin float64 `mapstructure:"margin"`
}

type CaptureConfig struct {
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	Scale          float64       `mapstructure:"scale"`
	Attribute      string        `mapstructure:"attribute"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ViewportWidth  int64         `mapstructure:"viewport_width"`
	ViewportHeight int64         `mapstructure:"viewport_height"`
	ChromePath     string        `mapstructure:"chrome_path"`
	DrawFromModel  bool          `mapstructure:"draw_from_model"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type DraftingConfig struct {
	MaxTokens int64 `mapstructure:"max_tokens"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("page.width", layout.A4.Width)
	v.SetDefault("page.height", layout.A4.Height)
	v.SetDefault("page.margin", layout.A4.Margin)

	v.SetDefault("capture.settle_delay", snapshot.DefaultSettleDelay)
	v.SetDefault("capture.scale", snapshot.DefaultScale)
	v.SetDefault("capture.attribute", "data-chart")
	v.SetDefault("capture.timeout", 30*time.Second)
	v.SetDefault("capture.viewport_width", 1440)
	v.SetDefault("capture.viewport_height", 900)
	v.SetDefault("capture.chrome_path", "")
	v.SetDefault("capture.draw_from_model", false)

	v.SetDefault("server.addr", ":8090")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 5<<20)

	v.SetDefault("archive.path", "./data/reports.db")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "chaturvima-report")

	v.SetDefault("drafting.max_tokens", 8192)
}

// Load reads path when it is non-empty, then applies REPORT_* overrides
// such as REPORT_SERVER_ADDR.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Page.Width <= 2*c.Page.Margin || c.Page.Height <= 2*c.Page.Margin {
		return fmt.Errorf("page %gx%g leaves no room inside a %g margin", c.Page.Width, c.Page.Height, c.Page.Margin)
	}
	if c.Capture.Scale <= 0 {
		return fmt.Errorf("capture.scale must be positive, got %g", c.Capture.Scale)
	}
	if c.Capture.SettleDelay < 0 {
		return fmt.Errorf("capture.settle_delay must not be negative")
	}
	return nil
}

func (c *Config) PageSize() layout.PageSize {
	return layout.PageSize{Width: c.Page.Width, Height: c.Page.Height, Margin: c.Page.Margin}
}

func (c *Config) CaptureOptions() []snapshot.Option {
	return []snapshot.Option{
		snapshot.WithSettleDelay(c.Capture.SettleDelay),
		snapshot.WithScale(c.Capture.Scale),
	}
}

func (c *Config) ChromeOptions() snapshot.ChromeOptions {
	return snapshot.ChromeOptions{
		ExecPath:       c.Capture.ChromePath,
		Attribute:      c.Capture.Attribute,
		Timeout:        c.Capture.Timeout,
		ViewportWidth:  c.Capture.ViewportWidth,
		ViewportHeight: c.Capture.ViewportHeight,
	}
}
