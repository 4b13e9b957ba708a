// Package config loads wallpaperd settings from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Swind/go-render-thread/core"
)

// Config is the file layout:
//
//	[render]
//	name = "wallpaper"
//	frame_interval = "13ms"
//
//	[surface]
//	width = 1080
//	height = 1920
//
//	[log]
//	level = "info"
//
//	[metrics]
//	listen = ":9090"
type Config struct {
	Render  Render  `toml:"render"`
	Surface Surface `toml:"surface"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`
}

type Render struct {
	Name            string        `toml:"name"`
	FrameInterval   time.Duration `toml:"frame_interval"`
	FPSSampleFrames int           `toml:"fps_sample_frames"`
	FrameWindow     int           `toml:"frame_window"`
	History         int           `toml:"history"`
}

// Surface holds the framebuffer layout and the initial window size.
type Surface struct {
	Width   int `toml:"width"`
	Height  int `toml:"height"`
	Red     int `toml:"red"`
	Green   int `toml:"green"`
	Blue    int `toml:"blue"`
	Alpha   int `toml:"alpha"`
	Depth   int `toml:"depth"`
	Stencil int `toml:"stencil"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

type Metrics struct {
	Enabled      bool          `toml:"enabled"`
	Listen       string        `toml:"listen"`
	Namespace    string        `toml:"namespace"`
	PollInterval time.Duration `toml:"poll_interval"`
}

// Default returns the built-in settings.
func Default() *Config {
	cc := core.DefaultContextConfig()
	return &Config{
		Render: Render{
			Name:            "wallpaper",
			FrameInterval:   core.DefaultFrameInterval,
			FPSSampleFrames: 60,
			FrameWindow:     30,
			History:         100,
		},
		Surface: Surface{
			Width:   1080,
			Height:  1920,
			Red:     cc.Red,
			Green:   cc.Green,
			Blue:    cc.Blue,
			Alpha:   cc.Alpha,
			Depth:   cc.Depth,
			Stencil: cc.Stencil,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Metrics: Metrics{
			Enabled:      true,
			Listen:       ":9090",
			Namespace:    "renderthread",
			PollInterval: time.Second,
		},
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.Name == "" {
		errs = append(errs, errors.New("render.name must not be empty"))
	}
	if c.Render.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("render.frame_interval must be positive, got %s", c.Render.FrameInterval))
	}
	if c.Render.FPSSampleFrames < 1 {
		errs = append(errs, fmt.Errorf("render.fps_sample_frames must be at least 1, got %d", c.Render.FPSSampleFrames))
	}
	if c.Render.FrameWindow < 1 {
		errs = append(errs, fmt.Errorf("render.frame_window must be at least 1, got %d", c.Render.FrameWindow))
	}
	if c.Surface.Width <= 0 || c.Surface.Height <= 0 {
		errs = append(errs, fmt.Errorf("surface size must be positive, got %dx%d", c.Surface.Width, c.Surface.Height))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, errors.New("metrics.listen must be set when metrics are enabled"))
	}
	return errors.Join(errs...)
}

// ContextConfig returns the framebuffer layout.
func (c *Config) ContextConfig() core.ContextConfig {
	return core.ContextConfig{
		Red:     c.Surface.Red,
		Green:   c.Surface.Green,
		Blue:    c.Surface.Blue,
		Alpha:   c.Surface.Alpha,
		Depth:   c.Surface.Depth,
		Stencil: c.Surface.Stencil,
	}
}

// CoordinatorConfig converts the file settings. Handlers (logger, metrics)
// are left for the caller to fill in.
func (c *Config) CoordinatorConfig() *core.CoordinatorConfig {
	return &core.CoordinatorConfig{
		Name:            c.Render.Name,
		FrameInterval:   c.Render.FrameInterval,
		Context:         c.ContextConfig(),
		FPSSampleFrames: c.Render.FPSSampleFrames,
		FrameWindow:     c.Render.FrameWindow,
		Worker: core.WorkerConfig{
			HistoryCapacity: c.Render.History,
		},
	}
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
