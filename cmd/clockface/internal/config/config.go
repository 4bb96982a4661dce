package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/clockface/pkg/animation"
	"github.com/go-drift/clockface/pkg/clockface"
	clockerrors "github.com/go-drift/clockface/pkg/errors"
	"github.com/go-drift/clockface/pkg/graphics"
	"github.com/go-drift/clockface/pkg/logging"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "clockface.yaml"

// Config represents the optional clockface.yaml configuration.
type Config struct {
	// Requires is the minimum clockface version, e.g. "v0.2.0".
	Requires string        `yaml:"requires,omitempty"`
	Location string        `yaml:"location,omitempty"`
	Clock    ClockConfig   `yaml:"clock"`
	Style    StyleConfig   `yaml:"style"`
	Render   RenderConfig  `yaml:"render"`
	Log      LogConfig     `yaml:"log"`
	Debug    DebugConfig   `yaml:"debug"`
	Restore  RestoreConfig `yaml:"restore"`
}

// ClockConfig contains dial divisions and hand motion.
type ClockConfig struct {
	HourCount   int    `yaml:"hour_count,omitempty"`
	MinuteCount int    `yaml:"minute_count,omitempty"`
	SecondCount int    `yaml:"second_count,omitempty"`
	Duration    string `yaml:"duration,omitempty"`
	Curve       string `yaml:"curve,omitempty"`
}

// StyleConfig contains colors (#RRGGBB or #AARRGGBB) and density.
type StyleConfig struct {
	Density    float64 `yaml:"density,omitempty"`
	Background string  `yaml:"background,omitempty"`
	Container  string  `yaml:"container,omitempty"`
	Content    string  `yaml:"content,omitempty"`
	Accent     string  `yaml:"accent,omitempty"`
}

// RenderConfig contains output settings.
type RenderConfig struct {
	Size        int `yaml:"size,omitempty"`
	FPS         int `yaml:"fps,omitempty"`
	Supersample int `yaml:"supersample,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// DebugConfig contains the debug server address. Empty disables it.
type DebugConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// RestoreConfig contains the restoration file path.
type RestoreConfig struct {
	File string `yaml:"file,omitempty"`
}

// Resolved contains validated configuration with defaults applied.
type Resolved struct {
	Path        string
	Style       clockface.Style
	Location    *time.Location
	Size        int
	FPS         int
	Supersample int
	Log         logging.Options
	DebugAddr   string
	RestoreFile string
}

const (
	defaultSize        = 512
	defaultFPS         = 60
	defaultSupersample = 2
	defaultRestoreFile = ".clockface/restore.yaml"
	maxFPS             = 240
	maxSupersample     = 8
)

// LoadOptional reads the config file at path if present. A missing file
// yields an empty config.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, clockerrors.Wrap("config.Load", clockerrors.KindIO,
			fmt.Errorf("failed to read %s: %w", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, clockerrors.Wrap("config.Load", clockerrors.KindConfig,
			fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return &cfg, nil
}

// Resolve loads the config file at path (if present) and resolves it
// against the running version.
func Resolve(path, version string) (*Resolved, error) {
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	resolved, err := cfg.Resolve(version)
	if err != nil {
		return nil, err
	}
	resolved.Path = path
	return resolved, nil
}

// Resolve applies defaults and validates every field.
func (c *Config) Resolve(version string) (*Resolved, error) {
	if err := checkRequires(c.Requires, version); err != nil {
		return nil, configError(err)
	}

	style := clockface.DefaultStyle()
	var err error

	if style.HourCount, err = positive("clock.hour_count", c.Clock.HourCount, style.HourCount); err != nil {
		return nil, configError(err)
	}
	if style.MinuteCount, err = positive("clock.minute_count", c.Clock.MinuteCount, style.MinuteCount); err != nil {
		return nil, configError(err)
	}
	if style.SecondCount, err = positive("clock.second_count", c.Clock.SecondCount, style.SecondCount); err != nil {
		return nil, configError(err)
	}
	if d := strings.TrimSpace(c.Clock.Duration); d != "" {
		style.Duration, err = time.ParseDuration(d)
		if err != nil {
			return nil, configError(fmt.Errorf("clock.duration: %w", err))
		}
		if style.Duration <= 0 {
			return nil, configError(fmt.Errorf("clock.duration must be positive, got %s", d))
		}
	}
	curve, ok := animation.CurveByName(c.Clock.Curve)
	if !ok {
		return nil, configError(fmt.Errorf("clock.curve: unknown curve %q", c.Clock.Curve))
	}
	style.Curve = curve

	if c.Style.Density < 0 {
		return nil, configError(fmt.Errorf("style.density must be positive, got %v", c.Style.Density))
	}
	if c.Style.Density > 0 {
		style.Density = c.Style.Density
	}
	colors := []struct {
		name  string
		value string
		dst   *graphics.Color
	}{
		{"style.background", c.Style.Background, &style.BackgroundColor},
		{"style.container", c.Style.Container, &style.ContainerColor},
		{"style.content", c.Style.Content, &style.ContentColor},
		{"style.accent", c.Style.Accent, &style.AccentColor},
	}
	for _, col := range colors {
		if strings.TrimSpace(col.value) == "" {
			continue
		}
		parsed, err := graphics.ParseColor(col.value)
		if err != nil {
			return nil, configError(fmt.Errorf("%s: %w", col.name, err))
		}
		*col.dst = parsed
	}

	out := &Resolved{
		Style:       style,
		Location:    time.Local,
		RestoreFile: defaultRestoreFile,
		DebugAddr:   strings.TrimSpace(c.Debug.Addr),
		Log: logging.Options{
			Level:      c.Log.Level,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
			Compress:   c.Log.Compress,
		},
	}
	if out.Size, err = positive("render.size", c.Render.Size, defaultSize); err != nil {
		return nil, configError(err)
	}
	if out.FPS, err = positive("render.fps", c.Render.FPS, defaultFPS); err != nil {
		return nil, configError(err)
	}
	if out.FPS > maxFPS {
		return nil, configError(fmt.Errorf("render.fps must be at most %d, got %d", maxFPS, out.FPS))
	}
	if out.Supersample, err = positive("render.supersample", c.Render.Supersample, defaultSupersample); err != nil {
		return nil, configError(err)
	}
	if out.Supersample > maxSupersample {
		return nil, configError(fmt.Errorf("render.supersample must be at most %d, got %d", maxSupersample, out.Supersample))
	}
	if f := strings.TrimSpace(c.Restore.File); f != "" {
		out.RestoreFile = f
	}
	if name := strings.TrimSpace(c.Location); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, configError(fmt.Errorf("location: %w", err))
		}
		out.Location = loc
	}
	return out, nil
}

// positive returns value, or def when value is zero. Negative values are
// rejected.
func positive(name string, value, def int) (int, error) {
	switch {
	case value == 0:
		return def, nil
	case value < 0:
		return 0, fmt.Errorf("%s must be positive, got %d", name, value)
	default:
		return value, nil
	}
}

// checkRequires fails when the running version is older than required.
// Development builds ("dev" or any non-semver version) always pass.
func checkRequires(required, version string) error {
	required = strings.TrimSpace(required)
	if required == "" {
		return nil
	}
	if !strings.HasPrefix(required, "v") {
		required = "v" + required
	}
	if !semver.IsValid(required) {
		return fmt.Errorf("requires: %q is not a semantic version", required)
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return nil
	}
	if semver.Compare(version, required) < 0 {
		return fmt.Errorf("requires clockface %s or newer, running %s", required, version)
	}
	return nil
}

func configError(err error) error {
	return &clockerrors.ClockError{Op: "config.Resolve", Kind: clockerrors.KindConfig, Err: err}
}
