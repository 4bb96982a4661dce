package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-drift/clockface/pkg/clockface"
	clockerrors "github.com/go-drift/clockface/pkg/errors"
	"github.com/go-drift/clockface/pkg/graphics"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveMissingFileUsesDefaults(t *testing.T) {
	r, err := Resolve(filepath.Join(t.TempDir(), "absent.yaml"), "v1.0.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	def := clockface.DefaultStyle()
	if r.Style.HourCount != 12 || r.Style.MinuteCount != 60 || r.Style.SecondCount != 60 {
		t.Errorf("counts = %d/%d/%d", r.Style.HourCount, r.Style.MinuteCount, r.Style.SecondCount)
	}
	if r.Style.Duration != 950*time.Millisecond || r.Style.AccentColor != def.AccentColor {
		t.Errorf("style = %+v", r.Style)
	}
	if r.Size != 512 || r.FPS != 60 || r.Supersample != 2 {
		t.Errorf("render = %d %d %d", r.Size, r.FPS, r.Supersample)
	}
	if r.Location != time.Local || r.RestoreFile == "" || r.DebugAddr != "" {
		t.Errorf("resolved = %+v", r)
	}
}

func TestResolveFile(t *testing.T) {
	path := writeConfig(t, `
requires: v0.1.0
location: UTC
clock:
  hour_count: 24
  duration: 500ms
  curve: ease-in-out
style:
  density: 2.5
  accent: "#FF0000"
  background: "#80FFFFFF"
render:
  size: 256
  fps: 30
  supersample: 4
log:
  level: debug
  file: /tmp/clockface.log
  max_size_mb: 5
debug:
  addr: 127.0.0.1:7777
restore:
  file: state.yaml
`)
	r, err := Resolve(path, "v0.2.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Path != path {
		t.Errorf("Path = %q", r.Path)
	}
	if r.Style.HourCount != 24 || r.Style.MinuteCount != 60 {
		t.Errorf("counts = %d/%d", r.Style.HourCount, r.Style.MinuteCount)
	}
	if r.Style.Duration != 500*time.Millisecond || r.Style.Density != 2.5 {
		t.Errorf("duration=%v density=%v", r.Style.Duration, r.Style.Density)
	}
	if r.Style.Curve == nil || r.Style.Curve(0.5) == 0.5 {
		t.Error("curve should be ease-in-out")
	}
	if r.Style.AccentColor != graphics.RGB(255, 0, 0) || r.Style.BackgroundColor != graphics.Color(0x80FFFFFF) {
		t.Errorf("colors accent=%#x background=%#x", uint32(r.Style.AccentColor), uint32(r.Style.BackgroundColor))
	}
	if r.Size != 256 || r.FPS != 30 || r.Supersample != 4 {
		t.Errorf("render = %d %d %d", r.Size, r.FPS, r.Supersample)
	}
	if r.Log.Level != "debug" || r.Log.File != "/tmp/clockface.log" || r.Log.MaxSizeMB != 5 {
		t.Errorf("log = %+v", r.Log)
	}
	if r.DebugAddr != "127.0.0.1:7777" || r.RestoreFile != "state.yaml" {
		t.Errorf("debug=%q restore=%q", r.DebugAddr, r.RestoreFile)
	}
	if r.Location.String() != "UTC" {
		t.Errorf("location = %v", r.Location)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative count", Config{Clock: ClockConfig{SecondCount: -1}}},
		{"bad duration", Config{Clock: ClockConfig{Duration: "soon"}}},
		{"zero duration", Config{Clock: ClockConfig{Duration: "0s"}}},
		{"unknown curve", Config{Clock: ClockConfig{Curve: "bounce"}}},
		{"negative density", Config{Style: StyleConfig{Density: -1}}},
		{"bad color", Config{Style: StyleConfig{Accent: "purple"}}},
		{"negative size", Config{Render: RenderConfig{Size: -10}}},
		{"fps too high", Config{Render: RenderConfig{FPS: 1000}}},
		{"supersample too high", Config{Render: RenderConfig{Supersample: 16}}},
		{"unknown location", Config{Location: "Mars/Olympus_Mons"}},
		{"bad requires", Config{Requires: "latest"}},
		{"newer required", Config{Requires: "v2.0.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Resolve("v1.0.0")
			var ce *clockerrors.ClockError
			if !errors.As(err, &ce) || ce.Kind != clockerrors.KindConfig {
				t.Errorf("Resolve error = %v, want config ClockError", err)
			}
		})
	}
}

func TestCheckRequires(t *testing.T) {
	tests := []struct {
		required, version string
		wantErr           bool
	}{
		{"", "v0.1.0", false},
		{"v0.1.0", "v0.1.0", false},
		{"0.1.0", "0.2.0", false},
		{"v0.3.0", "v0.2.9", true},
		{"v1.2", "v1.10.0", false},
		{"v9.0.0", "dev", false},
	}
	for _, tt := range tests {
		err := checkRequires(tt.required, tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkRequires(%q, %q) = %v, wantErr %v", tt.required, tt.version, err, tt.wantErr)
		}
	}
}

func TestLoadOptionalInvalidYAML(t *testing.T) {
	path := writeConfig(t, "clock: [not a map")
	_, err := LoadOptional(path)
	var ce *clockerrors.ClockError
	if !errors.As(err, &ce) || ce.Kind != clockerrors.KindConfig {
		t.Errorf("LoadOptional error = %v", err)
	}
}
