package cmd

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

// useConfig points the CLI at a config file with body and captures stdout.
func useConfig(t *testing.T, body string) (string, *bytes.Buffer) {
	t.Helper()
	t.Setenv("CLOCKFACE_CONFIG", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "clockface.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	prevPath, prevOut := configPath, stdout
	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() {
		configPath, stdout = prevPath, prevOut
	})
	return path, &out
}

func TestParseFlags(t *testing.T) {
	var (
		name  string
		size  int
		every time.Duration
	)
	specs := []flagSpec{
		stringFlag("--name", &name),
		positiveIntFlag("--size", &size, 100),
		durationFlag("--every", &every),
	}

	if err := parseFlags([]string{"--name", "a b", "--size=42", "--every", "250ms"}, specs...); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if name != "a b" || size != 42 || every != 250*time.Millisecond {
		t.Errorf("parsed name=%q size=%d every=%v", name, size, every)
	}

	bad := [][]string{
		{"--size"},
		{"--size", "0"},
		{"--size", "101"},
		{"--size", "ten"},
		{"--every", "-1s"},
		{"--color", "red"},
		{"positional"},
	}
	for _, args := range bad {
		if err := parseFlags(args, specs...); err == nil {
			t.Errorf("parseFlags(%q) succeeded", args)
		}
	}
}

func TestExecuteVersionAndHelp(t *testing.T) {
	_, out := useConfig(t, "")

	if err := execute([]string{"version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "clockface version "+Version) {
		t.Errorf("version output = %q", out.String())
	}

	out.Reset()
	if err := execute([]string{"--help"}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"render", "run", "version"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help does not list %s:\n%s", name, out.String())
		}
	}

	if err := execute([]string{"bogus"}); err == nil {
		t.Error("unknown command should fail")
	}
}

func TestRenderPNGToStdout(t *testing.T) {
	path, out := useConfig(t, "location: UTC\n")

	err := execute([]string{"--config", path, "render", "--time", "10:08:30", "--size", "64", "--supersample", "1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if configPath != path {
		t.Errorf("configPath = %q", configPath)
	}
	img, err := png.Decode(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("bounds = %v", b)
	}
}

func TestRenderSVGFile(t *testing.T) {
	path, _ := useConfig(t, "style:\n  accent: \"#FF0000\"\n")
	dest := filepath.Join(t.TempDir(), "frames", "clock.svg")

	err := execute([]string{"--config=" + path, "render", "--time", "12:36:10", "--size", "100", "--out", dest})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, `width="100.00"`) || !strings.Contains(svg, `stroke="#FF0000"`) {
		t.Errorf("svg =\n%s", svg)
	}
	if _, err := os.Stat(dest + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	path, _ := useConfig(t, "")

	err := execute([]string{"--config", path, "render", "--time", "25:00"})
	var pe *clockerrors.ParseError
	if !errors.As(err, &pe) || pe.DataType != "time of day" {
		t.Errorf("bad time error = %v", err)
	}

	if err := execute([]string{"--config", path, "render", "--format", "gif"}); err == nil {
		t.Error("gif format should fail")
	}
}

func TestRenderRejectsBadConfig(t *testing.T) {
	path, _ := useConfig(t, "clock:\n  curve: bounce\n")

	err := execute([]string{"--config", path, "render"})
	var ce *clockerrors.ClockError
	if !errors.As(err, &ce) || ce.Kind != clockerrors.KindConfig {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestParseRenderArgsFormatFromExtension(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "png"},
		{[]string{"--out", "a.SVG"}, "svg"},
		{[]string{"--out", "a.png"}, "png"},
		{[]string{"--out", "a.svg", "--format", "PNG"}, "png"},
	}
	cfg := resolvedDefaults(t)
	for _, tt := range tests {
		opts, err := parseRenderArgs(tt.args, cfg)
		if err != nil {
			t.Fatalf("parseRenderArgs(%q): %v", tt.args, err)
		}
		if diff := cmp.Diff(tt.want, opts.format); diff != "" {
			t.Errorf("parseRenderArgs(%q) format (-want +got):\n%s", tt.args, diff)
		}
	}
}
