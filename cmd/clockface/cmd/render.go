package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/clockface/cmd/clockface/internal/config"
	"github.com/go-drift/clockface/pkg/clockface"
	"github.com/go-drift/clockface/pkg/clockstate"
	"github.com/go-drift/clockface/pkg/engine"
	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

const maxRenderSize = 8192

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Render one frame of the clock face",
		Long: `Render a single still frame of the clock face as PNG or SVG.

The hands show the given time, or the current time in the configured
location when --time is omitted.

Flags:
  --time HH:MM[:SS]    Time of day to show (default: now)
  --date YYYY-MM-DD    Date of the reading (default: today)
  --size N             Output side in pixels (default: render.size)
  --format png|svg     Output format (default: from --out extension, else png)
  --supersample N      PNG supersampling factor (default: render.supersample)
  --out FILE           Output file, "-" for stdout (default: -)`,
		Usage: "clockface render [--time HH:MM:SS] [--size N] [--format png|svg] [--supersample N] [--out FILE]",
		Run:   runRender,
	})
}

type renderOptions struct {
	time        string
	date        string
	size        int
	format      string
	supersample int
	out         string
}

func parseRenderArgs(args []string, cfg *config.Resolved) (renderOptions, error) {
	opts := renderOptions{
		size:        cfg.Size,
		supersample: cfg.Supersample,
		out:         "-",
	}
	err := parseFlags(args,
		stringFlag("--time", &opts.time),
		stringFlag("--date", &opts.date),
		positiveIntFlag("--size", &opts.size, maxRenderSize),
		stringFlag("--format", &opts.format),
		positiveIntFlag("--supersample", &opts.supersample, 8),
		stringFlag("--out", &opts.out),
	)
	if err != nil {
		return opts, err
	}

	if opts.format == "" {
		opts.format = "png"
		if strings.EqualFold(filepath.Ext(opts.out), ".svg") {
			opts.format = "svg"
		}
	}
	opts.format = strings.ToLower(opts.format)
	if opts.format != "png" && opts.format != "svg" {
		return opts, fmt.Errorf("--format: unknown format %q (use png or svg)", opts.format)
	}
	return opts, nil
}

func runRender(args []string) error {
	cfg, err := config.Resolve(configPath, Version)
	if err != nil {
		return err
	}
	opts, err := parseRenderArgs(args, cfg)
	if err != nil {
		return err
	}

	source := &clockstate.SystemSource{Location: cfg.Location}
	date, tod := source.Now()
	if opts.time != "" {
		if tod, err = clockstate.ParseTimeOfDay(opts.time); err != nil {
			return err
		}
	}
	if opts.date != "" {
		if date, err = clockstate.ParseDate(opts.date); err != nil {
			return err
		}
	}

	face := clockface.NewFace(clockstate.NewState(date, tod), cfg.Style)
	defer face.Dispose()
	eng := engine.New(engine.Options{})
	eng.SetFace(face)
	eng.StepFrame()

	if opts.out == "-" {
		return writeFrame(eng, stdout, opts)
	}
	return writeFrameFile(eng, opts.out, opts)
}

func writeFrame(eng *engine.Engine, w io.Writer, opts renderOptions) error {
	if opts.format == "svg" {
		return eng.RenderSVG(w, opts.size)
	}
	return eng.RenderPNG(w, opts.size, opts.supersample)
}

// writeFrameFile writes to a temporary file next to path and renames it into
// place, so readers never see a partial image.
func writeFrameFile(eng *engine.Engine, path string, opts renderOptions) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return clockerrors.Wrap("render.write", clockerrors.KindIO, err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return clockerrors.Wrap("render.write", clockerrors.KindIO, err)
	}
	if err := writeFrame(eng, f, opts); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return clockerrors.Wrap("render.write", clockerrors.KindIO, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return clockerrors.Wrap("render.write", clockerrors.KindIO, err)
	}
	return nil
}
