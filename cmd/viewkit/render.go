package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewkit/internal/prompt"
	"github.com/goliatone/go-viewkit/pkg/config"
	"github.com/goliatone/go-viewkit/pkg/view"
)

type renderFlags struct {
	views       []string
	layout      string
	noLayout    bool
	cache       bool
	localsFile  string
	partials    []string
	output      string
	interactive bool
}

func runRender(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) error {
	var flags renderFlags

	flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringSliceVar(&flags.views, "views", nil, "view roots, in lookup order (overrides config)")
	flagSet.StringVar(&flags.layout, "layout", "", "layout name for this render")
	flagSet.BoolVar(&flags.noLayout, "no-layout", false, "render without any layout")
	flagSet.BoolVar(&flags.cache, "cache", cfg.Cache, "cache compiled templates")
	flagSet.StringVar(&flags.localsFile, "locals", "", "YAML file providing template locals")
	flagSet.StringSliceVar(&flags.partials, "partials", nil, "partial directories to register (overrides config)")
	flagSet.StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	flagSet.BoolVarP(&flags.interactive, "interactive", "i", false, "choose the view and enter locals interactively")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if len(flags.views) > 0 {
		cfg.Views = flags.views
	}
	if len(flags.partials) > 0 {
		cfg.Partials = flags.partials
	}

	inst, err := newInstance(ctx, cfg, logger)
	if err != nil {
		return err
	}

	locals, err := readLocals(flags.localsFile)
	if err != nil {
		return err
	}

	var filename string
	if rest := flagSet.Args(); len(rest) > 0 {
		filename = rest[0]
	}

	if flags.interactive {
		driver := prompt.Survey()
		if filename == "" {
			candidates, err := discoverViews(cfg.Views, cfg.Extensions)
			if err != nil {
				return err
			}
			if filename, err = prompt.ChooseView(ctx, driver, candidates); err != nil {
				return err
			}
		}
		if locals, err = prompt.CollectLocals(ctx, driver, locals); err != nil {
			return err
		}
	}
	if filename == "" {
		return fmt.Errorf("render: view path required (or use --interactive)")
	}

	opts := cfg.RenderOptions(locals)
	opts.Cache = flags.cache
	switch {
	case flags.noLayout:
		opts.Layout = view.NoLayout()
	case flags.layout != "":
		opts.Layout = view.LayoutName(flags.layout)
	}

	out := stdout
	if flags.output != "" {
		file, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("render: create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	logger.Debug("rendering view", "view", filename, "layout", opts.Layout.String(), "cache", opts.Cache)
	if _, err := inst.Render(ctx, filename, opts, out); err != nil {
		return err
	}
	if flags.output != "" {
		logger.Info("view written", "path", flags.output)
	}
	return nil
}

func readLocals(path string) (map[string]any, error) {
	locals := make(map[string]any)
	if path == "" {
		return locals, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locals %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &locals); err != nil {
		return nil, fmt.Errorf("parse locals %s: %w", path, err)
	}
	if locals == nil {
		locals = make(map[string]any)
	}
	return locals, nil
}
