package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-viewkit/pkg/config"
	"github.com/goliatone/go-viewkit/pkg/view"
)

// newInstance builds a view instance from cfg, registers the configured
// partial directories and the CLI's built-in helpers.
func newInstance(ctx context.Context, cfg config.Config, logger *slog.Logger) (*view.Instance, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, view.WithLogger(logger))

	inst, err := view.New(opts...)
	if err != nil {
		return nil, err
	}
	for _, dir := range cfg.Partials {
		if err := inst.RegisterPartials(ctx, dir); err != nil {
			return nil, err
		}
	}
	if err := registerHelpers(inst, cfg.Views); err != nil {
		return nil, err
	}
	return inst, nil
}

// discoverViews lists view files under roots, skipping layouts and partial
// directories named with a leading underscore.
func discoverViews(roots, exts []string) ([]string, error) {
	allowed := map[string]bool{".html": true, ".hbs": true}
	if len(exts) > 0 {
		allowed = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			allowed[ext] = true
		}
	}

	var out []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			name := entry.Name()
			if entry.IsDir() {
				if path != root && strings.HasPrefix(name, "_") {
					return filepath.SkipDir
				}
				return nil
			}
			base := strings.TrimSuffix(name, filepath.Ext(name))
			if !allowed[strings.ToLower(filepath.Ext(name))] || base == "layout" {
				return nil
			}
			out = append(out, path)
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("discover views in %s: %w", root, err)
		}
	}
	sort.Strings(out)
	return out, nil
}
