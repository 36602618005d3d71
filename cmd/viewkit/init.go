package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-viewkit"
)

// runInit copies the starter views into a directory, refusing to overwrite
// existing files unless --force is given.
func runInit(logger *slog.Logger, args []string, stderr io.Writer) error {
	var force bool

	flagSet := pflag.NewFlagSet("init", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&force, "force", false, "overwrite existing files")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	dest := "views"
	if rest := flagSet.Args(); len(rest) > 0 {
		dest = rest[0]
	}

	starter := viewkit.StarterViews()
	return fs.WalkDir(starter, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(dest, filepath.FromSlash(path))
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if _, err := os.Stat(target); err == nil && !force {
			return fmt.Errorf("init: %s exists (use --force to overwrite)", target)
		}
		data, err := fs.ReadFile(starter, path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("init: write %s: %w", target, err)
		}
		logger.Info("view written", "path", target)
		return nil
	})
}
