package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-viewkit/pkg/view"
)

// registerHelpers installs the helpers every CLI render gets:
//
//	now(layout)     current time, Go layout string, RFC 3339 by default
//	read(path)      async, contents of a file under the first view root
func registerHelpers(inst *view.Instance, roots []string) error {
	if err := inst.RegisterHelper("now", func(args ...any) string {
		layout := time.RFC3339
		if len(args) > 0 {
			if s, ok := args[0].(string); ok && s != "" {
				layout = s
			}
		}
		return time.Now().Format(layout)
	}); err != nil {
		return err
	}

	base := "."
	if len(roots) > 0 {
		base = roots[0]
	}
	return inst.RegisterAsyncHelper("read", readHelper(base))
}

func readHelper(base string) func(ctx context.Context, args ...any) (string, error) {
	return func(ctx context.Context, args ...any) (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("read: path argument required")
		}
		name := filepath.Clean(filepath.FromSlash(fmt.Sprint(args[0])))
		if filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("read: %q escapes the view root", args[0])
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(filepath.Join(base, name))
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		return string(data), nil
	}
}
