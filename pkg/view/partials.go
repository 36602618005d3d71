package view

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const partialReadConcurrency = 8

var partialNameReplacer = strings.NewReplacer(" ", "_", "-", "_")

// PartialName derives the partial name for a file: the base name without its
// extension, with spaces and hyphens turned into underscores.
func PartialName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return partialNameReplacer.Replace(base)
}

// RegisterPartials registers every file in dir (not its subdirectories)
// whose extension is recognised. Files with other extensions are skipped.
// All files are attempted; failures come back together as a *PartialsError.
func (i *Instance) RegisterPartials(ctx context.Context, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := i.fsys.ReadDir(dir)
	if err != nil {
		return &FileReadError{Path: dir, Err: err}
	}

	var (
		mu    sync.Mutex
		errs  []error
		group errgroup.Group
	)
	group.SetLimit(partialReadConcurrency)

	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, entry := range entries {
		if entry.IsDir() || !i.isPartialFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				fail(fmt.Errorf("view: partial %s: %w", path, err))
				return nil
			}
			source, err := i.fsys.ReadFile(path)
			if err != nil {
				fail(&FileReadError{Path: path, Err: err})
				return nil
			}
			name := PartialName(path)
			if err := i.engine.RegisterPartial(name, string(source)); err != nil {
				fail(fmt.Errorf("view: register partial %q from %s: %w", name, path, err))
				return nil
			}
			i.logger.Debug("partial registered", "name", name, "path", path)
			return nil
		})
	}
	_ = group.Wait()

	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(a, b int) bool { return errs[a].Error() < errs[b].Error() })
	return &PartialsError{Dir: dir, Errs: errs}
}

func (i *Instance) isPartialFile(name string) bool {
	ext := filepath.Ext(name)
	for _, allowed := range i.partialExts {
		if ext == allowed {
			return true
		}
	}
	return false
}
