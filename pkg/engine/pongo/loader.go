package pongo

import (
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
)

// partialLoader satisfies pongo2.TemplateLoader with sources registered at
// runtime. Names are matched exactly after cleaning.
type partialLoader struct {
	mu       sync.RWMutex
	partials map[string]string
}

func newPartialLoader() *partialLoader {
	return &partialLoader{partials: make(map[string]string)}
}

func (l *partialLoader) set(name, source string) {
	l.mu.Lock()
	l.partials[cleanName(name)] = source
	l.mu.Unlock()
}

func (l *partialLoader) has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.partials[cleanName(name)]
	return ok
}

func (l *partialLoader) Abs(_, name string) string {
	return cleanName(name)
}

func (l *partialLoader) Get(name string) (io.Reader, error) {
	l.mu.RLock()
	source, ok := l.partials[cleanName(name)]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pongo: partial %q not registered", name)
	}
	return strings.NewReader(source), nil
}

func cleanName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(trimmed), "/")
}
