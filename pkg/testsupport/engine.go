package testsupport

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-viewkit/pkg/engine"
)

var (
	tagPattern  = regexp.MustCompile(`\{\{\s*(>)?\s*([A-Za-z_][A-Za-z0-9_.]*)(?:\s+([^}]*?))?\s*\}\}`)
	errUnclosed = errors.New("unclosed tag")
)

// CountingEngine is a minimal engine.Engine for pipeline tests. It supports
// three tag forms:
//
//	{{name}}       the local, or the result of calling it when it is a helper
//	{{name arg}}   a helper called with the literal argument (quotes trimmed)
//	{{> partial}}  a registered partial, expanded at execute time
//
// Every Compile call is counted per name so tests can observe caching.
type CountingEngine struct {
	mu       sync.Mutex
	compiles map[string]int
	total    int
	helpers  map[string]any
	partials map[string]string
}

var _ engine.Engine = (*CountingEngine)(nil)

// NewCountingEngine returns an empty engine.
func NewCountingEngine() *CountingEngine {
	return &CountingEngine{
		compiles: make(map[string]int),
		helpers:  make(map[string]any),
		partials: make(map[string]string),
	}
}

// Compile validates the tag structure and counts the call.
func (e *CountingEngine) Compile(name, source string) (engine.Template, error) {
	e.mu.Lock()
	e.compiles[name]++
	e.total++
	e.mu.Unlock()

	if strings.Count(source, "{{") != strings.Count(source, "}}") {
		return nil, fmt.Errorf("parse %s: %w", name, errUnclosed)
	}
	return engine.TemplateFunc(func(locals engine.Locals) (string, error) {
		return e.execute(source, locals, 0)
	}), nil
}

// Compiles reports how many times name was compiled.
func (e *CountingEngine) Compiles(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compiles[name]
}

// TotalCompiles reports every Compile call.
func (e *CountingEngine) TotalCompiles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// RegisterHelper stores a helper resolved when a local of the same name is
// absent.
func (e *CountingEngine) RegisterHelper(name string, fn any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.helpers[name] = fn
	return nil
}

// RegisterPartial stores a partial.
func (e *CountingEngine) RegisterPartial(name, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.partials[name] = source
	return nil
}

// Partials returns the registered partial names mapped to their sources.
func (e *CountingEngine) Partials() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.partials))
	for name, source := range e.partials {
		out[name] = source
	}
	return out
}

func (e *CountingEngine) execute(source string, locals engine.Locals, depth int) (string, error) {
	if depth > 8 {
		return "", errors.New("partials nested too deeply")
	}
	var execErr error
	out := tagPattern.ReplaceAllStringFunc(source, func(tag string) string {
		if execErr != nil {
			return ""
		}
		m := tagPattern.FindStringSubmatch(tag)
		if m[1] == ">" {
			e.mu.Lock()
			partial, ok := e.partials[m[2]]
			e.mu.Unlock()
			if !ok {
				execErr = fmt.Errorf("partial %q not registered", m[2])
				return ""
			}
			rendered, err := e.execute(partial, locals, depth+1)
			if err != nil {
				execErr = err
			}
			return rendered
		}
		value, err := e.lookup(m[2], strings.Trim(m[3], `"'`), m[3] != "", locals)
		if err != nil {
			execErr = err
		}
		return value
	})
	if execErr != nil {
		return "", execErr
	}
	return out, nil
}

func (e *CountingEngine) lookup(name, arg string, hasArg bool, locals engine.Locals) (string, error) {
	value, ok := locals[name]
	if !ok {
		e.mu.Lock()
		value, ok = e.helpers[name]
		e.mu.Unlock()
	}
	if !ok {
		return "", nil
	}

	var args []any
	if hasArg {
		args = []any{arg}
	}
	switch fn := value.(type) {
	case func(args ...any) string:
		return fn(args...), nil
	case func(args ...any) (string, error):
		return fn(args...)
	case func() string:
		return fn(), nil
	case func(string) string:
		return fn(arg), nil
	case engine.SafeString:
		return string(fn), nil
	case string:
		return fn, nil
	default:
		return fmt.Sprint(fn), nil
	}
}
