package pongo

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-viewkit/pkg/engine"
)

// Option configures the pongo2 engine before construction.
type Option func(*config)

type config struct {
	setName    string
	baseDir    string
	templates  fs.FS
	helpers    map[string]any
	globalData map[string]any
}

// WithSetName names the underlying pongo2 template set. Useful when several
// engines log through pongo2 in the same process.
func WithSetName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.setName = trimmed
		}
	}
}

// WithBaseDir lets {% include %} and {% extends %} tags resolve files
// relative to dir in addition to registered partials.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS lets {% include %} tags resolve files from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithHelpers registers helper functions or filters when the engine loads.
func WithHelpers(helpers map[string]any) Option {
	return func(cfg *config) {
		if len(helpers) == 0 {
			return
		}
		if cfg.helpers == nil {
			cfg.helpers = make(map[string]any, len(helpers))
		}
		for name, fn := range helpers {
			cfg.helpers[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine satisfies engine.Engine using a pongo2 template set. Helpers and
// global data live in the engine rather than the set's Globals; every
// execution takes a snapshot, so helpers may register other helpers while a
// template renders.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	partials    *partialLoader
	globals     pongo2.Context
}

var _ engine.Engine = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{setName: "viewkit"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	partials := newPartialLoader()
	loaders := []pongo2.TemplateLoader{partials}
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	e := &Engine{
		templateSet: pongo2.NewSet(cfg.setName, loaders...),
		partials:    partials,
		globals:     make(pongo2.Context),
	}

	if len(cfg.globalData) > 0 {
		e.globals.Update(convertMap(cfg.globalData))
	}
	for name, fn := range cfg.helpers {
		if err := e.RegisterHelper(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register helper %q: %w", name, err)
		}
	}

	return e, nil
}

// Compile parses source into a reusable template.
func (e *Engine) Compile(name, source string) (engine.Template, error) {
	if e == nil || e.templateSet == nil {
		return nil, errors.New("pongo: engine is nil")
	}

	e.mu.Lock()
	tpl, err := e.templateSet.FromString(source)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("pongo: parse %s: %w", displayName(name), err)
	}
	return &compiled{engine: e, name: name, tpl: tpl}, nil
}

// RegisterHelper exposes fn to templates. Plain callables become globals
// ({{ name(arg) }}); pongo2 filter functions are registered as filters.
func (e *Engine) RegisterHelper(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return errors.New("pongo: helper name and function required")
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		return e.registerFilter(trimmed, filter)
	}
	if filter, ok := fn.(func(*pongo2.Value, *pongo2.Value) (*pongo2.Value, *pongo2.Error)); ok {
		return e.registerFilter(trimmed, filter)
	}
	if !isCallable(fn) {
		return fmt.Errorf("pongo: helper %q is not a function", trimmed)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.globals[trimmed] = fn
	return nil
}

// RegisterFilter adapts a plain Go function into a pongo2 filter.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	return e.registerFilter(strings.TrimSpace(name), filter)
}

// RegisterPartial makes source available to {% include "name" %}.
func (e *Engine) RegisterPartial(name, source string) error {
	if cleanName(name) == "" {
		return errors.New("pongo: partial name required")
	}
	e.partials.set(name, source)
	return nil
}

// HasPartial reports whether a partial with the given name was registered.
func (e *Engine) HasPartial(name string) bool {
	return e.partials.has(name)
}

func (e *Engine) registerFilter(name string, filter pongo2.FilterFunction) error {
	// pongo2 filters are process-wide; the latest registration wins.
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}

type compiled struct {
	engine *Engine
	name   string
	tpl    *pongo2.Template
}

func (c *compiled) Execute(locals engine.Locals) (string, error) {
	ctx := c.engine.snapshot(len(locals))
	ctx.Update(convertMap(locals))

	out, err := c.tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", displayName(c.name), err)
	}
	return out, nil
}

// snapshot copies the registered globals into a fresh context. Locals are
// layered on top by the caller.
func (e *Engine) snapshot(extra int) pongo2.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(pongo2.Context, len(e.globals)+extra)
	for key, value := range e.globals {
		out[key] = value
	}
	return out
}

func displayName(name string) string {
	if name == "" {
		return "template string"
	}
	return fmt.Sprintf("%q", name)
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertMap(in map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = convertValue(value)
	}
	return out
}

func convertValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case engine.SafeString:
		return pongo2.AsSafeValue(string(v))
	case engine.Locals:
		return map[string]any(convertMap(v))
	case pongo2.Context:
		return map[string]any(convertMap(v))
	case map[string]any:
		return map[string]any(convertMap(v))
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, convertValue(item))
		}
		return out
	default:
		return value
	}
}
