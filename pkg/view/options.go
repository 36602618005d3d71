package view

import (
	"log/slog"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-viewkit/pkg/async"
	"github.com/goliatone/go-viewkit/pkg/cache"
	"github.com/goliatone/go-viewkit/pkg/engine"
	"github.com/goliatone/go-viewkit/pkg/vfs"
)

// Layout is a tri-state layout choice. The zero value means "not set", which
// defers to the next level (view options, then the implicit default).
type Layout struct {
	name string
	set  bool
}

// LayoutName selects the named layout. An empty name behaves like NoLayout.
func LayoutName(name string) Layout {
	return Layout{name: strings.TrimSpace(name), set: true}
}

// NoLayout renders content without any layout.
func NoLayout() Layout {
	return Layout{set: true}
}

// IsSet reports whether a choice was made.
func (l Layout) IsSet() bool { return l.set }

// Disabled reports an explicit "no layout".
func (l Layout) Disabled() bool { return l.set && l.name == "" }

// Name returns the selected layout name, empty when unset or disabled.
func (l Layout) Name() string { return l.name }

func (l Layout) String() string {
	switch {
	case !l.set:
		return "<unset>"
	case l.name == "":
		return "<none>"
	default:
		return l.name
	}
}

// ViewOptions are process-wide defaults inherited from the host framework.
type ViewOptions struct {
	Layout Layout
}

// Settings is the read-only host configuration consulted on every render.
type Settings struct {
	// Views lists view roots in lookup order.
	Views       []string
	ViewOptions ViewOptions
}

// RenderOptions carries the per-call inputs of Render.
type RenderOptions struct {
	Settings Settings
	// Layout overrides Settings.ViewOptions.Layout for this call.
	Layout Layout
	// Cache enables cache writes for this call. Reads always happen.
	Cache  bool
	Locals map[string]any
}

// Option configures an Instance.
type Option func(*config)

type config struct {
	engine        engine.Engine
	fsys          vfs.FileSystem
	cache         *cache.Cache
	logger        *slog.Logger
	defaultLayout string
	partialExts   []string
	asyncOpts     []async.Option
	theme         *themeConfig
}

// WithEngine sets the templating engine. Defaults to the pongo2 engine.
func WithEngine(e engine.Engine) Option {
	return func(cfg *config) {
		if e != nil {
			cfg.engine = e
		}
	}
}

// WithFileSystem sets where view files are read from. Defaults to the host
// filesystem.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(cfg *config) {
		if fsys != nil {
			cfg.fsys = fsys
		}
	}
}

// WithCache injects the compiled-template cache. Each Instance creates its
// own when none is given.
func WithCache(c *cache.Cache) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.cache = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithDefaultLayout changes the layout tried when none was requested.
func WithDefaultLayout(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.defaultLayout = trimmed
		}
	}
}

// WithPartialExtensions replaces the extensions RegisterPartials accepts.
// Matching is case-sensitive.
func WithPartialExtensions(exts ...string) Option {
	return func(cfg *config) {
		var out []string
		for _, ext := range exts {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out = append(out, ext)
		}
		if len(out) > 0 {
			cfg.partialExts = out
		}
	}
}

// WithAsyncOptions configures the per-render async registries (timeout,
// failure policy, sanitizer, concurrency).
func WithAsyncOptions(opts ...async.Option) Option {
	return func(cfg *config) {
		cfg.asyncOpts = append(cfg.asyncOpts, opts...)
	}
}

// WithThemeSelector exposes a go-theme selection to every template as the
// "theme" local.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		if selector == nil {
			return
		}
		cfg.theme = &themeConfig{selector: selector, name: name, variant: variant}
	}
}
