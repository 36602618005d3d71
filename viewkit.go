// Package viewkit renders views through a pongo2 engine with a two-tier
// compiled-template cache, layouts resolved across view roots and helpers
// whose values are computed asynchronously after the synchronous pass.
//
// The root package re-exports the common entry points; the sub-packages
// under pkg/ hold the implementation.
package viewkit

import (
	"log/slog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-viewkit/pkg/async"
	"github.com/goliatone/go-viewkit/pkg/engine"
	"github.com/goliatone/go-viewkit/pkg/vfs"
	"github.com/goliatone/go-viewkit/pkg/view"
)

// Instance aliases view.Instance.
type Instance = view.Instance

// Option aliases view.Option.
type Option = view.Option

// Settings aliases view.Settings, the host configuration read on every render.
type Settings = view.Settings

// ViewOptions aliases view.ViewOptions.
type ViewOptions = view.ViewOptions

// RenderOptions aliases view.RenderOptions, the per-call inputs of Render.
type RenderOptions = view.RenderOptions

// Layout aliases view.Layout.
type Layout = view.Layout

// AsyncFunc aliases async.Func, the signature of asynchronous helpers.
type AsyncFunc = async.Func

// Locals aliases engine.Locals.
type Locals = engine.Locals

// ErrLayoutNotFound matches renders whose explicitly requested layout is
// missing from every view root.
var ErrLayoutNotFound = view.ErrLayoutNotFound

// New creates an Instance. Without options it renders with pongo2 from the
// host filesystem.
func New(options ...Option) (*Instance, error) {
	return view.New(options...)
}

// LayoutName selects a named layout.
func LayoutName(name string) Layout { return view.LayoutName(name) }

// NoLayout disables layouts.
func NoLayout() Layout { return view.NoLayout() }

// WithEngine swaps the templating engine.
func WithEngine(e engine.Engine) Option { return view.WithEngine(e) }

// WithFileSystem sets where views are read from.
func WithFileSystem(fsys vfs.FileSystem) Option { return view.WithFileSystem(fsys) }

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option { return view.WithLogger(logger) }

// WithDefaultLayout changes the implicit layout name.
func WithDefaultLayout(name string) Option { return view.WithDefaultLayout(name) }

// WithAsyncOptions configures the per-render async helper registries.
func WithAsyncOptions(options ...async.Option) Option { return view.WithAsyncOptions(options...) }

// WithThemeSelector exposes a go-theme selection as the theme local.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return view.WithThemeSelector(selector, name, variant)
}
