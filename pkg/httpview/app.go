// Package httpview adapts view instances to net/http the way a web framework
// host would: renderers are registered per file extension, view names are
// resolved across the configured roots and the result is written as HTML.
package httpview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-viewkit/pkg/vfs"
	"github.com/goliatone/go-viewkit/pkg/view"
)

// ParamsKey is the local route variables are exposed under.
const ParamsKey = "params"

// ErrViewNotFound reports a view name that matched no file in any root.
var ErrViewNotFound = errors.New("httpview: view not found")

// Renderer renders a resolved view file. *view.Instance satisfies it.
type Renderer interface {
	Render(ctx context.Context, filename string, opts view.RenderOptions, out ...io.Writer) (string, error)
}

// DataFunc produces the locals for one request.
type DataFunc func(r *http.Request) (map[string]any, error)

// Option configures an App.
type Option func(*App)

// WithDefaultExtension sets the extension appended to view names that have
// none. Defaults to ".html".
func WithDefaultExtension(ext string) Option {
	return func(a *App) {
		if ext = normaliseExt(ext); ext != "" {
			a.defaultExt = ext
		}
	}
}

// WithCache enables template caching for every render.
func WithCache(enabled bool) Option {
	return func(a *App) {
		a.cache = enabled
	}
}

// WithFileSystem sets where view names are resolved. It should match the
// filesystem the registered renderers read from.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(a *App) {
		if fsys != nil {
			a.fsys = fsys
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// App stores renderers by extension and serves views.
type App struct {
	settings   view.Settings
	defaultExt string
	cache      bool
	fsys       vfs.FileSystem
	logger     *slog.Logger

	mu      sync.RWMutex
	engines map[string]Renderer
}

// New creates an App rendering views from settings.Views.
func New(settings view.Settings, opts ...Option) *App {
	app := &App{
		settings:   settings,
		defaultExt: ".html",
		fsys:       vfs.OS(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		engines:    make(map[string]Renderer),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(app)
	}
	return app
}

// Engine registers r for files with extension ext. Duplicate extensions
// return an error.
func (a *App) Engine(ext string, r Renderer) error {
	if r == nil {
		return fmt.Errorf("httpview: renderer is required")
	}
	ext = normaliseExt(ext)
	if ext == "" {
		return fmt.Errorf("httpview: extension is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.engines[ext]; exists {
		return fmt.Errorf("httpview: engine for %q already registered", ext)
	}
	a.engines[ext] = r
	return nil
}

// MustEngine panics on registration failure. Useful for init-time wiring.
func (a *App) MustEngine(ext string, r Renderer) {
	if err := a.Engine(ext, r); err != nil {
		panic(err)
	}
}

// Extensions returns the registered extensions, sorted.
func (a *App) Extensions() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	exts := make([]string, 0, len(a.engines))
	for ext := range a.engines {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Settings returns the settings passed to every render.
func (a *App) Settings() view.Settings { return a.settings }

// Lookup resolves name to a view file: the default extension is appended
// when name has none, then each root is tried in order.
func (a *App) Lookup(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("httpview: view name is required")
	}
	if filepath.Ext(name) == "" {
		name += a.defaultExt
	}
	if filepath.IsAbs(name) {
		if a.fsys.Exists(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrViewNotFound, name)
	}
	for _, root := range a.settings.Views {
		candidate := filepath.Join(root, name)
		if a.fsys.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s in [%s]", ErrViewNotFound, name, strings.Join(a.settings.Views, ", "))
}

// Render resolves name, picks the renderer registered for its extension and
// renders it with locals.
func (a *App) Render(ctx context.Context, name string, locals map[string]any, out ...io.Writer) (string, error) {
	path, err := a.Lookup(name)
	if err != nil {
		return "", err
	}

	ext := normaliseExt(filepath.Ext(path))
	a.mu.RLock()
	renderer, ok := a.engines[ext]
	a.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("httpview: no engine registered for %q", ext)
	}

	return renderer.Render(ctx, path, view.RenderOptions{
		Settings: a.settings,
		Cache:    a.cache,
		Locals:   locals,
	}, out...)
}

// HTML renders name for r and writes it with status. Route variables are
// exposed as the params local unless locals already carries one. Render
// failures become a 404 for unknown views and a 500 otherwise.
func (a *App) HTML(w http.ResponseWriter, r *http.Request, status int, name string, locals map[string]any) error {
	scoped := make(map[string]any, len(locals)+1)
	for key, value := range locals {
		scoped[key] = value
	}
	if _, ok := scoped[ParamsKey]; !ok {
		scoped[ParamsKey] = Params(r)
	}

	out, err := a.Render(r.Context(), name, scoped)
	if err != nil {
		a.fail(w, r, name, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = io.WriteString(w, out)
	return err
}

// Handler serves name with the locals produced by data. A nil data renders
// with route params only.
func (a *App) Handler(name string, data DataFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var locals map[string]any
		if data != nil {
			var err error
			locals, err = data(r)
			if err != nil {
				a.logger.Error("view data failed", "view", name, "path", r.URL.Path, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}
		_ = a.HTML(w, r, http.StatusOK, name, locals)
	})
}

// Mount registers a GET route on router serving name.
func (a *App) Mount(router *mux.Router, path, name string, data DataFunc) *mux.Route {
	return router.Handle(path, a.Handler(name, data)).Methods(http.MethodGet, http.MethodHead)
}

// Params returns the gorilla/mux route variables of r, never nil.
func Params(r *http.Request) map[string]string {
	vars := mux.Vars(r)
	if vars == nil {
		return map[string]string{}
	}
	return vars
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrViewNotFound) {
		status = http.StatusNotFound
	}
	a.logger.Error("render failed", "view", name, "path", r.URL.Path, "status", status, "error", err)
	http.Error(w, http.StatusText(status), status)
}

func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
