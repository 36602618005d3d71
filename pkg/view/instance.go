package view

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-viewkit/pkg/async"
	"github.com/goliatone/go-viewkit/pkg/cache"
	"github.com/goliatone/go-viewkit/pkg/engine"
	"github.com/goliatone/go-viewkit/pkg/engine/pongo"
	"github.com/goliatone/go-viewkit/pkg/layout"
	"github.com/goliatone/go-viewkit/pkg/vfs"
)

var defaultPartialExts = []string{".hbs", ".html"}

// Instance renders views. It is safe for concurrent use.
type Instance struct {
	engine        engine.Engine
	fsys          vfs.FileSystem
	cache         *cache.Cache
	resolver      *layout.Resolver
	logger        *slog.Logger
	defaultLayout string
	partialExts   []string
	asyncOpts     []async.Option
	theme         *themeConfig

	mu           sync.RWMutex
	asyncHelpers map[string]async.Func
}

// New constructs an Instance applying any provided options.
func New(options ...Option) (*Instance, error) {
	cfg := &config{
		defaultLayout: layout.DefaultName,
		partialExts:   defaultPartialExts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.engine == nil {
		e, err := pongo.New()
		if err != nil {
			return nil, fmt.Errorf("view: configure default engine: %w", err)
		}
		cfg.engine = e
	}
	if cfg.fsys == nil {
		cfg.fsys = vfs.OS()
	}
	if cfg.cache == nil {
		cfg.cache = cache.New()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	asyncOpts := append([]async.Option{async.WithLogger(cfg.logger)}, cfg.asyncOpts...)

	return &Instance{
		engine:        cfg.engine,
		fsys:          cfg.fsys,
		cache:         cfg.cache,
		resolver:      layout.NewResolver(cfg.fsys),
		logger:        cfg.logger,
		defaultLayout: cfg.defaultLayout,
		partialExts:   cfg.partialExts,
		asyncOpts:     asyncOpts,
		theme:         cfg.theme,
		asyncHelpers:  make(map[string]async.Func),
	}, nil
}

// Engine returns the underlying templating engine.
func (i *Instance) Engine() engine.Engine { return i.engine }

// Cache returns the instance's compiled-template cache.
func (i *Instance) Cache() *cache.Cache { return i.cache }

// RegisterHelper forwards a synchronous helper to the engine.
func (i *Instance) RegisterHelper(name string, fn any) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("view: helper name and function required")
	}
	return i.engine.RegisterHelper(name, fn)
}

// RegisterAsyncHelper registers fn so that calling the helper inside a
// template emits a placeholder and fn runs after the synchronous pass. The
// helper is bound per render, so every call gets its own registry.
func (i *Instance) RegisterAsyncHelper(name string, fn async.Func) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return errors.New("view: async helper name and function required")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.asyncHelpers[trimmed] = fn
	return nil
}

// RegisterPartial forwards a partial source to the engine.
func (i *Instance) RegisterPartial(name, source string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("view: partial name required")
	}
	return i.engine.RegisterPartial(name, source)
}

func (i *Instance) bindAsyncHelpers(locals engine.Locals, registry *async.Registry) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for name, fn := range i.asyncHelpers {
		locals[name] = registry.Bind(name, fn)
	}
}
