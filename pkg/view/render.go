package view

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/goliatone/go-viewkit/pkg/async"
	"github.com/goliatone/go-viewkit/pkg/cache"
	"github.com/goliatone/go-viewkit/pkg/engine"
	"github.com/goliatone/go-viewkit/pkg/layout"
)

// BodyKey is the local the rendered content is bound to when a layout wraps it.
const BodyKey = "body"

type layoutKind int

const (
	layoutImplicit layoutKind = iota
	layoutExplicit
	layoutNone
)

type layoutDecision struct {
	kind layoutKind
	name string
}

// fileTemplate remembers where a cached template came from so execution
// errors can name the file.
type fileTemplate struct {
	engine.Template
	path string
}

// renderCall is the state of one Render invocation. Nothing in it outlives
// the call.
type renderCall struct {
	inst     *Instance
	ctx      context.Context
	filename string
	ext      string
	opts     RenderOptions
	locals   engine.Locals
	registry *async.Registry
}

// Render renders filename with opts and returns the final HTML, also writing
// it to every out writer. On error the returned string is empty and nothing
// is written.
func (i *Instance) Render(ctx context.Context, filename string, opts RenderOptions, out ...io.Writer) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	call, err := i.newCall(ctx, filename, opts)
	if err != nil {
		return "", err
	}
	rendered, err := call.run()
	if err != nil {
		return "", err
	}

	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("view: write output: %w", err)
		}
	}
	return rendered, nil
}

func (i *Instance) newCall(ctx context.Context, filename string, opts RenderOptions) (*renderCall, error) {
	locals := engine.Locals(opts.Locals).Clone()
	registry := async.NewRegistry(i.asyncOpts...)
	i.bindAsyncHelpers(locals, registry)

	if _, ok := locals["theme"]; !ok && i.theme != nil {
		themeLocals, err := i.theme.locals()
		if err != nil {
			return nil, err
		}
		if themeLocals != nil {
			locals["theme"] = themeLocals
		}
	}

	if len(opts.Settings.Views) == 0 {
		opts.Settings.Views = []string{filepath.Dir(filename)}
	}

	return &renderCall{
		inst:     i,
		ctx:      ctx,
		filename: filename,
		ext:      filepath.Ext(filename),
		opts:     opts,
		locals:   locals,
		registry: registry,
	}, nil
}

func (c *renderCall) run() (string, error) {
	decision := decideLayout(c.opts, c.inst.defaultLayout)
	if decision.kind == layoutNone {
		content, err := c.renderContent()
		if err != nil {
			return "", err
		}
		return c.substitute(content)
	}

	wrapper, err := c.loadLayout(decision)
	if err != nil {
		return "", err
	}

	content, err := c.renderContent()
	if err != nil {
		return "", err
	}
	if wrapper == nil {
		return c.substitute(content)
	}

	composed, err := c.composeLayout(wrapper, content)
	if err != nil {
		return "", err
	}
	return c.substitute(composed)
}

// decideLayout resolves the tri-state layout choice: the call's option first,
// then the inherited view options, then the implicit default.
func decideLayout(opts RenderOptions, defaultName string) layoutDecision {
	choice := opts.Layout
	if !choice.IsSet() {
		choice = opts.Settings.ViewOptions.Layout
	}
	switch {
	case !choice.IsSet():
		return layoutDecision{kind: layoutImplicit, name: defaultName}
	case choice.Disabled():
		return layoutDecision{kind: layoutNone}
	default:
		return layoutDecision{kind: layoutExplicit, name: choice.Name()}
	}
}

// renderContent executes the content template. Its output still carries
// async tokens; substitution happens once for content and layout together.
func (c *renderCall) renderContent() (string, error) {
	tpl, err := c.loadContent()
	if err != nil {
		return "", err
	}
	out, err := tpl.Execute(c.locals)
	if err != nil {
		return "", &ExecError{Path: tpl.path, Err: err}
	}
	return out, nil
}

func (c *renderCall) loadContent() (*fileTemplate, error) {
	key := contentKey(c.filename)
	if tpl, ok := c.cached(cache.TierContent, key); ok {
		return tpl, nil
	}
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	source, err := c.inst.fsys.ReadFile(c.filename)
	if err != nil {
		return nil, &FileReadError{Path: c.filename, Err: err}
	}
	tpl, err := c.compile(c.filename, source)
	if err != nil {
		return nil, err
	}
	c.inst.cache.Put(cache.TierContent, key, tpl, c.opts.Cache)
	return tpl, nil
}

// contentKey is the absolute path of a view, so relative and absolute
// spellings of the same file share one cache entry.
func contentKey(filename string) string {
	if abs, err := filepath.Abs(filename); err == nil {
		return abs
	}
	return filepath.Clean(filename)
}

// loadLayout returns the compiled layout, or nil when an implicit layout is
// missing and the render should fall back to content only.
func (c *renderCall) loadLayout(decision layoutDecision) (*fileTemplate, error) {
	logger := c.inst.logger
	key := layout.Candidate(decision.name, c.ext)
	if tpl, ok := c.cached(cache.TierLayout, key); ok {
		return tpl, nil
	}

	explicit := decision.kind == layoutExplicit
	path, found := c.inst.resolver.Find(decision.name, c.opts.Settings.Views, c.ext)
	if !found {
		if explicit {
			return nil, &LayoutNotFoundError{Name: decision.name, Roots: c.opts.Settings.Views}
		}
		logger.Debug("no default layout, rendering content only", "layout", key, "view", c.filename)
		return nil, nil
	}
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}

	source, err := c.inst.fsys.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, &FileReadError{Path: path, Err: err}
		}
		logger.Warn("default layout unreadable, rendering content only", "path", path, "error", err)
		return nil, nil
	}
	tpl, err := c.compile(path, source)
	if err != nil {
		return nil, err
	}
	c.inst.cache.Put(cache.TierLayout, key, tpl, c.opts.Cache)
	logger.Debug("layout resolved", "layout", key, "path", path)
	return tpl, nil
}

// composeLayout binds the finished content to the body local and renders the
// layout against the same locals.
func (c *renderCall) composeLayout(wrapper *fileTemplate, content string) (string, error) {
	c.locals[BodyKey] = engine.SafeString(content)
	out, err := wrapper.Execute(c.locals)
	if err != nil {
		return "", &ExecError{Path: wrapper.path, Err: err}
	}
	return out, nil
}

func (c *renderCall) substitute(rendered string) (string, error) {
	if c.registry.Pending() == 0 {
		return rendered, nil
	}
	return c.registry.Finish(c.ctx, rendered)
}

func (c *renderCall) compile(path string, source []byte) (*fileTemplate, error) {
	tpl, err := c.inst.engine.Compile(path, string(source))
	if err != nil {
		return nil, &CompileError{Path: path, Err: err}
	}
	return &fileTemplate{Template: tpl, path: path}, nil
}

func (c *renderCall) cached(tier cache.Tier, key string) (*fileTemplate, bool) {
	tpl, ok := c.inst.cache.Get(tier, key)
	if !ok {
		return nil, false
	}
	c.inst.logger.Debug("template cache hit", "tier", tier, "key", key)
	if ft, ok := tpl.(*fileTemplate); ok {
		return ft, true
	}
	return &fileTemplate{Template: tpl, path: key}, true
}
