package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-viewkit/pkg/config"
	"github.com/goliatone/go-viewkit/pkg/httpview"
)

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stderr io.Writer) error {
	var localsFile string

	flagSet := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "listen address")
	flagSet.StringSliceVar((*[]string)(&cfg.Views), "views", cfg.Views, "view roots, in lookup order")
	flagSet.BoolVar(&cfg.Cache, "cache", cfg.Cache, "cache compiled templates")
	flagSet.StringVar(&localsFile, "locals", "", "YAML file providing locals for every page")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	inst, err := newInstance(ctx, cfg, logger)
	if err != nil {
		return err
	}
	shared, err := readLocals(localsFile)
	if err != nil {
		return err
	}

	app := httpview.New(cfg.Settings(),
		httpview.WithCache(cfg.Cache),
		httpview.WithLogger(logger),
	)
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = []string{".html", ".hbs"}
	}
	for _, ext := range exts {
		if err := app.Engine(ext, inst); err != nil {
			return err
		}
	}

	router, err := newRouter(app, cfg, shared, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving views", "addr", cfg.Server.Addr, "views", strings.Join(cfg.Views, ","))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

// newRouter mounts one GET route per discovered view: views/blog/post.html
// is served at /blog/post and index views at their directory. Query values
// are exposed as the query local.
func newRouter(app *httpview.App, cfg config.Config, shared map[string]any, logger *slog.Logger) (*mux.Router, error) {
	router := mux.NewRouter()
	data := func(r *http.Request) (map[string]any, error) {
		locals := make(map[string]any, len(shared)+1)
		for key, value := range shared {
			locals[key] = value
		}
		query := make(map[string]string)
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}
		locals["query"] = query
		return locals, nil
	}

	views, err := discoverViews(cfg.Views, cfg.Extensions)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(views))
	for _, path := range views {
		route, name, ok := routeFor(cfg.Views, path)
		if !ok || seen[route] {
			continue
		}
		seen[route] = true
		app.Mount(router, route, name, data)
		logger.Debug("route mounted", "route", route, "view", name)
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("serve: no views found in [%s]", strings.Join(cfg.Views, ", "))
	}
	return router, nil
}

// routeFor maps a view file to its URL path and the name httpview resolves.
func routeFor(roots []string, path string) (route, name string, ok bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		name = filepath.ToSlash(rel)
		trimmed := strings.TrimSuffix(name, filepath.Ext(name))
		switch {
		case trimmed == "index":
			route = "/"
		case strings.HasSuffix(trimmed, "/index"):
			route = "/" + strings.TrimSuffix(trimmed, "/index")
		default:
			route = "/" + trimmed
		}
		return route, name, true
	}
	return "", "", false
}
