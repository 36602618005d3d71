package httpview_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/goliatone/go-viewkit/pkg/httpview"
	"github.com/goliatone/go-viewkit/pkg/testsupport"
	"github.com/goliatone/go-viewkit/pkg/view"
)

func newApp(t *testing.T, files map[string]string, opts ...httpview.Option) *httpview.App {
	t.Helper()

	fsys := testsupport.ViewsFS(files)
	inst, err := view.New(view.WithFileSystem(fsys))
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	opts = append([]httpview.Option{httpview.WithFileSystem(fsys)}, opts...)
	app := httpview.New(view.Settings{Views: []string{"views", "shared"}}, opts...)
	if err := app.Engine("html", inst); err != nil {
		t.Fatalf("register engine: %v", err)
	}
	return app
}

func TestApp_EngineRegistry(t *testing.T) {
	app := newApp(t, nil)
	inst, _ := view.New()

	if err := app.Engine(".HTML", inst); err == nil {
		t.Fatalf("expected duplicate extension error")
	}
	if err := app.Engine("", inst); err == nil {
		t.Fatalf("expected error for blank extension")
	}
	if err := app.Engine("hbs", nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
	app.MustEngine("hbs", inst)
	if diff := cmp.Diff([]string{".hbs", ".html"}, app.Extensions()); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_RenderResolvesAcrossRoots(t *testing.T) {
	app := newApp(t, map[string]string{
		"views/home.html":    "home {{ name }}",
		"shared/footer.html": "footer",
		"shared/layout.html": "[{{ body }}]",
		"views/notes.txt":    "plain",
	})

	out, err := app.Render(context.Background(), "home", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[home Ada]" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = app.Render(context.Background(), "footer.html", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[footer]" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := app.Render(context.Background(), "missing", nil); !errors.Is(err, httpview.ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound, got %v", err)
	}
	if _, err := app.Render(context.Background(), "notes.txt", nil); err == nil || !strings.Contains(err.Error(), "no engine") {
		t.Fatalf("expected missing engine error, got %v", err)
	}
}

func TestApp_HandlerExposesRouteParams(t *testing.T) {
	app := newApp(t, map[string]string{
		"views/user.html": "<p>{{ params.id }} {{ greeting }}</p>",
	})

	router := mux.NewRouter()
	app.Mount(router, "/users/{id}", "user", func(r *http.Request) (map[string]any, error) {
		return map[string]any{"greeting": "hello"}, nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if body := rec.Body.String(); body != "<p>42 hello</p>" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestApp_HTMLStatusCodes(t *testing.T) {
	app := newApp(t, map[string]string{
		"views/created.html": "created",
		"views/broken.html":  "{% if %}",
	})

	rec := httptest.NewRecorder()
	if err := app.HTML(rec, httptest.NewRequest(http.MethodPost, "/", nil), http.StatusCreated, "created", nil); err != nil {
		t.Fatalf("html: %v", err)
	}
	if rec.Code != http.StatusCreated || rec.Body.String() != "created" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := app.HTML(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "nope", nil); err == nil {
		t.Fatalf("expected error for missing view")
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing view should 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if err := app.HTML(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "broken", nil); err == nil {
		t.Fatalf("expected compile error")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("broken view should 500, got %d", rec.Code)
	}
}

func TestApp_HandlerDataError(t *testing.T) {
	app := newApp(t, map[string]string{"views/x.html": "x"})

	handler := app.Handler("x", func(*http.Request) (map[string]any, error) {
		return nil, errors.New("boom")
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestApp_RenderWritesToOutputs(t *testing.T) {
	app := newApp(t, map[string]string{"views/x.html": "x"}, httpview.WithCache(true))

	var buf strings.Builder
	out, err := app.Render(context.Background(), "x", nil, io.Writer(&buf))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "x" || buf.String() != "x" {
		t.Fatalf("unexpected output %q / %q", out, buf.String())
	}
}

func TestParams_WithoutRouter(t *testing.T) {
	if got := httpview.Params(httptest.NewRequest(http.MethodGet, "/", nil)); got == nil || len(got) != 0 {
		t.Fatalf("expected empty params, got %#v", got)
	}
}
