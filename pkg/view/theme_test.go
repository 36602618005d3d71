package view_test

import (
	"context"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-viewkit/pkg/testsupport"
	"github.com/goliatone/go-viewkit/pkg/view"
)

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     int
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls++
	return s.selection, s.err
}

func TestRender_ThemeLocalsMergeVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "accent": "#ff0000"},
		Assets: theme.Assets{
			Prefix: "/assets/acme/",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{
					Files: map[string]string{"vendor": "vendor.dark.js"},
				},
			},
		},
	}
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:    "acme",
		Variant:  "dark",
		Manifest: manifest,
	}}

	inst, err := view.New(
		view.WithFileSystem(testsupport.ViewsFS(map[string]string{
			"views/index.html": "{{ theme.name }}/{{ theme.variant }} {{ theme.tokens.brand }} {{ theme.tokens.accent }} {{ theme.assets.stylesheet }} {{ theme.assets.vendor }}",
		})),
		view.WithThemeSelector(selector, "acme", "dark"),
	)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}

	out, err := inst.Render(context.Background(), "views/index.html", view.RenderOptions{
		Settings: settings("views"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "acme/dark #654321 #ff0000 /assets/acme/theme.css /assets/acme/vendor.dark.js"
	if out != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, out)
	}
	if selector.calls != 1 {
		t.Fatalf("expected one selection per render, got %d", selector.calls)
	}
}

func TestRender_ThemeSelectionErrorFailsRender(t *testing.T) {
	boom := errors.New("unknown theme")
	inst, _ := newInstance(t, map[string]string{
		"views/index.hbs": "page",
	}, view.WithThemeSelector(&stubThemeSelector{err: boom}, "missing", ""))

	_, err := inst.Render(context.Background(), "views/index.hbs", view.RenderOptions{Settings: settings("views")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected selector error, got %v", err)
	}
}

func TestRender_CallerThemeLocalWins(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme"}}
	inst, _ := newInstance(t, map[string]string{
		"views/index.hbs": "{{theme}}",
	}, view.WithThemeSelector(selector, "acme", ""))

	out, err := inst.Render(context.Background(), "views/index.hbs", view.RenderOptions{
		Settings: settings("views"),
		Layout:   view.NoLayout(),
		Locals:   map[string]any{"theme": "custom"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "custom" || selector.calls != 0 {
		t.Fatalf("caller theme must win without selecting, got %q after %d calls", out, selector.calls)
	}
}
