package view_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-viewkit/pkg/async"
	"github.com/goliatone/go-viewkit/pkg/testsupport"
	"github.com/goliatone/go-viewkit/pkg/view"
)

func TestPongoPipeline_EndToEnd(t *testing.T) {
	dir := testsupport.WriteViews(t, t.TempDir(), map[string]string{
		"views/layout.html":             "<html><title>{{ title }}</title>{{ body|safe }}</html>",
		"views/profile.html":            `{% include "user_card" %}<p>{{ bio(id) }}</p>`,
		"views/partials/user-card.html": "<b>{{ name }}</b>",
	})
	views := filepath.Join(dir, "views")

	inst, err := view.New(view.WithAsyncOptions(async.WithSanitizer(bluemonday.UGCPolicy())))
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	if err := inst.RegisterPartials(context.Background(), filepath.Join(views, "partials")); err != nil {
		t.Fatalf("register partials: %v", err)
	}
	if err := inst.RegisterAsyncHelper("bio", func(_ context.Context, args ...any) (string, error) {
		return fmt.Sprintf("<em>bio %v</em><script>x()</script>", args[0]), nil
	}); err != nil {
		t.Fatalf("register async helper: %v", err)
	}

	opts := view.RenderOptions{
		Settings: view.Settings{Views: []string{views}},
		Cache:    true,
		Locals:   map[string]any{"title": "Ada & co", "name": "Ada", "id": 7},
	}
	for i := 0; i < 2; i++ {
		out, err := inst.Render(context.Background(), filepath.Join(views, "profile.html"), opts)
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		want := "<html><title>Ada &amp; co</title><b>Ada</b><p><em>bio 7</em></p></html>"
		if out != want {
			t.Fatalf("render %d mismatch\nwant %q\ngot  %q", i, want, out)
		}
	}
	if got := inst.Cache().Len(); got != 2 {
		t.Fatalf("expected content and layout cached, got %d entries", got)
	}
}
