package view_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewkit/pkg/view"
)

func TestPartialName(t *testing.T) {
	cases := map[string]string{
		"partials/header.hbs":     "header",
		"partials/my partial.hbs": "my_partial",
		"nav-bar.html":            "nav_bar",
		"a b-c.d.hbs":             "a_b_c.d",
	}
	for input, want := range cases {
		if got := view.PartialName(input); got != want {
			t.Fatalf("PartialName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRegisterPartials_FiltersByExtension(t *testing.T) {
	inst, eng := newInstance(t, map[string]string{
		"partials/a.hbs":          "A",
		"partials/b.html":         "B",
		"partials/c.txt":          "C",
		"partials/nested/d.hbs":   "D",
		"partials/my partial.hbs": "M",
	})

	if err := inst.RegisterPartials(context.Background(), "partials"); err != nil {
		t.Fatalf("register partials: %v", err)
	}

	want := map[string]string{"a": "A", "b": "B", "my_partial": "M"}
	if diff := cmp.Diff(want, eng.Partials()); diff != "" {
		t.Fatalf("registered partials mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterPartials_CustomExtensions(t *testing.T) {
	inst, eng := newInstance(t, map[string]string{
		"partials/a.hbs":  "A",
		"partials/b.tmpl": "B",
	}, view.WithPartialExtensions("tmpl"))

	if err := inst.RegisterPartials(context.Background(), "partials"); err != nil {
		t.Fatalf("register partials: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"b": "B"}, eng.Partials()); diff != "" {
		t.Fatalf("registered partials mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterPartials_ExtensionsAreCaseSensitive(t *testing.T) {
	inst, eng := newInstance(t, map[string]string{
		"partials/a.hbs":  "A",
		"partials/B.HBS":  "B",
		"partials/c.Html": "C",
	})

	if err := inst.RegisterPartials(context.Background(), "partials"); err != nil {
		t.Fatalf("register partials: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "A"}, eng.Partials()); diff != "" {
		t.Fatalf("registered partials mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterPartials_UsableFromViews(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{
		"partials/greeting.hbs": "hi {{name}}",
		"views/index.hbs":       "<p>{{> greeting}}</p>",
	})
	if err := inst.RegisterPartials(context.Background(), "partials"); err != nil {
		t.Fatalf("register partials: %v", err)
	}

	out, err := inst.Render(context.Background(), "views/index.hbs", view.RenderOptions{
		Settings: settings("views"),
		Locals:   map[string]any{"name": "Ada"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<p>hi Ada</p>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegisterPartials_MissingDirectory(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{})

	err := inst.RegisterPartials(context.Background(), "nope")
	var readErr *view.FileReadError
	if !errors.As(err, &readErr) || readErr.Path != "nope" {
		t.Fatalf("expected FileReadError for directory, got %v", err)
	}
}

func TestRegisterPartial_RequiresName(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{})
	if err := inst.RegisterPartial(" ", "x"); err == nil {
		t.Fatalf("expected error for blank partial name")
	}
	if err := inst.RegisterPartial("footer", "F"); err != nil {
		t.Fatalf("register partial: %v", err)
	}
}
