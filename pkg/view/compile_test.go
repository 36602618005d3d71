package view_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-viewkit/pkg/view"
)

func TestCompile_StringSource(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{})

	compiled, err := inst.Compile("Hello {{name}}")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	render, ok := compiled.(view.RenderFunc)
	if !ok {
		t.Fatalf("expected RenderFunc, got %T", compiled)
	}
	out, err := render(map[string]any{"name": "world"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello world" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCompile_NonStringReturnedUnchanged(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{})

	input := 42
	got, err := inst.Compile(input)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got != input {
		t.Fatalf("expected input returned unchanged, got %v", got)
	}
}

func TestCompile_BlockHelpersScopedToCall(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{})

	render, err := inst.CompileString("[{{shout}}]")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	locals := map[string]any{
		view.BlockHelpersKey: map[string]any{
			"shout": func() string { return "HEY" },
		},
	}
	out, err := render(locals)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[HEY]" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, leaked := locals["shout"]; leaked {
		t.Fatalf("block helpers must not leak into caller locals")
	}

	out, err = render(nil)
	if err != nil {
		t.Fatalf("render without helpers: %v", err)
	}
	if out != "[]" {
		t.Fatalf("block helper leaked into a later call: %q", out)
	}
}

func TestCompile_InvalidSource(t *testing.T) {
	inst, _ := newInstance(t, map[string]string{})

	_, err := inst.Compile("{{oops")
	var compileErr *view.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected CompileError, got %v", err)
	}
}
