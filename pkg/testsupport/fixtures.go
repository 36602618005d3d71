package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewkit/pkg/vfs"
)

// ViewsFS builds an in-memory view tree from path → source pairs.
func ViewsFS(files map[string]string) vfs.FileSystem {
	return vfs.FromFS(MapFS(files))
}

// MapFS builds an fstest.MapFS from path → source pairs.
func MapFS(files map[string]string) fstest.MapFS {
	out := make(fstest.MapFS, len(files))
	for path, source := range files {
		out[path] = &fstest.MapFile{Data: []byte(source), Mode: 0o644}
	}
	return out
}

// WriteViews writes path → source pairs under dir, creating directories as
// needed, and returns dir.
func WriteViews(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	for name, source := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir views dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			t.Fatalf("write view %s: %v", name, err)
		}
	}
	return dir
}

// CompareHTML diffs two HTML strings ignoring whitespace runs, so goldens do
// not depend on how an engine keeps newlines around tags.
func CompareHTML(want, got string) string {
	return cmp.Diff(strings.Fields(want), strings.Fields(got))
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureRender executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents so tests can
// assert the two agree.
func CaptureRender(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	return out, buf.String()
}
