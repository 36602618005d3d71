package vfs

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestFromFS_StripsRootedPaths(t *testing.T) {
	fsys := FromFS(fstest.MapFS{
		"views/index.hbs":      {Data: []byte("index")},
		"views/layout.hbs":     {Data: []byte("layout")},
		"views/partials/a.hbs": {Data: []byte("a")},
	})

	data, err := fsys.ReadFile("/views/index.hbs")
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "index" {
		t.Fatalf("unexpected content %q", data)
	}

	if !fsys.Exists("./views/layout.hbs") {
		t.Fatalf("expected layout to exist")
	}
	if fsys.Exists("views/partials") {
		t.Fatalf("directories must not report as existing files")
	}
	if fsys.Exists("views/missing.hbs") {
		t.Fatalf("missing file reported as existing")
	}

	entries, err := fsys.ReadDir("/views")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	if diff := cmp.Diff([]string{"index.hbs", "layout.hbs", "partials"}, names); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestOS_Exists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("page"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	fsys := OS()
	if !fsys.Exists(path) {
		t.Fatalf("expected %s to exist", path)
	}
	if fsys.Exists(dir) {
		t.Fatalf("directory reported as file")
	}
	if fsys.Exists(filepath.Join(dir, "nope.html")) {
		t.Fatalf("missing file reported as existing")
	}
}
