// Package layout finds layout templates across an ordered list of view roots.
package layout

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-viewkit/pkg/vfs"
)

// DefaultName is the layout tried when the caller did not ask for one.
const DefaultName = "layout"

// Resolver probes view roots for layout files. The probe is a cheap
// existence check; callers cache what they compile from the result.
type Resolver struct {
	fsys vfs.FileSystem
}

// NewResolver returns a Resolver reading through fsys. A nil fsys falls back
// to the host filesystem.
func NewResolver(fsys vfs.FileSystem) *Resolver {
	if fsys == nil {
		fsys = vfs.OS()
	}
	return &Resolver{fsys: fsys}
}

// Candidate returns name with callerExt appended when name carries no
// extension of its own, so a .hbs page pulls a .hbs layout.
func Candidate(name, callerExt string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if filepath.Ext(name) != "" || callerExt == "" {
		return name
	}
	if !strings.HasPrefix(callerExt, ".") {
		callerExt = "." + callerExt
	}
	return name + callerExt
}

// Find returns the path of the first root holding the layout. A miss is not
// an error; whether it matters is the caller's decision.
func (r *Resolver) Find(name string, roots []string, callerExt string) (string, bool) {
	candidate := Candidate(name, callerExt)
	if candidate == "" {
		return "", false
	}
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		path := filepath.Join(root, candidate)
		if r.fsys.Exists(path) {
			return path, true
		}
	}
	return "", false
}
