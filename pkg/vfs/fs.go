// Package vfs is the filesystem capability used by the render pipeline. The
// pipeline only ever reads files, lists one directory level and probes for
// existence, so the interface stays that small.
package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystem reads template sources and lists partial directories.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Exists(name string) bool
}

// OS returns a FileSystem backed by the host filesystem.
func OS() FileSystem {
	return osFS{}
}

type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFS) Exists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}

// FromFS adapts an fs.FS (embed.FS, fstest.MapFS, os.DirFS) so the pipeline
// can use OS-style paths against it. Leading separators and "./" prefixes are
// stripped because fs.FS only accepts unrooted slash paths.
func FromFS(fsys fs.FS) FileSystem {
	return &fsAdapter{fsys: fsys}
}

type fsAdapter struct {
	fsys fs.FS
}

func (a *fsAdapter) ReadFile(name string) ([]byte, error) {
	if a.fsys == nil {
		return nil, errors.New("vfs: filesystem is not configured")
	}
	return fs.ReadFile(a.fsys, toFSPath(name))
}

func (a *fsAdapter) ReadDir(name string) ([]fs.DirEntry, error) {
	if a.fsys == nil {
		return nil, errors.New("vfs: filesystem is not configured")
	}
	entries, err := fs.ReadDir(a.fsys, toFSPath(name))
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (a *fsAdapter) Exists(name string) bool {
	if a.fsys == nil {
		return false
	}
	info, err := fs.Stat(a.fsys, toFSPath(name))
	return err == nil && !info.IsDir()
}

func toFSPath(name string) string {
	p := filepath.ToSlash(filepath.Clean(name))
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "."
	}
	return p
}
