package viewkit

import (
	"embed"
	"io/fs"
)

//go:embed starter/*.html starter/partials/*.html
var embeddedStarter embed.FS

// StarterViews exposes the starter view tree written by `viewkit init`: a
// layout, an index view and a partials directory with a header partial.
//
// Render it in place with:
//
//	inst, _ := viewkit.New(viewkit.WithFileSystem(vfs.FromFS(viewkit.StarterViews())))
//	_ = inst.RegisterPartials(ctx, "partials")
func StarterViews() fs.FS {
	sub, err := fs.Sub(embeddedStarter, "starter")
	if err != nil {
		return embeddedStarter
	}
	return sub
}
