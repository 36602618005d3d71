package view

import (
	"github.com/goliatone/go-viewkit/pkg/engine"
)

// BlockHelpersKey names the local whose map entries are exposed as helpers
// for a single direct-compiled render.
const BlockHelpersKey = "blockHelpers"

// RenderFunc renders a directly compiled template.
type RenderFunc func(locals map[string]any) (string, error)

// CompileString compiles source without layouts, caching or async helpers.
func (i *Instance) CompileString(source string) (RenderFunc, error) {
	tpl, err := i.engine.Compile("", source)
	if err != nil {
		return nil, &CompileError{Path: "<string>", Err: err}
	}
	return func(locals map[string]any) (string, error) {
		scoped := engine.Locals(locals).Clone()
		if helpers, ok := scoped[BlockHelpersKey].(map[string]any); ok {
			for name, fn := range helpers {
				scoped[name] = fn
			}
		}
		return tpl.Execute(scoped)
	}, nil
}

// Compile is the legacy entry point: strings and byte slices compile into a
// RenderFunc, anything else is returned unchanged.
func (i *Instance) Compile(source any) (any, error) {
	switch v := source.(type) {
	case string:
		return i.CompileString(v)
	case []byte:
		return i.CompileString(string(v))
	default:
		return source, nil
	}
}
