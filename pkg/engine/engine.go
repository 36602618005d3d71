package engine

// Locals is the named-value mapping passed into a template at render time.
type Locals map[string]any

// Clone returns a shallow copy of l. A nil receiver yields an empty map.
func (l Locals) Clone() Locals {
	out := make(Locals, len(l)+4)
	for key, value := range l {
		out[key] = value
	}
	return out
}

// SafeString marks content that must be emitted verbatim by engines that
// escape output by default. The pipeline uses it for the layout body.
type SafeString string

// Template is a compiled, immutable template.
type Template interface {
	Execute(locals Locals) (string, error)
}

// TemplateFunc adapts a plain function to the Template interface.
type TemplateFunc func(locals Locals) (string, error)

// Execute calls f(locals).
func (f TemplateFunc) Execute(locals Locals) (string, error) {
	return f(locals)
}

// Engine compiles template sources and owns the helper and partial
// registries that compiled templates see.
type Engine interface {
	// Compile turns source into a Template. name identifies the source in
	// error messages and may be empty.
	Compile(name, source string) (Template, error)
	RegisterHelper(name string, fn any) error
	RegisterPartial(name, source string) error
}
