// Package engine defines the seam between viewkit and a templating engine.
// viewkit never parses template syntax itself: it hands source text to an
// Engine and executes the Template it gets back.
package engine
