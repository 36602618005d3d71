// Package pongo implements engine.Engine on top of a pongo2 template set.
// Helpers become pongo2 globals (callables) or filters, partials are served
// to {% include %} tags from an in-memory loader.
package pongo
