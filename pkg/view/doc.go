// Package view renders view files through an engine.Engine the way a web
// framework expects a template engine to behave: a filename and a set of
// options go in, finished HTML comes out.
//
// Around the engine an Instance adds a two-tier compiled-template cache, an
// optional layout pass that wraps the page in a layout template through the
// "body" local, and the async placeholder protocol from package async so
// helpers registered with RegisterAsyncHelper can do slow work after the
// synchronous render pass.
//
// Each Instance owns its cache; nothing is shared between instances.
package view
