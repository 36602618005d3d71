/*
Package async lets template helpers do asynchronous work even though the
templating engine evaluates helpers synchronously.

A helper bound through a Registry does not compute its value while the
template executes. It registers the work and returns a placeholder token,
which the engine copies into the output like any other string. Once the
whole synchronous pass is over (content and layout), Drain runs every pending
function concurrently and Substitute swaps each token for its value in one
pass over the output:

	reg := async.NewRegistry()
	locals["user"] = reg.Bind("user", lookupUser)
	out, _ := tpl.Execute(locals)        // out holds a token where user(..) was called
	values, err := reg.Drain(ctx)        // runs lookupUser
	out = async.Substitute(out, values)  // token replaced by the lookup result

Tokens are wrapped in the ASCII SUB control character and carry a per
registry nonce, so they cannot appear in escaped template output or collide
with another render's tokens. A Registry belongs to exactly one render call.

Functions report their value by returning it, which is the Go form of
calling a completion callback exactly once. There is no timeout unless
WithTimeout is set, and a function that ignores its context stalls the
render that owns it.
*/
package async
