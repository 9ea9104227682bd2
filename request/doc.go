// Package request implements the chainable HTTP request engine.
//
// A Request accumulates method, url, body, headers, query and content
// negotiation settings through With* mutators. Invalid urls and methods are
// ignored rather than reported, so a chain never breaks half way; the Set*
// variants report whether the value was accepted.
//
//	fut, err := request.New(request.POST, "http://localhost:5980/users").
//	    WithBody(map[string]any{"name": "Ada"}).
//	    WithHeader("X-Trace", id).
//	    Send(ctx)
//	if err != nil {
//	    return err // missing url or method
//	}
//	user, err := fut.Wait(ctx)
//
// Send returns a Future that settles exactly once: resolved with the decoded
// payload for statuses in [200, 400), rejected otherwise. No retries are
// attempted.
package request
