// Package transport defines the XHR-style contract a restkit request drives
// and provides the factory that obtains an implementation for the current
// runtime.
//
// The native implementation, HTTP, runs each exchange on net/http in its own
// goroutine and reports completion through the OnLoad and OnError hooks.
// Factory tries that constructor first and then walks an ordered list of
// legacy identifiers, returning nil when nothing can be built:
//
//	t := transport.Create()
//	if t == nil {
//	    // no compatible transport
//	}
package transport
