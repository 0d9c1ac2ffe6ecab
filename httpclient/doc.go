// Package httpclient provides the HTTP transport used by every clientkit
// component.
//
// The client attaches a bearer credential from an injected TokenSource unless
// a request opts out with SkipAuth, classifies non-2xx responses into typed
// errors carrying status code and decoded API message, and stays deliberately
// retry-free: the single refresh-and-retry decision on 401 belongs to the
// session manager, which wraps the client through the Doer interface.
//
// Typed REST helpers (Get, Post, Put, Patch, Delete) decode JSON responses
// into caller-supplied types and accept functional request options.
package httpclient
