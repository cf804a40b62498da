// Package requests implements the Horizon endpoint builders. Each request
// type resolves its own URL and pins its response type through typed Do and
// Stream methods, so the horizon core never depends on concrete endpoints.
package requests
