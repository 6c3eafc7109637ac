// Package http contains the chi HTTP handlers of the chain API.
//
// Handlers translate service sentinel errors into RFC 7807 problem
// responses through the shared ErrorHandler and keep success envelopes
// uniform: {"status": "success", "data": ..., "count": ...}.
package http
