// Package http exposes the attendance service over JSON HTTP.
//
// Handlers stay thin: they decode requests, pull the principal attached by
// the session middleware, call one application service method and translate
// the outcome through the shared responder. Authorization lives in the
// application layer; the only HTTP-level auth decision is whether a bearer
// token resolves to a principal at all.
package http
