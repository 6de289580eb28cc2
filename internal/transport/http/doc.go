// Package http contains the HTTP handlers for the analytics API. Handlers
// translate requests into service calls and map service errors onto the
// RFC 7807 problem responses produced by the errors package.
package http
