// Package server exposes the HTTP and WebSocket API. Handlers translate
// between wire payloads and the domain services; all error responses go
// through the structured error middleware.
package server
