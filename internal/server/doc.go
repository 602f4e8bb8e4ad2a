// Package server implements the HTTP and WebSocket transport for the friend
// chat service.
//
// The implementation is organized into specialized files for configuration, hub
// management, clients, routing, and HTTP handlers. Chat semantics live in the
// chat package; this package only moves text between sockets and the
// dispatcher.
package server
