// Package server wires HTTP handlers into a ServeMux for the friend chat
// application via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for the chat page, health check, and WebSocket endpoint.
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", ChatPageHandler)
	mux.HandleFunc("/health", HealthHandler(hub))
	mux.HandleFunc("/ws", WebSocketHandler(hub))
	return mux
}
