// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the embedded chat page.
package server

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

//go:embed static/index.html
var chatPage []byte

// WebSocketHandler returns the handler that upgrades requests to WebSocket
// connections and registers the resulting clients with hub.
// Only GET requests are accepted.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	policy := newOriginPolicy(hub.config().AllowedOrigins, hub.log)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     policy.checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warnf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)

		// The hub launches the pump goroutines once the client is registered.
		if !hub.Register(client) {
			client.log.Info("Hub is shutting down; closing new connection")
			client.closeConnection()
		}
	}
}

// HealthHandler returns a plain text status line including the raw number of
// registered connections.
func HealthHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprintf(w, "Friend chat server is running! Connections: %d", hub.ConnectionCount())
	}
}

// ChatPageHandler serves the single-page browser chat client.
func ChatPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(chatPage); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
