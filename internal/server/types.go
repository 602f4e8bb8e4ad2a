// Package server defines shared transport types, sentinel errors, and utility
// helpers that are reused across client and hub logic.
package server

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/friendchat/internal/chat"
)

var (
	// ErrUnknownClient is returned when a delivery targets a connection the
	// hub no longer holds.
	ErrUnknownClient = errors.New("server: unknown client")

	// ErrSendBufferFull is returned when a client's outbound queue is full.
	// The client is dropped by the hub when this happens.
	ErrSendBufferFull = errors.New("server: send buffer full")
)

// InboundMessage is one chat text read from a client's socket.
type InboundMessage struct {
	Sender chat.ConnID
	Text   string
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
