// Package server manages individual WebSocket clients, handling read/write
// pumps, heartbeats, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Tyrowin/friendchat/internal/chat"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client represents a WebSocket client connection in the chat system.
// It owns the socket, the outbound queue drained by its write pump, and the
// opaque id the chat core knows it by.
type Client struct {
	id             chat.ConnID
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	addr           string
	closed         bool
	maxMessageSize int64
	log            logrus.FieldLogger
}

// NewClient creates a new Client instance with the provided WebSocket connection,
// hub reference, and client address. The client gets a fresh UUID and a send
// channel sized from the hub configuration.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := hub.config()
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	id := chat.ConnID(uuid.NewString())
	return &Client{
		id:             id,
		conn:           conn,
		send:           make(chan []byte, cfg.SendBufferSize),
		hub:            hub,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		log:            hub.log.WithFields(logrus.Fields{"conn": id, "addr": addr}),
	}
}

// ID returns the connection id assigned to the client.
func (c *Client) ID() chat.ConnID {
	return c.id
}

// GetSendChan returns the client's send channel for reading outgoing messages.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

// setupReadConnection configures read deadlines and pong handler for the WebSocket connection
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Errorf("Error setting initial read deadline: %v", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Errorf("Error setting read deadline in pong handler: %v", err)
		}
		return nil
	})
}

// handleReadError logs the reason the read loop ended.
func (c *Client) handleReadError(err error) {
	if errors.Is(err, websocket.ErrReadLimit) {
		c.log.Warnf("Message exceeded maximum size of %d bytes", c.maxMessageSize)
		return
	}

	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		c.log.Infof("Client disconnected: %v", err)
		return
	}

	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		c.log.Infof("Client connection closed: %v", err)
		return
	}

	c.log.Warnf("WebSocket read error: %v", err)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.closeConnection()
	}()

	c.setupReadConnection()

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		if messageType != websocket.TextMessage {
			c.log.Debugf("Ignoring non-text frame of type %d", messageType)
			continue
		}

		if !utf8.Valid(raw) {
			c.log.Warn("Closing connection after text frame with invalid UTF-8")
			c.writeControlClose(websocket.CloseInvalidFramePayloadData, "invalid utf-8")
			return
		}

		c.log.Debugf("Received message: %q", raw)
		if !c.hub.submit(InboundMessage{Sender: c.id, Text: string(raw)}) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		return c.handleMessage(message, ok)
	case <-ticker.C:
		return c.handlePing()
	case <-c.hub.ctx.Done():
		return false
	}
}

// closeConnection safely closes the WebSocket connection with proper error handling
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Errorf("Error closing connection: %v", err)
		}
	}
}

// handleMessage writes one outgoing message and returns false if the connection should be closed
func (c *Client) handleMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Errorf("Error setting write deadline: %v", err)
		return false
	}

	if !ok {
		return c.writeCloseMessage()
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Errorf("Error writing message: %v", err)
		}
		return false
	}
	return true
}

// writeCloseMessage sends a close frame to the client
func (c *Client) writeCloseMessage() bool {
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Errorf("Error writing close message: %v", err)
		}
	}
	return false
}

// writeControlClose sends a close frame with the given code from outside the
// write pump.
func (c *Client) writeControlClose(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Errorf("Error writing close message: %v", err)
		}
	}
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Errorf("Error setting write deadline for ping: %v", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.log.Errorf("Error writing ping message: %v", err)
		return false
	}
	return true
}
