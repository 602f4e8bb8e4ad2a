// Package server coordinates client registration, event dispatch, and
// connection cleanup for the friend chat WebSocket system via the Hub type.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Tyrowin/friendchat/internal/chat"
)

// Hub owns every live WebSocket client and is the single event loop feeding
// the chat dispatcher. It also implements chat.Sink so the dispatcher can
// deliver text to a client by id.
type Hub struct {
	clients    map[chat.ConnID]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan InboundMessage
	dispatcher *chat.Dispatcher
	cfg        Config
	log        logrus.FieldLogger
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a Hub with its own registry and dispatcher. A nil cfg uses
// NewConfig defaults and a nil log uses the logrus standard logger.
func NewHub(cfg *Config, log logrus.FieldLogger) *Hub {
	if cfg == nil {
		cfg = NewConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[chat.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan InboundMessage),
		cfg:        sanitizeConfig(*cfg),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	h.dispatcher = chat.NewDispatcher(chat.NewRegistry(), h, log)
	return h
}

func (h *Hub) config() Config {
	return h.cfg
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// GetInboundChan returns the channel carrying chat text read from clients.
func (h *Hub) GetInboundChan() chan<- InboundMessage {
	return h.inbound
}

// ConnectionCount returns the raw number of registered connections.
func (h *Hub) ConnectionCount() int {
	return h.dispatcher.Registry().Count()
}

// Register hands client to the event loop. It returns false if the hub is
// shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) submit(msg InboundMessage) bool {
	select {
	case h.inbound <- msg:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Deliver queues text for the client identified by id without blocking.
// A client whose queue is full is dropped; its write pump then closes the
// socket and the read pump reports the disconnect.
func (h *Hub) Deliver(id chat.ConnID, text string) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client, exists := h.clients[id]
	if !exists || client.closed {
		return fmt.Errorf("deliver to %s: %w", id, ErrUnknownClient)
	}

	select {
	case client.send <- []byte(text):
		return nil
	default:
		h.dropLocked(client)
		client.log.Warn("Client removed due to full send buffer")
		return fmt.Errorf("deliver to %s: %w", id, ErrSendBufferFull)
	}
}

// Run starts the hub's main event loop. Events are handled one at a time, in
// the order they are received, until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.addClient(client)
			h.startPumps(client)
			h.dispatch(chat.Connect(client.id))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.removeClient(client)
			h.dispatch(chat.Disconnect(client.id))

		case msg := <-h.inbound:
			h.dispatch(chat.Message(msg.Sender, msg.Text))
		}
	}
}

func (h *Hub) dispatch(ev chat.Event) {
	err := h.dispatcher.Dispatch(ev)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrNotFound):
		h.log.WithField("event", ev.Kind).Debugf("Ignoring event: %v", err)
	default:
		h.log.WithField("event", ev.Kind).Errorf("Dispatch failed: %v", err)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	client.log.Infof("Client registered. Total clients: %d", clientCount)
}

func (h *Hub) startPumps(client *Client) {
	if client.conn == nil {
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// removeClient forgets client and closes its queue if it is still held.
func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if current, ok := h.clients[client.id]; ok && current == client {
		h.dropLocked(client)
		client.log.Infof("Client unregistered. Total clients: %d", len(h.clients))
	}
}

// dropLocked must be called with h.mutex held.
func (h *Hub) dropLocked(client *Client) {
	delete(h.clients, client.id)
	if !client.closed {
		client.closed = true
		close(client.send)
	}
}

// shutdownClients closes all active client connections
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					client.log.Errorf("Error closing client connection: %v", err)
				}
			}
		}
	}

	h.log.Infof("Closed %d client connections", len(clients))
}

// Shutdown stops the event loop, closes every client connection and waits
// for the pump goroutines to finish, or until timeout elapses.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	deadline := time.After(timeout)

	select {
	case <-h.done:
	case <-deadline:
		h.log.Warn("Hub shutdown timeout reached before the event loop stopped")
		return context.DeadlineExceeded
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-deadline:
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
