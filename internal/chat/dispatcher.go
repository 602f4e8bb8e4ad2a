package chat

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks github.com/Tyrowin/friendchat/internal/chat Sink

// Sink delivers one text message to one connection. Implementations must not
// block on slow peers; a returned error only affects that single target.
type Sink interface {
	Deliver(id ConnID, text string) error
}

// Dispatcher computes the messages produced by each Event and hands them to
// a Sink, one Deliver call per target connection.
//
// Dispatch calls are serialized, so a Dispatcher may be shared by several
// goroutines while still observing one event at a time.
type Dispatcher struct {
	mu       sync.Mutex
	registry *Registry
	sink     Sink
	log      logrus.FieldLogger
}

// NewDispatcher wires a dispatcher to the registry it mutates and the sink it
// delivers through. A nil logger falls back to the logrus standard logger.
func NewDispatcher(registry *Registry, sink Sink, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		registry: registry,
		sink:     sink,
		log:      log,
	}
}

// Registry returns the registry owned by this dispatcher.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch routes ev to OnConnect, OnMessage or OnDisconnect.
func (d *Dispatcher) Dispatch(ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Kind {
	case KindConnect:
		d.onConnect(ev.Conn)
		return nil
	case KindMessage:
		return d.onMessage(ev.Conn, ev.Text)
	case KindDisconnect:
		return d.onDisconnect(ev.Conn)
	default:
		return fmt.Errorf("dispatch %d for %q: %w", ev.Kind, ev.Conn, ErrUnknownEvent)
	}
}

// OnConnect registers id, welcomes it, announces it to everyone else and
// sends the updated count to all connections.
func (d *Dispatcher) OnConnect(id ConnID) Connection {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.onConnect(id)
}

// OnMessage echoes text back to id and relays it to every other connection.
// It returns ErrNotFound and sends nothing if id is not registered.
func (d *Dispatcher) OnMessage(id ConnID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.onMessage(id, text)
}

// OnDisconnect unregisters id and tells the remaining connections who left
// and how many are still here. It returns ErrNotFound and sends nothing if
// id was already gone.
func (d *Dispatcher) OnDisconnect(id ConnID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.onDisconnect(id)
}

func (d *Dispatcher) onConnect(id ConnID) Connection {
	conn := d.registry.Register(id)
	d.log.WithFields(logrus.Fields{
		"conn":     id,
		"nickname": conn.Nickname,
		"total":    d.registry.Count(),
	}).Info("Friend connected")

	d.deliver([]ConnID{id}, welcomeText(conn.Nickname))

	all := d.registry.IDs()
	d.deliver(lo.Without(all, id), joinedText(conn.Nickname))
	d.deliver(all, countText(AdjustedCount(len(all))))
	return conn
}

func (d *Dispatcher) onMessage(id ConnID, text string) error {
	nickname, err := d.registry.Lookup(id)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}

	d.deliver([]ConnID{id}, echoText(text))
	d.deliver(lo.Without(d.registry.IDs(), id), relayText(nickname, text))
	return nil
}

func (d *Dispatcher) onDisconnect(id ConnID) error {
	conn, ok := d.registry.Unregister(id)
	if !ok {
		return fmt.Errorf("disconnect %q: %w", id, ErrNotFound)
	}

	remaining := d.registry.IDs()
	d.log.WithFields(logrus.Fields{
		"conn":     id,
		"nickname": conn.Nickname,
		"total":    len(remaining),
	}).Info("Friend disconnected")

	d.deliver(remaining, byeText(conn.Nickname))
	d.deliver(remaining, leftText(AdjustedCount(len(remaining))))
	return nil
}

// deliver sends text to every target. A failure is logged and the loop
// carries on with the next target.
func (d *Dispatcher) deliver(targets []ConnID, text string) {
	for _, target := range targets {
		if err := d.sink.Deliver(target, text); err != nil {
			d.log.WithError(err).WithField("conn", target).Warn("Delivery failed")
		}
	}
}
