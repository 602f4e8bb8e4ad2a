package chat

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/samber/lo"
)

// nicknamePrefix is prepended to the registry counter to form a nickname.
const nicknamePrefix = "Friend "

// ConnID identifies one live transport connection. The value is opaque to
// this package and assigned by the transport.
type ConnID string

// Connection is a registered client session. The nickname is assigned once
// at registration and never changes.
type Connection struct {
	ID       ConnID
	Nickname string
}

// Registry maps live connection ids to their assigned nicknames.
// Nicknames come from a counter that only ever increases, so a nickname is
// never handed out twice during the lifetime of a Registry.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	counter uint64
	conns   map[ConnID]Connection
}

// NewRegistry returns an empty registry whose first nickname is "Friend 1".
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[ConnID]Connection),
	}
}

// Register allocates the next nickname for id and stores the entry.
// Registering an id that is already present replaces its entry with a new
// nickname; the previous counter value is not reused.
func (r *Registry) Register(id ConnID) Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	conn := Connection{
		ID:       id,
		Nickname: nicknamePrefix + strconv.FormatUint(r.counter, 10),
	}
	r.conns[id] = conn
	return conn
}

// Unregister removes the entry for id and returns it. Removing an absent id
// is a no-op and reports false, which absorbs duplicate or late disconnects.
func (r *Registry) Unregister(id ConnID) (Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	return conn, ok
}

// Count returns the number of live entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// Lookup returns the nickname registered for id, or ErrNotFound.
func (r *Registry) Lookup(id ConnID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	if !ok {
		return "", fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}
	return conn.Nickname, nil
}

// IDs returns a snapshot of every registered id in no particular order.
func (r *Registry) IDs() []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.conns)
}
