// Package chat implements the broadcast core of the friend chat service.
//
// The package is transport agnostic: a Registry maps live connection ids to
// generated nicknames, and a Dispatcher turns connect, message and disconnect
// events into per-connection deliveries through a Sink supplied by the
// transport layer.
package chat
