// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - the set of live notification connections
//
// The registry is owned by the server context and handed to each
// session by reference; it is not a hidden global. Insert and Remove
// race with a concurrent broadcast iteration, so ForEach walks a
// snapshot taken under the read lock.
package registry

import (
	"sync"

	"github.com/esvgate/headerd/fault"
)

// Connection - the handle a session registers for notification fan-out
type Connection interface {
	ID() string
	Send(message []byte) error
	Close() error
}

// Registry - id to connection mapping, safe for concurrent use
type Registry struct {
	sync.RWMutex
	connections map[string]Connection
}

// New - create an empty registry
func New() *Registry {
	return &Registry{
		connections: make(map[string]Connection),
	}
}

// Insert - add a connection, the id must not already be present
func (r *Registry) Insert(conn Connection) error {
	r.Lock()
	defer r.Unlock()

	id := conn.ID()
	if _, ok := r.connections[id]; ok {
		return fault.ConnectionAlreadyExists
	}
	r.connections[id] = conn

	return nil
}

// Remove - delete a connection by id
//
// removing an id that is absent is not an error: teardown after a
// failed insert must be able to run unconditionally
func (r *Registry) Remove(id string) {
	r.Lock()
	delete(r.connections, id)
	r.Unlock()
}

// ForEach - call fn with every currently registered connection
//
// iterates a snapshot so fn, or any concurrent session, may remove
// entries while the walk is in progress; no ordering guarantee
func (r *Registry) ForEach(fn func(conn Connection)) {
	r.RLock()
	snapshot := make([]Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	r.RUnlock()

	for _, conn := range snapshot {
		fn(conn)
	}
}

// Count - number of currently registered connections
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.connections)
}
