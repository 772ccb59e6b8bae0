// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package push

import (
	"net/http"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"

	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/registry"
	"github.com/esvgate/headerd/upstream"
)

const (
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// authentication and origin policy live in middleware outside
	// this server
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session - one notification client
//
// the socket is owned exclusively by this session; all writes are
// serialised through mu
type session struct {
	id       string
	log      *logger.L
	conn     *websocket.Conn
	clients  *registry.Registry
	upstream *upstream.Client

	mu     sync.Mutex // serialises writes and close
	closed bool
}

func newSession(conn *websocket.Conn, clients *registry.Registry, client *upstream.Client, log *logger.L) *session {
	return &session{
		id:       uuid.New(),
		log:      log,
		conn:     conn,
		clients:  clients,
		upstream: client,
	}
}

// run - the connection lifecycle
//
// register, push the current best tip, then idle in the receive loop
// until the peer disconnects or errors; deregistration is bound to
// this function's exit so the registry cannot accumulate dead entries
func (s *session) run(host string) {

	// the write lock is held from before registration until the
	// initial tip has been pushed so a concurrent broadcast cannot
	// overtake it
	s.mu.Lock()

	if err := s.clients.Insert(s); nil != err {
		s.mu.Unlock()
		s.log.Errorf("%s: register failed: %s", s.id, err)
		_ = s.conn.Close()
		return
	}
	connectionCount.Increment()
	defer s.teardown()

	s.log.Debugf("%s connected  host: %s", s.id, host)

	err := s.pushCurrentTip()
	s.mu.Unlock()
	if nil != err {
		s.log.Errorf("%s: initial tip push failed: %s", s.id, err)
		return
	}

	s.receiveLoop()
}

// unconditional cleanup, runs on every exit path
func (s *session) teardown() {
	_ = s.Close()
	s.clients.Remove(s.id)
	connectionCount.Decrement()
	s.log.Debugf("removing websocket id: %s", s.id)
}

// send the current best tip as the first frame on a new connection
//
// an unreachable or inconsistent header service is not fatal: the
// client stays connected and the next broadcast delivers the tip; a
// local encode or socket fault is fatal and returned
// must hold s.mu
func (s *session) pushCurrentTip() error {

	current, err := s.upstream.FetchCurrentTip()
	if nil != err {
		if fault.IsErrUnavailable(err) {
			// when the service comes back online a compensating
			// chain tip notification will follow
			s.log.Errorf("header service is unavailable on %s", s.upstream.URL())
			return nil
		}
		s.log.Errorf("%s: current tip fetch failed: %s", s.id, err)
		return nil
	}

	packed, err := current.Pack()
	if nil != err {
		// malformed upstream data must not be forwarded
		return err
	}

	s.log.Debugf("sending tip to new websocket connection  id: %s", s.id)
	return s.write(packed)
}

// discard everything the client sends; the protocol is one-way
func (s *session) receiveLoop() {

receive:
	for {
		messageType, data, err := s.conn.ReadMessage()
		if nil != err {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				s.log.Debugf("%s disconnected", s.id)
			} else {
				s.log.Errorf("%s: ws connection closed with error: %s", s.id, err)
			}
			break receive
		}

		switch messageType {
		case websocket.TextMessage:
			s.log.Debugf("%s websocket client sent: %q", s.id, data)
		default:
			s.log.Debugf("%s websocket client sent message type: %d", s.id, messageType)
		}
	}
}

// write one binary frame
// must hold s.mu
func (s *session) write(message []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, message)
}

// probe the peer; a write failure marks the connection dead
func (s *session) ping() error {
	return s.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout))
}

// ID - the connection identifier
func (s *session) ID() string {
	return s.id
}

// Send - push one binary frame, serialised with other writers
func (s *session) Send(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fault.ConnectionClosed
	}
	return s.write(message)
}

// Close - idempotent socket close
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
