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

	"github.com/esvgate/headerd/background"
	"github.com/esvgate/headerd/counter"
	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/registry"
	"github.com/esvgate/headerd/upstream"
)

// globals for the push system
type pushData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	clients  *registry.Registry
	upstream *upstream.Client

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData pushData

// gauges
var connectionCount counter.Counter
var broadcastCount counter.Counter

// Initialise - start the push system
//
// pollInterval sets the tip change detection rate; zero disables the
// poller, leaving BroadcastTip as an externally driven trigger
func Initialise(client *upstream.Client, pollInterval time.Duration) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("push")
	globalData.log = log
	log.Info("starting…")

	globalData.clients = registry.New()
	globalData.upstream = client

	processes := background.Processes{
		&pinger{interval: pingInterval},
	}
	if pollInterval > 0 {
		processes = append(processes, &tipPoller{interval: pollInterval})
	}

	log.Info("start background…")
	globalData.background = background.Start(processes, log)

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop all background tasks and drop remaining clients
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.background.Stop()

	// closing the sockets unblocks each session's receive loop which
	// performs its own deregistration
	globalData.clients.ForEach(func(conn registry.Connection) {
		_ = conn.Close()
	})

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// ConnectionCount - number of currently registered clients
func ConnectionCount() uint64 {
	return connectionCount.Uint64()
}

// BroadcastCount - number of completed tip broadcasts
func BroadcastCount() uint64 {
	return broadcastCount.Uint64()
}

// Handler - the http handler for the tips websocket endpoint
func Handler() http.Handler {
	return http.HandlerFunc(handleConnection)
}

// accept one websocket client and run its session to completion
func handleConnection(w http.ResponseWriter, r *http.Request) {
	globalData.RLock()
	initialised := globalData.initialised
	log := globalData.log
	clients := globalData.clients
	client := globalData.upstream
	globalData.RUnlock()

	if !initialised {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if nil != err {
		log.Errorf("websocket upgrade failed: %s", err)
		return
	}

	newSession(conn, clients, client, log).run(r.Host)
}
