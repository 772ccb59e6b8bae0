// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package push

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/esvgate/headerd/registry"
)

const pingInterval = 30 * time.Second

// pinger - background process probing long-lived connections
//
// a failed ping closes the socket which drives the session through
// its normal teardown path
type pinger struct {
	interval time.Duration
}

func (p *pinger) Run(args interface{}, shutdown <-chan struct{}) {

	log := args.(*logger.L)

	ticker := time.NewTicker(p.interval)

loop:
	for {
		select {
		case <-shutdown:
			ticker.Stop()
			break loop
		case <-ticker.C:
		}

		globalData.RLock()
		clients := globalData.clients
		globalData.RUnlock()

		clients.ForEach(func(conn registry.Connection) {
			s, ok := conn.(*session)
			if !ok {
				return
			}
			if err := s.ping(); nil != err {
				log.Warnf("%s: ping failed: %s", s.id, err)
				_ = s.Close()
			}
		})
	}
}
