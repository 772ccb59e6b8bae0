// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package push

import (
	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/registry"
	"github.com/esvgate/headerd/tip"
)

// BroadcastTip - push a tip notification to every registered client
//
// This is the tip change trigger point: the internal poller calls it
// when the best chain moves and other subsystems may call it directly.
// Delivery order across clients is unspecified. A send failure is
// fatal only for that client; the remaining clients still receive the
// frame.
func BroadcastTip(t tip.Tip) error {
	globalData.RLock()
	if !globalData.initialised {
		globalData.RUnlock()
		return fault.NotInitialised
	}
	log := globalData.log
	clients := globalData.clients
	globalData.RUnlock()

	packed, err := t.Pack()
	if nil != err {
		// never fan out a malformed frame
		return err
	}

	delivered := 0
	clients.ForEach(func(conn registry.Connection) {
		if err := conn.Send(packed); nil != err {
			// the session's receive loop observes the close and
			// deregisters itself
			log.Warnf("%s: tip send failed: %s", conn.ID(), err)
			_ = conn.Close()
			return
		}
		delivered += 1
	})

	broadcastCount.Increment()
	log.Infof("tip height: %d  broadcast to: %d clients", t.Height, delivered)

	return nil
}
