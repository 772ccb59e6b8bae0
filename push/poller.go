// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package push

import (
	"bytes"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/esvgate/headerd/fault"
)

// tipPoller - background process that watches the header service for
// best tip changes and triggers a broadcast on each change
//
// an unreachable service only delays the next notification; the poll
// keeps retrying on its interval
type tipPoller struct {
	interval  time.Duration
	lastFrame []byte
}

func (p *tipPoller) Run(args interface{}, shutdown <-chan struct{}) {

	log := args.(*logger.L)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(p.interval):
		}

		globalData.RLock()
		client := globalData.upstream
		globalData.RUnlock()

		current, err := client.FetchCurrentTip()
		if nil != err {
			if fault.IsErrUnavailable(err) {
				log.Warnf("tip poll: header service is unavailable")
			} else {
				log.Errorf("tip poll failed: %s", err)
			}
			continue loop
		}

		frame, err := current.Pack()
		if nil != err {
			log.Errorf("tip poll: malformed header: %s", err)
			continue loop
		}

		if bytes.Equal(frame, p.lastFrame) {
			continue loop
		}

		first := nil == p.lastFrame
		p.lastFrame = frame

		// clients connected before the first poll already received
		// this tip on connect
		if first {
			continue loop
		}

		if err := BroadcastTip(current); nil != err {
			log.Errorf("broadcast failed: %s", err)
		}
	}
}
