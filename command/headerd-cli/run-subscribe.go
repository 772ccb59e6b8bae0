// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli"

	"github.com/esvgate/headerd/tip"
)

func runSubscribe(c *cli.Context) error {

	server := c.GlobalString("server")
	verbose := c.GlobalBool("verbose")
	count := c.Int("count")

	url := "ws://" + server + "/api/v1/headers/tips/websocket"
	if verbose {
		fmt.Fprintf(c.App.Writer, "connecting to: %s\n", url)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if nil != err {
		return err
	}
	defer conn.Close()

	received := 0
loop:
	for {
		messageType, data, err := conn.ReadMessage()
		if nil != err {
			return err
		}
		if websocket.BinaryMessage != messageType {
			if verbose {
				fmt.Fprintf(c.App.Writer, "ignoring message type: %d\n", messageType)
			}
			continue loop
		}

		t, err := tip.Unpack(data)
		if nil != err {
			return err
		}

		fmt.Fprintf(c.App.Writer, "height: %d  header: %s\n", t.Height, hex.EncodeToString(t.Header))

		received += 1
		if count > 0 && received >= count {
			break loop
		}
	}

	return nil
}
