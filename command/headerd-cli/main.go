// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "headerd-cli"
	app.Usage = "command line client for a headerd server"
	app.Version = version

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server, s",
			Value: "127.0.0.1:47684",
			Usage: " headerd host/IP and port, `HOST:PORT`",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "subscribe",
			Usage:     "print tip notifications as they arrive",
			ArgsUsage: "\n   (connects to the tips websocket and waits)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 0,
					Usage: " exit after `N` notifications, zero waits forever",
				},
			},
			Action: runSubscribe,
		},
		{
			Name:   "tips",
			Usage:  "show the current chain tips",
			Action: runTips,
		},
		{
			Name:      "header",
			Usage:     "show one header by block hash",
			ArgsUsage: "HASH",
			Action:    runHeader,
		},
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
