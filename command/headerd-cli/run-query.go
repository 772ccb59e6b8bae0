// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/urfave/cli"
)

func runTips(c *cli.Context) error {
	return printGet(c, "/api/v1/chain/tips")
}

func runHeader(c *cli.Context) error {
	hash := c.Args().First()
	if "" == hash {
		return fmt.Errorf("missing argument: HASH")
	}
	return printGet(c, "/api/v1/chain/header/"+hash)
}

// fetch one JSON endpoint and print the body
func printGet(c *cli.Context, path string) error {

	url := "http://" + c.GlobalString("server") + path
	if c.GlobalBool("verbose") {
		fmt.Fprintf(c.App.Writer, "GET %s\n", url)
	}

	response, err := http.Get(url)
	if nil != err {
		return err
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if nil != err {
		return err
	}

	if http.StatusOK != response.StatusCode {
		return fmt.Errorf("server returned: %s: %s", response.Status, body)
	}

	fmt.Fprintf(c.App.Writer, "%s\n", body)

	return nil
}
