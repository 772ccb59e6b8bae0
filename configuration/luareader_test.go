// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esvgate/headerd/configuration"
)

type testConfiguration struct {
	DataDirectory string `gluamapper:"data_directory"`
	ClientHTTP    struct {
		MaximumConnections int      `gluamapper:"maximum_connections"`
		Listen             []string `gluamapper:"listen"`
	} `gluamapper:"client_http"`
	HeaderSV struct {
		URL string `gluamapper:"url"`
	} `gluamapper:"header_sv"`
}

const sampleConfiguration = `
local M = {}

M.data_directory = "/var/lib/headerd"

M.client_http = {
    maximum_connections = 50,
    listen = {
        "127.0.0.1:8557",
    },
}

M.header_sv = {
    url = "http://127.0.0.1:33444",
}

return M
`

func TestParseConfigurationFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "configuration-test")
	assert.NoError(t, err, "cannot create scratch directory")
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "headerd.conf")
	err = ioutil.WriteFile(fileName, []byte(sampleConfiguration), 0600)
	assert.NoError(t, err, "cannot write configuration")

	var config testConfiguration
	err = configuration.ParseConfigurationFile(fileName, &config)
	assert.NoError(t, err, "parse failed")

	assert.Equal(t, "/var/lib/headerd", config.DataDirectory, "wrong data directory")
	assert.Equal(t, 50, config.ClientHTTP.MaximumConnections, "wrong connection limit")
	assert.Equal(t, []string{"127.0.0.1:8557"}, config.ClientHTTP.Listen, "wrong listen list")
	assert.Equal(t, "http://127.0.0.1:33444", config.HeaderSV.URL, "wrong upstream url")
}

func TestParseMissingFile(t *testing.T) {
	var config testConfiguration
	err := configuration.ParseConfigurationFile("/nonexistent/headerd.conf", &config)
	assert.Error(t, err, "missing file must fail")
}
