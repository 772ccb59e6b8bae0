// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package upstream_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/fixtures"
	"github.com/esvgate/headerd/tip"
	"github.com/esvgate/headerd/upstream"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// a deterministic 80 byte raw header
func rawHeader(seed byte) []byte {
	header := make([]byte, tip.HeaderSize)
	for i := range header {
		header[i] = seed ^ byte(i)
	}
	return header
}

func tipJSON(hash string, state string, height uint32) map[string]interface{} {
	return map[string]interface{}{
		"header": map[string]interface{}{
			"hash":              hash,
			"version":           536870912,
			"prevBlockHash":     strings.Repeat("00", 32),
			"merkleRoot":        strings.Repeat("11", 32),
			"creationTimestamp": 1630000000,
			"difficultyTarget":  403014710,
			"nonce":             1072912272,
			"transactionCount":  4,
			"work":              4295032833,
		},
		"state":         state,
		"chainWork":     4295032833,
		"height":        height,
		"confirmations": 1,
	}
}

// upstream double serving tips and raw headers
type headerService struct {
	tips           []map[string]interface{}
	header         []byte
	headerRequests int
	lastHashCT     string // Content-Type header seen on by-hash requests
	lastHeightAcc  string // Accept header seen on by-height requests
}

func (h *headerService) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chain/tips", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.tips)
	})
	mux.HandleFunc("/api/v1/chain/header/byHeight", func(w http.ResponseWriter, r *http.Request) {
		h.lastHeightAcc = r.Header.Get("Accept")
		w.Header().Set("Content-Type", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(fmt.Sprintf("height=%s&count=%s", r.URL.Query().Get("height"), r.URL.Query().Get("count"))))
	})
	mux.HandleFunc("/api/v1/chain/header/", func(w http.ResponseWriter, r *http.Request) {
		h.headerRequests += 1
		h.lastHashCT = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(h.header)
	})
	mux.HandleFunc("/api/v1/network/peers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"ip":"127.0.0.1","port":8333}]`))
	})
	return httptest.NewServer(mux)
}

func newClient(url string) *upstream.Client {
	return upstream.New(logger.New(fixtures.LogCategory), url, 0)
}

func TestFetchCurrentTip(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	service := &headerService{
		tips: []map[string]interface{}{
			tipJSON(strings.Repeat("cd", 32), "STALE", 99),
			tipJSON(hash, upstream.StateLongestChain, 650000),
		},
		header: rawHeader(5),
	}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)

	current, err := client.FetchCurrentTip()
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, rawHeader(5), current.Header, "wrong raw header")
	assert.Equal(t, uint32(650000), current.Height, "wrong height")

	// the raw header fetch must carry the service's observed
	// (mis)negotiation: Content-Type, not Accept
	assert.Equal(t, "application/octet-stream", service.lastHashCT, "wrong negotiation header")

	packed, err := current.Pack()
	assert.NoError(t, err, "pack failed")
	assert.Equal(t, tip.FrameSize, len(packed), "wrong frame size")
}

func TestFetchCurrentTipNoLongestChain(t *testing.T) {
	service := &headerService{
		tips: []map[string]interface{}{
			tipJSON(strings.Repeat("cd", 32), "STALE", 99),
		},
		header: rawHeader(1),
	}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)

	_, err := client.FetchCurrentTip()
	assert.Equal(t, fault.MissingLongestChainTip, err, "wrong error")
	assert.Equal(t, 0, service.headerRequests, "header must not be fetched")
}

func TestFetchCurrentTipAmbiguousLongestChain(t *testing.T) {
	service := &headerService{
		tips: []map[string]interface{}{
			tipJSON(strings.Repeat("cd", 32), upstream.StateLongestChain, 99),
			tipJSON(strings.Repeat("ef", 32), upstream.StateLongestChain, 99),
		},
		header: rawHeader(1),
	}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)

	_, err := client.FetchCurrentTip()
	assert.Equal(t, fault.AmbiguousLongestChainTip, err, "wrong error")
	assert.Equal(t, 0, service.headerRequests, "header must not be fetched")
}

func TestUnreachableServiceIsDistinguished(t *testing.T) {
	server := (&headerService{}).server()
	url := server.URL
	server.Close() // nothing listening any more

	client := newClient(url)

	_, err := client.FetchChainTips()
	assert.Equal(t, fault.HeaderServiceUnavailable, err, "wrong error")
	assert.True(t, fault.IsErrUnavailable(err), "error not classed unavailable")

	_, err = client.FetchCurrentTip()
	assert.True(t, fault.IsErrUnavailable(err), "error not classed unavailable")
}

func TestErrorStatusIsRelayedNotRaised(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(server.URL)

	response, err := client.FetchHeader(strings.Repeat("ab", 32), false)
	assert.NoError(t, err, "non-success status must not raise")
	assert.Equal(t, http.StatusInternalServerError, response.StatusCode, "wrong status")
	assert.False(t, response.IsOK(), "500 must not be OK")
}

func TestFetchHeaderNegotiation(t *testing.T) {
	service := &headerService{header: rawHeader(9)}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)

	hash := strings.Repeat("ab", 32)

	_, err := client.FetchHeader(hash, false)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, "application/json", service.lastHashCT, "wrong negotiation header")

	_, err = client.FetchHeader(hash, true)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, "application/octet-stream", service.lastHashCT, "wrong negotiation header")

	_, err = client.FetchHeadersByHeight("10", "5", true)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, "application/octet-stream", service.lastHeightAcc, "byHeight must use Accept")
}

func TestFetchHeaderCachesByHash(t *testing.T) {
	service := &headerService{header: rawHeader(7)}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)
	hash := strings.Repeat("77", 32)

	first, err := client.FetchHeader(hash, true)
	assert.NoError(t, err, "fetch failed")
	second, err := client.FetchHeader(hash, true)
	assert.NoError(t, err, "fetch failed")

	assert.Equal(t, first.Body, second.Body, "cached body differs")
	assert.Equal(t, 1, service.headerRequests, "second fetch must be served from cache")

	// a different representation is a separate cache entry
	_, err = client.FetchHeader(hash, false)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, 2, service.headerRequests, "json representation must be fetched separately")
}

func TestFetchHeadersByHeightPassesParameters(t *testing.T) {
	service := &headerService{}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)

	response, err := client.FetchHeadersByHeight("123", "7", false)
	assert.NoError(t, err, "fetch failed")
	assert.Equal(t, "height=123&count=7", string(response.Body), "parameters not passed through")
}

func TestFetchPeers(t *testing.T) {
	service := &headerService{}
	server := service.server()
	defer server.Close()

	client := newClient(server.URL)

	response, err := client.FetchPeers()
	assert.NoError(t, err, "fetch failed")
	assert.True(t, response.IsOK(), "wrong status")
	assert.Contains(t, string(response.Body), "127.0.0.1", "wrong body")
}
