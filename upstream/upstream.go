// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package upstream

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/esvgate/headerd/fault"
)

// content types used for upstream negotiation
const (
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
)

// internal constants
const (
	defaultRequestsPerSecond = 50

	// raw headers are immutable for a given hash so short-term
	// memoisation of by-hash responses is safe; tips are never cached
	headerCacheExpiry = 5 * time.Minute
	headerCacheSweep  = 10 * time.Minute
)

// Configuration - the header_sv section of the configuration file
//
// TipPollInterval is in seconds; zero disables tip change polling
type Configuration struct {
	URL               string  `gluamapper:"url" json:"url"`
	RequestsPerSecond float64 `gluamapper:"requests_per_second" json:"requests_per_second"`
	TipPollInterval   int     `gluamapper:"tip_poll_interval" json:"tip_poll_interval"`
}

// Client - connection to a HeaderSV instance
type Client struct {
	log         *logger.L
	client      *http.Client
	url         string
	limiter     *rate.Limiter
	headerCache *cache.Cache
}

// Response - a relayed upstream reply
type Response struct {
	StatusCode  int
	Reason      string // status line as received, relayed verbatim
	ContentType string
	Body        []byte
}

// IsOK - check for a success status
func (r *Response) IsOK() bool {
	return http.StatusOK == r.StatusCode
}

// New - create a client for the header service at serviceURL
//
// requestsPerSecond limits calls to the service, zero selects the default
func New(log *logger.L, serviceURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRequestsPerSecond
	}

	return &Client{
		log:         log,
		client:      &http.Client{},
		url:         strings.TrimRight(serviceURL, "/"),
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)),
		headerCache: cache.New(headerCacheExpiry, headerCacheSweep),
	}
}

// URL - the configured service URL
func (c *Client) URL() string {
	return c.url
}

// FetchHeader - retrieve a single header by block hash
//
// binary selects the raw 80 byte representation, otherwise JSON
func (c *Client) FetchHeader(hash string, binary bool) (*Response, error) {

	key := hash + "/json"
	// Note: HeaderSV expects 'Content-Type' on this endpoint where
	// 'Accept' would be correct; preserve the observed behaviour
	requestHeaders := map[string]string{"Content-Type": ContentTypeJSON}
	if binary {
		key = hash + "/binary"
		requestHeaders["Content-Type"] = ContentTypeOctetStream
	}

	if cached, ok := c.headerCache.Get(key); ok {
		return cached.(*Response), nil
	}

	response, err := c.get("/api/v1/chain/header/"+url.PathEscape(hash), requestHeaders)
	if nil != err {
		return nil, err
	}

	if response.IsOK() {
		c.headerCache.SetDefault(key, response)
	}

	return response, nil
}

// FetchHeadersByHeight - retrieve count headers starting at height
//
// height and count are passed through verbatim as query parameters
func (c *Client) FetchHeadersByHeight(height string, count string, binary bool) (*Response, error) {

	// this endpoint negotiates with a normal Accept header
	accept := ContentTypeJSON
	if binary {
		accept = ContentTypeOctetStream
	}

	path := fmt.Sprintf(
		"/api/v1/chain/header/byHeight?height=%s&count=%s",
		url.QueryEscape(height),
		url.QueryEscape(count),
	)

	return c.get(path, map[string]string{"Accept": accept})
}

// FetchChainTips - retrieve the JSON list of chain tips
func (c *Client) FetchChainTips() (*Response, error) {
	return c.get("/api/v1/chain/tips", map[string]string{"Accept": ContentTypeJSON})
}

// FetchPeers - retrieve the JSON list of service peers
func (c *Client) FetchPeers() (*Response, error) {
	return c.get("/api/v1/network/peers", map[string]string{"Accept": ContentTypeJSON})
}

// perform one rate-limited GET against the service
func (c *Client) get(path string, requestHeaders map[string]string) (*Response, error) {

	if err := c.rateLimit(); nil != err {
		return nil, err
	}

	request, err := http.NewRequest("GET", c.url+path, nil)
	if nil != err {
		return nil, err
	}
	for name, value := range requestHeaders {
		request.Header.Set(name, value)
	}

	response, err := c.client.Do(request)
	if nil != err {
		// connection refused / DNS / network-level failure
		c.log.Errorf("header service is unavailable on %s: %s", c.url, err)
		return nil, fault.HeaderServiceUnavailable
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if nil != err {
		c.log.Errorf("header service read failed: %s", err)
		return nil, fault.HeaderServiceUnavailable
	}

	c.log.Tracef("GET %s: %s  bytes: %d", path, response.Status, len(body))

	return &Response{
		StatusCode:  response.StatusCode,
		Reason:      response.Status,
		ContentType: response.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// limiting for a single request
func (c *Client) rateLimit() error {
	r := c.limiter.Reserve()
	if !r.OK() {
		return fault.RateLimiting
	}
	time.Sleep(r.Delay())
	return nil
}
