// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proxy

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bitmark-inc/logger"
	"github.com/julienschmidt/httprouter"

	"github.com/esvgate/headerd/counter"
	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/push"
	"github.com/esvgate/headerd/upstream"
)

// gauge of in-flight requests
var connectionCount counter.Counter

// the argument passed to the handlers
type httpHandler struct {
	log                *logger.L
	upstream           *upstream.Client
	version            string
	maximumConnections uint64
}

// build the request router
//
// httprouter cannot mix a static path with a wildcard in the same
// segment, so "byHeight" is carved out of the ":hash" parameter inside
// the header handler
func (s *httpHandler) router() http.Handler {
	router := httprouter.New()

	router.GET("/api/v1/chain/header/:hash", s.guard(s.header))
	router.GET("/api/v1/chain/tips", s.guard(s.chainTips))
	router.GET("/api/v1/network/peers", s.guard(s.peers))

	websocket := push.Handler()
	router.GET("/api/v1/headers/tips/websocket",
		func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			websocket.ServeHTTP(w, r)
		})

	// anything not matched returns a JSON error
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.tag(w)
		sendNotFound(w)
	})
	router.HandleMethodNotAllowed = true
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.tag(w)
		sendMethodNotAllowed(w)
	})

	return router
}

// wrap a handler with the connection gauge and limit
func (s *httpHandler) guard(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if s.maximumConnections > 0 && connectionCount.Uint64() >= s.maximumConnections {
			s.log.Warnf("connection limit reached: %d", s.maximumConnections)
			s.tag(w)
			sendError(w, "connection limit reached", http.StatusServiceUnavailable)
			return
		}
		connectionCount.Increment()
		defer connectionCount.Decrement()

		s.tag(w)
		h(w, r, p)
	}
}

// mark every response as ours
func (s *httpHandler) tag(w http.ResponseWriter) {
	w.Header().Set("User-Agent", "headerd/"+s.version)
}

// the caller's Accept header selects the representation the service
// is asked for
func wantsBinary(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), upstream.ContentTypeOctetStream)
}

// GET /api/v1/chain/header/:hash
// GET /api/v1/chain/header/byHeight?height=N[&count=M]
func (s *httpHandler) header(w http.ResponseWriter, r *http.Request, p httprouter.Params) {

	hash := p.ByName("hash")

	if "byHeight" == hash {
		s.headersByHeight(w, r)
		return
	}

	if "" == hash {
		s.log.Warnf("header request without a block hash from: %q", r.RemoteAddr)
		sendError(w, fault.MissingHashParameter.Error(), http.StatusBadRequest)
		return
	}

	response, err := s.upstream.FetchHeader(hash, wantsBinary(r))
	if nil != err {
		s.relayError(w, err)
		return
	}
	s.relay(w, response)
}

// the height parameter is required; count defaults to one header
func (s *httpHandler) headersByHeight(w http.ResponseWriter, r *http.Request) {

	query := r.URL.Query()

	height := query.Get("height")
	if "" == height {
		s.log.Warnf("byHeight request without a height from: %q", r.RemoteAddr)
		sendError(w, fault.MissingParameters.Error(), http.StatusBadRequest)
		return
	}

	count := query.Get("count")
	if "" == count {
		count = "1"
	}

	response, err := s.upstream.FetchHeadersByHeight(height, count, wantsBinary(r))
	if nil != err {
		s.relayError(w, err)
		return
	}
	s.relay(w, response)
}

// GET /api/v1/chain/tips
func (s *httpHandler) chainTips(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	response, err := s.upstream.FetchChainTips()
	if nil != err {
		s.relayError(w, err)
		return
	}
	s.relay(w, response)
}

// GET /api/v1/network/peers
func (s *httpHandler) peers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	response, err := s.upstream.FetchPeers()
	if nil != err {
		s.relayError(w, err)
		return
	}
	s.relay(w, response)
}

// pass the upstream reply through verbatim
func (s *httpHandler) relay(w http.ResponseWriter, response *upstream.Response) {
	if "" != response.ContentType {
		w.Header().Set("Content-Type", response.ContentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(response.StatusCode)
	_, _ = w.Write(response.Body)
}

// only a failure to reach the service ends up here; everything the
// service actually said is relayed instead
func (s *httpHandler) relayError(w http.ResponseWriter, err error) {
	if fault.IsErrUnavailable(err) {
		sendError(w, fault.HeaderServiceUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Errorf("upstream request failed: %s", err)
	sendInternalServerError(w)
}

// selected errors as required above
func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}
func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}
func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just incase JSON fails
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}
