// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proxy

import (
	"crypto/tls"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/upstream"
)

// websocket clients hold their connection open, so only the read side
// gets a server-level timeout; writes are bounded per frame
const readTimeout = 10 * time.Second

// Configuration - the client_http section of the configuration file
type Configuration struct {
	MaximumConnections uint64   `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string `gluamapper:"listen" json:"listen"`
	Certificate        string   `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string   `gluamapper:"private_key" json:"private_key"`
}

// globals for the proxy server
type proxyData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	servers []*http.Server

	// set once during initialise
	initialised bool
}

// global data
var globalData proxyData

// Initialise - start serving the REST and websocket endpoints
func Initialise(configuration *Configuration, client *upstream.Client, version string) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("proxy")
	globalData.log = log
	log.Info("starting…")

	if 0 == len(configuration.Listen) {
		log.Error("missing listen addresses")
		return fault.InvalidListenAddress
	}

	handler := &httpHandler{
		log:                log,
		upstream:           client,
		version:            version,
		maximumConnections: configuration.MaximumConnections,
	}
	router := handler.router()

	var tlsConfiguration *tls.Config
	if "" != configuration.Certificate {
		tlsConf, fingerprint, err := getCertificate(log, configuration.Certificate, configuration.PrivateKey)
		if nil != err {
			return err
		}
		tlsConfiguration = tlsConf
		log.Infof("certificate fingerprint: %s", hex.EncodeToString(fingerprint[:]))
	}

	for _, listen := range configuration.Listen {
		if '*' == listen[0] {
			// change "*:PORT" to "[::]:PORT"
			// on the assumption that this will listen on tcp4 and tcp6
			listen = "[::]" + ":" + strings.Split(listen, ":")[1]
		}

		server := &http.Server{
			Addr:           listen,
			Handler:        router,
			ReadTimeout:    readTimeout,
			MaxHeaderBytes: 1 << 20,
		}

		ln, err := net.Listen("tcp", listen)
		if nil != err {
			log.Errorf("listen on: %q  error: %s", listen, err)
			return err
		}

		log.Infof("starting server on: %q", listen)
		if nil != tlsConfiguration {
			cfg := tlsConfiguration.Clone()
			cfg.NextProtos = []string{"http/1.1"}
			ln = tls.NewListener(ln, cfg)
		}

		go func(server *http.Server, ln net.Listener) {
			err := server.Serve(ln)
			if nil != err && http.ErrServerClosed != err {
				log.Errorf("server on: %q stopped: %s", server.Addr, err)
			}
		}(server, ln)

		globalData.servers = append(globalData.servers, server)
	}

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop all listeners
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	for _, server := range globalData.servers {
		_ = server.Close()
	}
	globalData.servers = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// ConnectionCount - number of requests currently in flight
func ConnectionCount() uint64 {
	return connectionCount.Uint64()
}
