// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package proxy

import (
	"crypto/tls"
	"io/ioutil"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/logger"
)

// load a PEM certificate and key pair and return the TLS
// configuration along with the certificate fingerprint
//
// FreeBSD: openssl x509 -outform DER -in headerd.crt | sha3sum -a 256
func getCertificate(log *logger.L, certificateFile string, keyFile string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	certificatePEM, err := ioutil.ReadFile(certificateFile)
	if nil != err {
		log.Errorf("certificate: %q  error: %s", certificateFile, err)
		return nil, fin, err
	}
	keyPEM, err := ioutil.ReadFile(keyFile)
	if nil != err {
		log.Errorf("private key: %q  error: %s", keyFile, err)
		return nil, fin, err
	}

	keyPair, err := tls.X509KeyPair(certificatePEM, keyPEM)
	if nil != err {
		log.Errorf("failed to load keypair: %s", err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	fin = sha3.Sum256(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}
