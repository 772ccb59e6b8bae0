// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package push - websocket push channel for chain tip notifications
//
// The channel is one-way: the server sends 84 byte binary tip frames,
// anything the client sends is logged and discarded. Each connection
// runs in its own goroutine: on connect it is registered and receives
// the current best tip, then it idles until the peer disconnects or
// errors. Deregistration and socket close are unconditional on every
// exit path.
package push
