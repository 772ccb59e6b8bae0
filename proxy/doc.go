// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package proxy - the client-facing HTTP server
//
// Serves the REST endpoints that relay header queries to the
// configured HeaderSV instance and the websocket endpoint for tip
// notifications.
//
// The relay endpoints are deliberately transparent: upstream status
// codes and bodies pass through verbatim, including upstream errors,
// so a caller sees exactly what the header service said. Only a
// network-level failure to reach the service is translated, into a
// 503 with a JSON error body.
package proxy
