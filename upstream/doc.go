// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package upstream - client for the HeaderSV header-indexing service
//
// All operations classify network-level failures (connection refused,
// DNS, timeouts) as the distinguished fault.HeaderServiceUnavailable so
// callers can degrade instead of treating the condition as a local
// fault. A non-success HTTP status from the service is not an error
// here: it is captured in the Response and relayed verbatim.
package upstream
