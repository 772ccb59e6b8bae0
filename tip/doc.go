// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tip - chain tip record and its binary notification frame
//
// A tip notification is the 80 byte raw block header followed by the
// block height as a little-endian unsigned 32 bit integer, 84 bytes in
// total. The header content is opaque at this layer.
package tip
