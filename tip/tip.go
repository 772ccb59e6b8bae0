// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tip

import (
	"encoding/binary"

	"github.com/esvgate/headerd/fault"
)

// sizes of the notification frame components
const (
	HeaderSize = 80
	FrameSize  = HeaderSize + 4
)

// Tip - the best chain tip as reported by the header service
//
// transient data: fetched fresh for each notification, never cached
type Tip struct {
	Header []byte // raw 80 byte block header
	Height uint32
}

// Pack - serialise a tip into its 84 byte notification frame
//
// fails if the raw header is not exactly 80 bytes; a malformed header
// must never be forwarded as a short or long frame
func (t Tip) Pack() ([]byte, error) {
	if HeaderSize != len(t.Header) {
		return nil, fault.InvalidHeaderLength
	}

	frame := make([]byte, FrameSize)
	copy(frame, t.Header)
	binary.LittleEndian.PutUint32(frame[HeaderSize:], t.Height)

	return frame, nil
}

// Unpack - split an 84 byte notification frame back into a tip
func Unpack(frame []byte) (Tip, error) {
	if FrameSize != len(frame) {
		return Tip{}, fault.InvalidFrameLength
	}

	header := make([]byte, HeaderSize)
	copy(header, frame[:HeaderSize])

	return Tip{
		Header: header,
		Height: binary.LittleEndian.Uint32(frame[HeaderSize:]),
	}, nil
}
