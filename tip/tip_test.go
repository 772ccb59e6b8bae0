// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tip_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/tip"
)

// a pseudo-random but deterministic 80 byte header
func testHeader(seed byte) []byte {
	header := make([]byte, tip.HeaderSize)
	for i := range header {
		header[i] = seed + byte(i)*7
	}
	return header
}

func TestPackUnpackRoundTrip(t *testing.T) {
	heights := []uint32{0, 1, 99, 650000, math.MaxUint32}

	for i, height := range heights {
		header := testHeader(byte(i))

		packed, err := tip.Tip{Header: header, Height: height}.Pack()
		assert.NoError(t, err, "%d: pack failed", i)
		assert.Equal(t, tip.FrameSize, len(packed), "%d: wrong frame length", i)

		unpacked, err := tip.Unpack(packed)
		assert.NoError(t, err, "%d: unpack failed", i)
		assert.Equal(t, header, unpacked.Header, "%d: wrong header", i)
		assert.Equal(t, height, unpacked.Height, "%d: wrong height", i)
	}
}

func TestPackHeightIsLittleEndian(t *testing.T) {
	packed, err := tip.Tip{Header: testHeader(0), Height: 0x01020304}.Pack()
	assert.NoError(t, err, "pack failed")

	assert.Equal(t, uint32(0x01020304), binary.LittleEndian.Uint32(packed[80:84]), "height bytes not little-endian")
	assert.True(t, bytes.Equal([]byte{0x04, 0x03, 0x02, 0x01}, packed[80:84]), "wrong trailing bytes")
}

func TestPackRejectsWrongHeaderLength(t *testing.T) {
	lengths := []int{0, 1, 79, 81, 160}

	for _, n := range lengths {
		_, err := tip.Tip{Header: make([]byte, n), Height: 1}.Pack()
		assert.Equal(t, fault.InvalidHeaderLength, err, "length %d must be rejected", n)
	}

	_, err := tip.Tip{Height: 1}.Pack()
	assert.Equal(t, fault.InvalidHeaderLength, err, "nil header must be rejected")
}

func TestUnpackRejectsWrongFrameLength(t *testing.T) {
	lengths := []int{0, 80, 83, 85, 168}

	for _, n := range lengths {
		_, err := tip.Unpack(make([]byte, n))
		assert.Equal(t, fault.InvalidFrameLength, err, "length %d must be rejected", n)
	}
}

// the unpacked header must be a copy, not an alias of the frame
func TestUnpackCopiesHeader(t *testing.T) {
	packed, err := tip.Tip{Header: testHeader(3), Height: 42}.Pack()
	assert.NoError(t, err, "pack failed")

	unpacked, err := tip.Unpack(packed)
	assert.NoError(t, err, "unpack failed")

	packed[0] ^= 0xff
	assert.Equal(t, testHeader(3), unpacked.Header, "header aliased the frame buffer")
}
