// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package upstream

import (
	"encoding/json"

	"github.com/esvgate/headerd/fault"
	"github.com/esvgate/headerd/tip"
)

// StateLongestChain - the distinguished chain state of the best tip
const StateLongestChain = "LONGEST_CHAIN"

// Header - JSON header object as returned by the header service
type Header struct {
	Hash              string      `json:"hash"`
	Version           int32       `json:"version"`
	PrevBlockHash     string      `json:"prevBlockHash"`
	MerkleRoot        string      `json:"merkleRoot"`
	CreationTimestamp int64       `json:"creationTimestamp"`
	DifficultyTarget  uint64      `json:"difficultyTarget"`
	Nonce             uint32      `json:"nonce"`
	TransactionCount  int64       `json:"transactionCount"`
	Work              json.Number `json:"work"`
}

// ChainTip - JSON chain tip object as returned by the header service
type ChainTip struct {
	Header        Header      `json:"header"`
	State         string      `json:"state"`
	ChainWork     json.Number `json:"chainWork"`
	Height        uint32      `json:"height"`
	Confirmations int64       `json:"confirmations"`
}

// FetchCurrentTip - determine the current best chain tip
//
// queries the chain tips list, selects the single LONGEST_CHAIN entry
// and fetches its raw 80 byte header; zero or more than one longest
// chain entries is an upstream data-integrity fault and is reported as
// a fetch failure
func (c *Client) FetchCurrentTip() (tip.Tip, error) {

	response, err := c.FetchChainTips()
	if nil != err {
		return tip.Tip{}, err
	}
	if !response.IsOK() {
		c.log.Errorf("chain tips request failed: %s", response.Reason)
		return tip.Tip{}, fault.TipFetchFailed
	}

	var tips []ChainTip
	if err := json.Unmarshal(response.Body, &tips); nil != err {
		c.log.Errorf("chain tips decode failed: %s", err)
		return tip.Tip{}, fault.InvalidTipResponse
	}

	longestCount := 0
	var longest ChainTip
	for _, t := range tips {
		if StateLongestChain == t.State {
			longest = t
			longestCount += 1
		}
	}

	switch {
	case 0 == longestCount:
		c.log.Errorf("no %s tip among %d tips", StateLongestChain, len(tips))
		return tip.Tip{}, fault.MissingLongestChainTip
	case longestCount > 1:
		c.log.Errorf("%d %s tips among %d tips", longestCount, StateLongestChain, len(tips))
		return tip.Tip{}, fault.AmbiguousLongestChainTip
	}

	headerResponse, err := c.FetchHeader(longest.Header.Hash, true)
	if nil != err {
		return tip.Tip{}, err
	}
	if !headerResponse.IsOK() {
		c.log.Errorf("raw header request for %s failed: %s", longest.Header.Hash, headerResponse.Reason)
		return tip.Tip{}, fault.TipFetchFailed
	}

	return tip.Tip{
		Header: headerResponse.Body,
		Height: longest.Height,
	}, nil
}
