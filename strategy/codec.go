// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Campaigns are packed into a single 256-bit word for storage density and
// set-membership hashing:
//
//	startTime(64 MSB) | endTime(64) | amount(128 LSB)
//
// The codec is a lossless bijection over valid campaigns: equal triples
// produce equal words, which is what makes duplicate insertion a no-op at
// the registry. Validity (start < end, amount within 128 bits) is the
// registry's concern, not the codec's; every word is a decode target.

var (
	maxUint64Word  = new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 192)
	maxUint128Word = new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 128)
)

// EncodeCampaign packs a campaign into one 256-bit word.
func EncodeCampaign(c Campaign) common.Hash {
	word := new(uint256.Int).SetUint64(c.StartTime)
	word.Lsh(word, 64)
	word.Or(word, new(uint256.Int).SetUint64(c.EndTime))
	word.Lsh(word, 128)

	amount, overflow := uint256.FromBig(c.Amount)
	if amount == nil || overflow {
		amount = new(uint256.Int)
	}
	word.Or(word, new(uint256.Int).And(amount, maxUint128Word))

	return common.Hash(word.Bytes32())
}

// DecodeCampaign unpacks a 256-bit word into a campaign.
func DecodeCampaign(w common.Hash) Campaign {
	word := new(uint256.Int).SetBytes32(w[:])

	amount := new(uint256.Int).And(word, maxUint128Word)

	word.Rsh(word, 128)
	endTime := new(uint256.Int).And(word, maxUint64Word).Uint64()

	word.Rsh(word, 64)
	startTime := word.Uint64()

	return Campaign{
		StartTime: startTime,
		EndTime:   endTime,
		Amount:    amount.ToBig(),
	}
}

// amountFits reports whether a campaign amount survives packing intact.
func amountFits(amount *big.Int) bool {
	return amount != nil && amount.Sign() >= 0 && amount.Cmp(maxUint128) <= 0
}
