// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// ActiveRatePerSecond sums the average per-second reward rate of every
// campaign live at now: amount / (end - start) for campaigns with
// start <= now < end. Campaigns outside the window contribute nothing.
//
// Integer division truncates toward zero on purpose: the emission figure
// is a conservative underestimate, never an overestimate. The divisor is
// never zero because Add enforces start < end.
func (r *CampaignRegistry) ActiveRatePerSecond(stateDB StateDB, vault common.Address, now uint64) *big.Int {
	rate := new(big.Int)
	for _, word := range loadWords(stateDB, vault) {
		c := DecodeCampaign(word)
		if c.StartTime > now || now >= c.EndTime {
			continue
		}
		duration := new(big.Int).SetUint64(c.EndTime - c.StartTime)
		rate.Add(rate, new(big.Int).Div(c.Amount, duration))
	}
	return rate
}
