// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry defines the LP-aligned precompile address scheme and the
// assignments on the DEX/Markets page this repo occupies.
package registry

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// ============================================================================
// PRECOMPILE ADDRESS SCHEME - Aligned with LP Numbering (LP-0099)
// ============================================================================
//
// All Lux-native precompiles use trailing-significant 20-byte addresses:
//   Format: 0x0000000000000000000000000000000000PCII
//
// The address ends with the 16-bit LP number (PCII) for easy identification.
// The selector encodes:
//   0x 0000...0000 P C II
//                  │ │ └┴─ Item/function (8 bits, 256 items per family×chain)
//                  │ └──── Chain slot    (4 bits, 16 chains max)
//                  └────── Family page   (4 bits, aligned with LP-Pxxx)
//
// This repo occupies the DEX/Markets page:
//   P=9 → LP-9xxx (DEX/Markets)
//
// Example: LXYield = P=9, C=0, II=90
//          Address = 0x0000000000000000000000000000000000009090 (LP-9090)

const (
	// =========================================================================
	// PAGE 9: DEX/MARKETS (0x9CII) → LP-9xxx
	// =========================================================================

	// LXYield: vault yield strategy singleton (LP-9090)
	LXYieldAddress = "0x0000000000000000000000000000000000009090"

	// LXPayout: reward payout relay (LP-9091)
	LXPayoutAddress = "0x0000000000000000000000000000000000009091"
)

// MarketsFamilyPage is the P nibble of the DEX/Markets LP range.
const MarketsFamilyPage = 0x9

// PrecompileInfo describes one assigned precompile address.
type PrecompileInfo struct {
	Address     string
	Name        string
	Description string
	GasCost     uint64
	Chains      []string
	LPRange     string
}

// AllPrecompiles lists every assignment on this repo's page.
var AllPrecompiles = []PrecompileInfo{
	{LXYieldAddress, "LX_YIELD", "Vault yield strategy (campaigns, APR, harvest)", 60000, []string{"C", "Zoo"}, "LP-9090"},
	{LXPayoutAddress, "LX_PAYOUT", "Reward payout relay (distribution root claims)", 25000, []string{"C", "Zoo"}, "LP-9091"},
}

// GetPrecompileAddress returns the address for a precompile by name
func GetPrecompileAddress(name string) common.Address {
	for _, p := range AllPrecompiles {
		if p.Name == name {
			return common.HexToAddress(p.Address)
		}
	}
	return common.Address{}
}

// FamilyPage extracts the P nibble from an LP-aligned precompile address.
func FamilyPage(addr common.Address) byte {
	return addr[18] >> 4
}

// LPNumber extracts the 16-bit LP number from an LP-aligned address.
func LPNumber(addr common.Address) uint16 {
	return uint16(addr[18])<<8 | uint16(addr[19])
}

// IsMarketsFamily reports whether the address sits on the DEX/Markets page.
func IsMarketsFamily(addr common.Address) bool {
	return FamilyPage(addr) == MarketsFamilyPage
}

// Describe names an assigned precompile address, e.g. "LX_YIELD (LP-9090)".
// Unassigned addresses report with their LP number only.
func Describe(addr common.Address) string {
	for _, p := range AllPrecompiles {
		if common.HexToAddress(p.Address) == addr {
			return fmt.Sprintf("%s (%s)", p.Name, p.LPRange)
		}
	}
	return fmt.Sprintf("unassigned (LP-%04X)", LPNumber(addr))
}
