// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"testing"

	"github.com/luxfi/geth/common"
)

func TestAddressScheme(t *testing.T) {
	yield := common.HexToAddress(LXYieldAddress)
	payout := common.HexToAddress(LXPayoutAddress)

	if got := LPNumber(yield); got != 0x9090 {
		t.Errorf("LXYield LP number: got %04X, want 9090", got)
	}
	if got := LPNumber(payout); got != 0x9091 {
		t.Errorf("LXPayout LP number: got %04X, want 9091", got)
	}
	if !IsMarketsFamily(yield) || !IsMarketsFamily(payout) {
		t.Error("assignments must sit on the DEX/Markets page")
	}
	if IsMarketsFamily(common.HexToAddress("0x0000000000000000000000000000000000002200")) {
		t.Error("LP-2xxx address misclassified as markets family")
	}
}

func TestGetPrecompileAddress(t *testing.T) {
	if got := GetPrecompileAddress("LX_YIELD"); got != common.HexToAddress(LXYieldAddress) {
		t.Errorf("got %s, want %s", got.Hex(), LXYieldAddress)
	}
	if got := GetPrecompileAddress("NOPE"); got != (common.Address{}) {
		t.Errorf("unknown name: got %s, want zero address", got.Hex())
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(common.HexToAddress(LXYieldAddress)); got != "LX_YIELD (LP-9090)" {
		t.Errorf("got %q", got)
	}
	if got := Describe(common.HexToAddress("0x0000000000000000000000000000000000009fff")); got != "unassigned (LP-9FFF)" {
		t.Errorf("got %q", got)
	}
}
