// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"
)

func TestPayoutClaimSingleLeaf(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amount := bigInt("1000000000000000000")
	// a one-leaf distribution: the leaf is the root, the proof is empty
	root := payoutLeaf(testAccount, testRewardToken, amount)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}

	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got := CreditedBalance(db, testRewardToken, testAccount); got.Cmp(amount) != 0 {
		t.Errorf("credited: got %s, want %s", got, amount)
	}
}

func TestPayoutClaimWithProof(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amountA := big.NewInt(100)
	amountB := big.NewInt(200)
	leafA := payoutLeaf(testAccount, testRewardToken, amountA)
	leafB := payoutLeaf(testStranger, testRewardToken, amountB)
	root := hashPair(leafA, leafB)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}

	if err := relay.Claim(db, testAccount, testRewardToken, amountA, []common.Hash{leafB}); err != nil {
		t.Fatalf("claim A: %v", err)
	}
	if err := relay.Claim(db, testStranger, testRewardToken, amountB, []common.Hash{leafA}); err != nil {
		t.Fatalf("claim B: %v", err)
	}

	if got := CreditedBalance(db, testRewardToken, testAccount); got.Cmp(amountA) != 0 {
		t.Errorf("A credited: got %s, want %s", got, amountA)
	}
	if got := CreditedBalance(db, testRewardToken, testStranger); got.Cmp(amountB) != 0 {
		t.Errorf("B credited: got %s, want %s", got, amountB)
	}
}

func TestPayoutDoubleClaim(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amount := big.NewInt(100)
	root := payoutLeaf(testAccount, testRewardToken, amount)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}

	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("got %v, want ErrAlreadyClaimed", err)
	}
	// the balance is credited exactly once
	if got := CreditedBalance(db, testRewardToken, testAccount); got.Cmp(amount) != 0 {
		t.Errorf("credited: got %s, want %s", got, amount)
	}
}

func TestPayoutBadProof(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amount := big.NewInt(100)
	root := payoutLeaf(testAccount, testRewardToken, amount)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}

	// tampered amount
	if err := relay.Claim(db, testAccount, testRewardToken, big.NewInt(101), nil); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("got %v, want ErrInvalidProof", err)
	}
	// bogus sibling
	if err := relay.Claim(db, testAccount, testRewardToken, amount, []common.Hash{{1}}); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("got %v, want ErrInvalidProof", err)
	}
	if got := CreditedBalance(db, testRewardToken, testAccount); got.Sign() != 0 {
		t.Errorf("rejected claim credited %s", got)
	}
}

func TestPayoutRootRotationOpensNewEpoch(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amount := big.NewInt(100)
	root := payoutLeaf(testAccount, testRewardToken, amount)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}
	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// same leaf becomes claimable again under the next epoch's root
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("rotate root: %v", err)
	}
	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("claim after rotation: %v", err)
	}
	want := new(big.Int).Mul(amount, big.NewInt(2))
	if got := CreditedBalance(db, testRewardToken, testAccount); got.Cmp(want) != 0 {
		t.Errorf("credited: got %s, want %s", got, want)
	}
}

func TestPayoutSetRootUnauthorized(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()
	if err := relay.SetRoot(db, testStranger, common.Hash{1}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
	if relay.Root(db) != (common.Hash{}) {
		t.Error("rejected rotation must not write the root")
	}
}

// Two instances over the same state share one claim history: a leaf paid
// through the first relay must be rejected by a second.
func TestPayoutClaimHistoryShared(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amount := big.NewInt(100)
	root := payoutLeaf(testAccount, testRewardToken, amount)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}
	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("claim: %v", err)
	}

	fresh := NewPayoutRelay(testGovernance)
	if fresh.Root(db) != root {
		t.Error("root not visible to a fresh instance")
	}
	if err := fresh.Claim(db, testAccount, testRewardToken, amount, nil); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("got %v, want ErrAlreadyClaimed", err)
	}
	if got := CreditedBalance(db, testRewardToken, testAccount); got.Cmp(amount) != 0 {
		t.Errorf("credited: got %s, want %s", got, amount)
	}
}

// A claim discarded by a host-level rollback leaves the leaf claimable; the
// claimed flag reverts together with the credited balance.
func TestPayoutRevertedClaimRetryable(t *testing.T) {
	relay := NewPayoutRelay(testGovernance)
	db := NewMockStateDB()

	amount := big.NewInt(100)
	root := payoutLeaf(testAccount, testRewardToken, amount)
	if err := relay.SetRoot(db, testGovernance, root); err != nil {
		t.Fatalf("set root: %v", err)
	}

	snap := db.Snapshot()
	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("claim: %v", err)
	}
	db.Revert(snap)

	if got := CreditedBalance(db, testRewardToken, testAccount); got.Sign() != 0 {
		t.Errorf("credit survived revert: %s", got)
	}
	if err := relay.Claim(db, testAccount, testRewardToken, amount, nil); err != nil {
		t.Fatalf("retry after revert: %v", err)
	}
	if got := CreditedBalance(db, testRewardToken, testAccount); got.Cmp(amount) != 0 {
		t.Errorf("credited: got %s, want %s", got, amount)
	}
}

func TestHashPairOrderIndependent(t *testing.T) {
	a, b := common.Hash{1}, common.Hash{2}
	if hashPair(a, b) != hashPair(b, a) {
		t.Fatal("pair hash must not depend on sibling order")
	}
}
