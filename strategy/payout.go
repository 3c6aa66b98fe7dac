// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"bytes"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// Precompile address (LP-9091 LXPayout)
var payoutAddr = common.HexToAddress(LXPayoutAddress)

// Storage key prefixes for relay state
var (
	payoutRootPrefix    = []byte("payout/root")    // current distribution root
	payoutEpochPrefix   = []byte("payout/epoch")   // claim epoch counter
	payoutClaimedPrefix = []byte("payout/claimed") // (epoch, leaf) -> flag
	payoutBalancePrefix = []byte("payout/bal")     // credited balances
)

// PayoutRelay credits claimed reward tokens against a distribution root
// published by the off-chain campaign feed. The relay is the outward claim
// surface; this system never calls it itself.
//
// All relay state lives in StateDB under the payout address: the root, the
// claim epoch, and a claimed flag per (epoch, leaf). A reverted claim
// therefore reverts its claimed flag with it, and any instance over the
// same state shares one claim history.
type PayoutRelay struct {
	mu sync.Mutex

	// governance may rotate the root
	governance common.Address
}

// NewPayoutRelay creates a relay gated on the governance identity.
func NewPayoutRelay(governance common.Address) *PayoutRelay {
	return &PayoutRelay{governance: governance}
}

// SetRoot publishes a new distribution root. Advancing the epoch counter
// retires every claimed flag of the previous root.
func (p *PayoutRelay) SetRoot(stateDB StateDB, caller common.Address, root common.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.governance {
		return ErrUnauthorized
	}
	stateDB.SetState(payoutAddr, rootKey(), root)
	epoch := uint64FromWord(stateDB.GetState(payoutAddr, epochKey()))
	stateDB.SetState(payoutAddr, epochKey(), wordForUint64(epoch+1))
	return nil
}

// Root reads the current distribution root.
func (p *PayoutRelay) Root(stateDB StateDB) common.Hash {
	return stateDB.GetState(payoutAddr, rootKey())
}

// Claim verifies the proof for one (recipient, token, amount) tuple against
// the current root and credits the amount to the recipient. Each leaf pays
// out at most once per epoch.
func (p *PayoutRelay) Claim(stateDB StateDB, recipient, token common.Address, amount *big.Int, proof []common.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	epoch := uint64FromWord(stateDB.GetState(payoutAddr, epochKey()))
	leaf := payoutLeaf(recipient, token, amount)
	claimed := claimedKey(epoch, leaf)
	if stateDB.GetState(payoutAddr, claimed) != (common.Hash{}) {
		return ErrAlreadyClaimed
	}

	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	if node != stateDB.GetState(payoutAddr, rootKey()) {
		return ErrInvalidProof
	}

	stateDB.SetState(payoutAddr, claimed, wordForUint64(1))
	creditTokens(stateDB, token, recipient, amount)
	return nil
}

// rootKey derives the slot holding the current distribution root.
func rootKey() common.Hash {
	h := blake3.New()
	h.Write(payoutRootPrefix)
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// epochKey derives the slot holding the claim epoch counter.
func epochKey() common.Hash {
	h := blake3.New()
	h.Write(payoutEpochPrefix)
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// claimedKey derives the flag slot for one leaf in one epoch.
func claimedKey(epoch uint64, leaf common.Hash) common.Hash {
	var e [8]byte
	for i := 0; i < 8; i++ {
		e[7-i] = byte(epoch >> (8 * i))
	}
	h := blake3.New()
	h.Write(payoutClaimedPrefix)
	h.Write(e[:])
	h.Write(leaf[:])
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// payoutLeaf hashes one claim tuple.
func payoutLeaf(recipient, token common.Address, amount *big.Int) common.Hash {
	amountWord, _ := uint256.FromBig(amount)
	if amountWord == nil {
		amountWord = new(uint256.Int)
	}
	word := amountWord.Bytes32()

	h := blake3.New()
	h.Write(recipient.Bytes())
	h.Write(token.Bytes())
	h.Write(word[:])
	var leaf common.Hash
	h.Digest().Read(leaf[:])
	return leaf
}

// hashPair combines two nodes order-independently so proofs need no
// left/right flags.
func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	h := blake3.New()
	h.Write(a[:])
	h.Write(b[:])
	var out common.Hash
	h.Digest().Read(out[:])
	return out
}

// balanceKey derives the storage slot of a credited token balance.
func balanceKey(token, account common.Address) common.Hash {
	h := blake3.New()
	h.Write(payoutBalancePrefix)
	h.Write(token.Bytes())
	h.Write(account.Bytes())
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// creditTokens adds amount to the recipient's tracked token balance.
func creditTokens(stateDB StateDB, token, recipient common.Address, amount *big.Int) {
	key := balanceKey(token, recipient)
	current := new(uint256.Int).SetBytes32(stateDB.GetState(payoutAddr, key).Bytes())

	add, _ := uint256.FromBig(amount)
	if add == nil {
		add = new(uint256.Int)
	}
	current.Add(current, add)
	stateDB.SetState(payoutAddr, key, common.Hash(current.Bytes32()))
}

// CreditedBalance reads the tracked token balance of an account.
func CreditedBalance(stateDB StateDB, token, account common.Address) *big.Int {
	word := stateDB.GetState(payoutAddr, balanceKey(token, account))
	return new(uint256.Int).SetBytes32(word.Bytes()).ToBig()
}
