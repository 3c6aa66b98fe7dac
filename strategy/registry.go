// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"sync"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// Precompile address (LP-9090 LXYield)
var yieldAddr = common.HexToAddress(LXYieldAddress)

// Storage key prefixes for registry state
var (
	campaignMemberPrefix = []byte("camp/word") // packed word -> index+1
	campaignIndexPrefix  = []byte("camp/idx")  // (vault, index) -> packed word
	campaignCountPrefix  = []byte("camp/cnt")  // member count per vault
)

// CampaignRegistry holds the per-vault sets of packed reward campaigns.
// Membership is by full encoded word: two campaigns may overlap in time or
// share a start time, but identical triples collapse to one record.
//
// StateDB is the authoritative store. Each vault's set is laid out as a
// count slot plus dense index slots 0..count-1 holding the packed words,
// with a member slot per word holding its index+1 for O(1) membership.
// Every operation reads through StateDB, so a host-level rollback of the
// enclosing transaction discards registry mutations with everything else,
// and a fresh instance over persisted state sees the full set.
type CampaignRegistry struct {
	mu sync.Mutex

	// governance is the only identity allowed to mutate the registry
	governance common.Address
}

// NewCampaignRegistry creates a registry gated on the governance identity.
func NewCampaignRegistry(governance common.Address) *CampaignRegistry {
	return &CampaignRegistry{governance: governance}
}

// memberKey derives the slot holding one packed word's index+1, or zero if
// the word is not a member.
func memberKey(vault common.Address, word common.Hash) common.Hash {
	h := blake3.New()
	h.Write(campaignMemberPrefix)
	h.Write(vault.Bytes())
	h.Write(word[:])
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// indexKey derives the slot holding the packed word at one dense index.
func indexKey(vault common.Address, index uint64) common.Hash {
	var idx [8]byte
	for i := 0; i < 8; i++ {
		idx[7-i] = byte(index >> (8 * i))
	}
	h := blake3.New()
	h.Write(campaignIndexPrefix)
	h.Write(vault.Bytes())
	h.Write(idx[:])
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// countKey derives the storage slot holding a vault's member count.
func countKey(vault common.Address) common.Hash {
	h := blake3.New()
	h.Write(campaignCountPrefix)
	h.Write(vault.Bytes())
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// Add inserts a campaign into the vault's set. Fails with ErrInvalidRange
// unless startTime < endTime, and with ErrInvalidAmount if the amount does
// not pack losslessly. Inserting an identical triple twice is a no-op.
func (r *CampaignRegistry) Add(stateDB StateDB, caller, vault common.Address, c Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.governance {
		return ErrUnauthorized
	}
	if c.StartTime >= c.EndTime {
		return ErrInvalidRange
	}
	if !amountFits(c.Amount) {
		return ErrInvalidAmount
	}

	word := EncodeCampaign(c)
	if stateDB.GetState(yieldAddr, memberKey(vault, word)) != (common.Hash{}) {
		return nil
	}

	n := loadCount(stateDB, vault)
	stateDB.SetState(yieldAddr, indexKey(vault, n), word)
	stateDB.SetState(yieldAddr, memberKey(vault, word), wordForUint64(n+1))
	saveCount(stateDB, vault, n+1)

	return nil
}

// PruneExpired removes every campaign of the vault whose end time has
// passed. A campaign ending exactly at now is still live; only now > end
// expires it. Iterates a snapshot of the current words so removal during
// the walk neither skips nor revisits an entry.
func (r *CampaignRegistry) PruneExpired(stateDB StateDB, caller, vault common.Address, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.governance {
		return ErrUnauthorized
	}

	for _, word := range loadWords(stateDB, vault) {
		if now > DecodeCampaign(word).EndTime {
			r.remove(stateDB, vault, word)
		}
	}
	return nil
}

// remove deletes one member word by swapping the last index slot into its
// place, keeping the index range dense.
func (r *CampaignRegistry) remove(stateDB StateDB, vault common.Address, word common.Hash) {
	slot := stateDB.GetState(yieldAddr, memberKey(vault, word))
	if slot == (common.Hash{}) {
		return
	}
	index := uint64FromWord(slot) - 1
	last := loadCount(stateDB, vault) - 1

	if index != last {
		lastWord := stateDB.GetState(yieldAddr, indexKey(vault, last))
		stateDB.SetState(yieldAddr, indexKey(vault, index), lastWord)
		stateDB.SetState(yieldAddr, memberKey(vault, lastWord), wordForUint64(index+1))
	}

	stateDB.SetState(yieldAddr, indexKey(vault, last), common.Hash{})
	stateDB.SetState(yieldAddr, memberKey(vault, word), common.Hash{})
	saveCount(stateDB, vault, last)
}

// List decodes and returns the vault's current campaigns. Order is the
// storage index order and carries no meaning; callers must not rely on it.
func (r *CampaignRegistry) List(stateDB StateDB, vault common.Address) []Campaign {
	words := loadWords(stateDB, vault)
	out := make([]Campaign, 0, len(words))
	for _, word := range words {
		out = append(out, DecodeCampaign(word))
	}
	return out
}

// Count returns the number of campaigns registered for the vault.
func (r *CampaignRegistry) Count(stateDB StateDB, vault common.Address) int {
	return int(loadCount(stateDB, vault))
}

// Contains reports membership of an exact campaign triple.
func (r *CampaignRegistry) Contains(stateDB StateDB, vault common.Address, c Campaign) bool {
	return stateDB.GetState(yieldAddr, memberKey(vault, EncodeCampaign(c))) != (common.Hash{})
}

// loadWords reads the vault's packed words from the dense index slots.
func loadWords(stateDB StateDB, vault common.Address) []common.Hash {
	n := loadCount(stateDB, vault)
	words := make([]common.Hash, 0, n)
	for i := uint64(0); i < n; i++ {
		words = append(words, stateDB.GetState(yieldAddr, indexKey(vault, i)))
	}
	return words
}

func loadCount(stateDB StateDB, vault common.Address) uint64 {
	return uint64FromWord(stateDB.GetState(yieldAddr, countKey(vault)))
}

func saveCount(stateDB StateDB, vault common.Address, n uint64) {
	stateDB.SetState(yieldAddr, countKey(vault), wordForUint64(n))
}

func wordForUint64(n uint64) common.Hash {
	var v common.Hash
	for i := 0; i < 8; i++ {
		v[31-i] = byte(n >> (8 * i))
	}
	return v
}

func uint64FromWord(w common.Hash) uint64 {
	var n uint64
	for i := 0; i < 8; i++ {
		n |= uint64(w[31-i]) << (8 * i)
	}
	return n
}
