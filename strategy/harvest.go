// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"
	"sync"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"
)

// DefaultHarvestThreshold is the minimum reward balance worth swapping,
// in reward-token base units. Set at construction, adjustable by the
// management identity.
var DefaultHarvestThreshold = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// SwapFeeConfig maps ordered (tokenIn, tokenOut) pairs to pool fee tiers.
// Shared between the harvester (real swaps) and the projector (simulated
// ones) so both always target the same pools.
type SwapFeeConfig struct {
	mu    sync.RWMutex
	tiers map[TokenPair]uint32
}

// NewSwapFeeConfig creates an empty fee configuration. Unconfigured pairs
// fall back to the standard 0.30% tier.
func NewSwapFeeConfig() *SwapFeeConfig {
	return &SwapFeeConfig{tiers: make(map[TokenPair]uint32)}
}

// Tier returns the configured fee tier for the ordered pair.
func (c *SwapFeeConfig) Tier(tokenIn, tokenOut common.Address) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if tier, ok := c.tiers[TokenPair{TokenIn: tokenIn, TokenOut: tokenOut}]; ok {
		return tier
	}
	return Fee030
}

func (c *SwapFeeConfig) set(pair TokenPair, tier uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiers[pair] = tier
}

// Harvester unlocks matured reward balance from the external lock contract
// and, once past the threshold, converts the whole balance into the vault's
// underlying asset through the configured two-hop path.
type Harvester struct {
	mu sync.Mutex

	lock    RewardLock
	swapper Swapper

	// account is the compounding position the harvester acts for
	account common.Address

	rewardToken       common.Address
	intermediateToken common.Address
	underlyingToken   common.Address

	fees      *SwapFeeConfig
	threshold *big.Int

	// minimumSwapAmount is an optional second gate below which the swap
	// is skipped even past the threshold; nil disables it
	minimumSwapAmount *big.Int

	// management is the only identity allowed to change configuration
	management common.Address

	log log.Logger
}

// NewHarvester creates a harvester for the position account. The threshold
// starts at DefaultHarvestThreshold.
func NewHarvester(
	lock RewardLock,
	swapper Swapper,
	account common.Address,
	rewardToken, intermediateToken, underlyingToken common.Address,
	fees *SwapFeeConfig,
	management common.Address,
	logger log.Logger,
) *Harvester {
	return &Harvester{
		lock:              lock,
		swapper:           swapper,
		account:           account,
		rewardToken:       rewardToken,
		intermediateToken: intermediateToken,
		underlyingToken:   underlyingToken,
		fees:              fees,
		threshold:         new(big.Int).Set(DefaultHarvestThreshold),
		management:        management,
		log:               logger,
	}
}

// Harvest runs one harvest cycle: unlock everything the lock contract
// holds for the account (forcing settlement of immature buckets), then swap
// the full reward balance if it clears the configured gates.
//
// No minimum-output protection here: slippage policy belongs to whatever
// authorizes the harvest call.
func (h *Harvester) Harvest(stateDB StateDB) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buckets := h.lock.LockedBuckets(h.account)
	if len(buckets) > 0 {
		// always unlock everything available, never partially
		if err := h.lock.WithdrawByBuckets(stateDB, h.account, buckets, true); err != nil {
			return err
		}
	}

	balance := h.lock.BalanceOf(h.account)
	if balance == nil || balance.Sign() == 0 {
		return nil
	}

	if balance.Cmp(h.threshold) < 0 {
		h.log.Debug("harvest below threshold, skipping swap",
			log.Stringer("balance", balance),
			log.Stringer("threshold", h.threshold),
		)
		return nil
	}
	if h.minimumSwapAmount != nil && balance.Cmp(h.minimumSwapAmount) < 0 {
		h.log.Debug("harvest below minimum swap amount, skipping swap",
			log.Stringer("balance", balance),
			log.Stringer("minimum", h.minimumSwapAmount),
		)
		return nil
	}

	out, err := h.swapPath(stateDB, balance)
	if err != nil {
		return err
	}

	h.log.Info("harvest compounded rewards",
		log.Stringer("rewardIn", balance),
		log.Stringer("underlyingOut", out),
	)
	return nil
}

// swapPath swaps the full reward balance through reward -> intermediate and,
// unless the underlying is the intermediate, intermediate -> underlying.
func (h *Harvester) swapPath(stateDB StateDB, amount *big.Int) (*big.Int, error) {
	zero := new(big.Int)

	firstFee := h.fees.Tier(h.rewardToken, h.intermediateToken)
	out, err := h.swapper.Swap(stateDB, h.rewardToken, h.intermediateToken, firstFee, amount, zero)
	if err != nil {
		return nil, err
	}

	if h.underlyingToken == h.intermediateToken {
		return out, nil
	}

	secondFee := h.fees.Tier(h.intermediateToken, h.underlyingToken)
	return h.swapper.Swap(stateDB, h.intermediateToken, h.underlyingToken, secondFee, out, zero)
}

// SetThreshold updates the minimum reward balance required before a harvest
// swaps. Management only; takes effect on the next cycle.
func (h *Harvester) SetThreshold(caller common.Address, threshold *big.Int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if caller != h.management {
		return ErrUnauthorized
	}
	if threshold == nil || threshold.Sign() <= 0 {
		return ErrInvalidThreshold
	}
	h.threshold = new(big.Int).Set(threshold)
	h.log.Info("harvest threshold updated", log.Stringer("threshold", h.threshold))
	return nil
}

// SetMinimumSwapAmount configures the optional extra swap gate. nil removes
// it. Management only.
func (h *Harvester) SetMinimumSwapAmount(caller common.Address, minimum *big.Int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if caller != h.management {
		return ErrUnauthorized
	}
	if minimum == nil {
		h.minimumSwapAmount = nil
		return nil
	}
	h.minimumSwapAmount = new(big.Int).Set(minimum)
	return nil
}

// SetFeeTier selects the pool fee tier for one ordered pair. Management
// only; both subsequent harvests and projections see it immediately.
func (h *Harvester) SetFeeTier(caller common.Address, pair TokenPair, tier uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if caller != h.management {
		return ErrUnauthorized
	}
	h.fees.set(pair, tier)
	h.log.Info("swap fee tier updated",
		log.Stringer("tokenIn", pair.TokenIn),
		log.Stringer("tokenOut", pair.TokenOut),
		log.Uint64("tier", uint64(tier)),
	)
	return nil
}

// Threshold returns the current harvest threshold.
func (h *Harvester) Threshold() *big.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return new(big.Int).Set(h.threshold)
}
