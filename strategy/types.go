// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package strategy implements the vault yield strategy precompile: a
// campaign-driven reward registry, a read-only concentrated-liquidity swap
// simulator, a forward APR projector, and the harvesting engine that unlocks
// matured rewards and compounds them into the vault's underlying asset.
package strategy

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/yield/registry"
)

// Precompile addresses for strategy components, assigned on the
// DEX/Markets page of the LP address scheme.
const (
	// LP-9090 LXYield (vault yield strategy singleton)
	LXYieldAddress = registry.LXYieldAddress

	// LP-9091 LXPayout (reward payout relay)
	LXPayoutAddress = registry.LXPayoutAddress
)

// Gas costs for strategy operations
const (
	GasProjectAPR    uint64 = 30_000 // Full APR projection (two quotes)
	GasQuote         uint64 = 12_000 // Single swap simulation
	GasAddCampaign   uint64 = 20_000 // Insert one reward campaign
	GasPruneCampaign uint64 = 5_000  // Remove one expired campaign
	GasListCampaigns uint64 = 2_000  // Enumerate a vault's campaigns
	GasHarvest       uint64 = 60_000 // Unlock + conditional two-hop swap
	GasClaim         uint64 = 25_000 // Payout relay claim
	GasConfigUpdate  uint64 = 8_000  // Threshold / fee tier update
)

// Pool fee tiers (hundredths of a bip, ppm of input)
const (
	Fee001 uint32 = 100    // 0.01% - stablecoins
	Fee005 uint32 = 500    // 0.05% - stable pairs
	Fee030 uint32 = 3000   // 0.30% - standard
	Fee100 uint32 = 10000  // 1.00% - exotic pairs
	FeeMax uint32 = 100000 // 10% max fee
)

// StateDB is the interface to host execution state. Mirrors the stateful
// precompile environment: reads and writes either land atomically or the
// whole invocation reverts.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)
	GetBalance(addr common.Address) *uint256.Int
	AddBalance(addr common.Address, amount *uint256.Int)
	SubBalance(addr common.Address, amount *uint256.Int)
	Exist(addr common.Address) bool
	CreateAccount(addr common.Address)
	GetBlockNumber() uint64
	GetBlockTime() uint64
}

// Campaign is a time-bounded pool of reward tokens vesting linearly across
// [StartTime, EndTime). Immutable once registered; removed only by pruning
// after expiry.
type Campaign struct {
	StartTime uint64
	EndTime   uint64
	Amount    *big.Int // total reward quantity, fits in 128 bits
}

// Scaling constants
var (
	// WAD is the 1e18 fixed-point unit used for rates and APR figures
	WAD = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// Q96 is 2^96, the sqrt-price fixed-point unit
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	// SecondsPerWeek for emission extrapolation
	SecondsPerWeek = big.NewInt(604800)

	// WeeksPerYear for annualization
	WeeksPerYear = big.NewInt(52)

	// maxUint128 bounds a campaign's packed amount field
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// MoneyMarket is the external lending vault the strategy deposits into.
type MoneyMarket interface {
	Cash() *big.Int
	TotalBorrows() *big.Int
	BalanceOf(account common.Address) *big.Int
	TotalSupply() *big.Int
	ConvertToShares(amount *big.Int) *big.Int
}

// RateModel is the external interest-rate model service. It returns one
// 1e18-scaled supply APY per (cash, borrows) scenario.
type RateModel interface {
	RateInfo(vault common.Address, cash []*big.Int, borrows []*big.Int) ([]*big.Int, error)
}

// RewardLock is the external reward-token locking contract. Withdrawn
// buckets credit the account's reward-token balance on the lock contract.
type RewardLock interface {
	LockedBuckets(account common.Address) []uint64
	WithdrawByBuckets(stateDB StateDB, account common.Address, buckets []uint64, forceMature bool) error
	BalanceOf(account common.Address) *big.Int
}

// PositionView is the vault-share accounting of the compounding position.
type PositionView interface {
	Account() common.Address
	TotalAssets() *big.Int
}

// PoolView is a read-only snapshot of one concentrated-liquidity pool.
// NextInitializedTick walks toward lower ticks when lte is true, higher
// ticks otherwise.
type PoolView interface {
	Slot0() (sqrtPriceX96 *big.Int, tick int32)
	Liquidity() *big.Int
	NextInitializedTick(tick int32, lte bool) (next int32, initialized bool)
	LiquidityNet(tick int32) *big.Int
}

// PoolRegistry resolves a sorted token pair and fee tier to pool state.
type PoolRegistry interface {
	Pool(token0, token1 common.Address, fee uint32) (PoolView, bool)
}

// Quoter simulates a swap and returns the output amount without mutating
// any pool state. Implemented by PoolSimulator; tests substitute stubs.
type Quoter interface {
	Quote(tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error)
}

// Swapper executes a real swap at harvest time. minOut of zero accepts any
// non-negative output; slippage policy lives with the harvest authorizer.
type Swapper interface {
	Swap(stateDB StateDB, tokenIn, tokenOut common.Address, fee uint32, amountIn, minOut *big.Int) (*big.Int, error)
}

// TokenPair is an ordered (in, out) pair selecting a fee tier.
type TokenPair struct {
	TokenIn  common.Address
	TokenOut common.Address
}

// Errors - Campaign registry
var (
	ErrInvalidRange  = errors.New("campaign start time not before end time")
	ErrInvalidAmount = errors.New("campaign amount out of range")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Errors - Projection and simulation
var (
	ErrPoolUnavailable = errors.New("no pool for pair and fee tier")
	ErrDeltaTooLarge   = errors.New("hypothetical delta exceeds available cash")
	ErrRateUnavailable = errors.New("rate model returned no scenario")
)

// Errors - Harvest and payout
var (
	ErrInvalidThreshold = errors.New("harvest threshold must be positive")
	ErrBatchMismatch    = errors.New("batch argument lengths differ")
	ErrInvalidProof     = errors.New("payout proof verification failed")
	ErrAlreadyClaimed   = errors.New("payout already claimed")
)

// sortTokens returns the pair in canonical (lower, higher) address order and
// whether tokenIn sorts first. zeroForOne swaps drive the price down.
func sortTokens(tokenIn, tokenOut common.Address) (token0, token1 common.Address, zeroForOne bool) {
	if lessAddress(tokenIn, tokenOut) {
		return tokenIn, tokenOut, true
	}
	return tokenOut, tokenIn, false
}

func lessAddress(a, b common.Address) bool {
	for i := 0; i < common.AddressLength; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
