// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"
)

// PoolSimulator replays the external concentrated-liquidity price curve to
// answer "what would this pool return for amountIn" without touching pool
// state. It walks the tick/liquidity structure exactly the way the live
// pool does, so the quoted output matches a real swap to the wei.
type PoolSimulator struct {
	pools PoolRegistry
}

// NewPoolSimulator creates a simulator over the given pool registry.
func NewPoolSimulator(pools PoolRegistry) *PoolSimulator {
	return &PoolSimulator{pools: pools}
}

var _ Quoter = (*PoolSimulator)(nil)

// Quote returns the output of swapping amountIn of tokenIn for tokenOut in
// the pool selected by the fee tier. Read-only and side-effect free: safe
// to call speculatively and to discard.
//
// A zero amountIn short-circuits to zero before any pool lookup.
func (s *PoolSimulator) Quote(tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() == 0 {
		return new(big.Int), nil
	}

	token0, token1, zeroForOne := sortTokens(tokenIn, tokenOut)
	pool, ok := s.pools.Pool(token0, token1, fee)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s fee=%d", ErrPoolUnavailable, token0.Hex(), token1.Hex(), fee)
	}

	return simulateExactIn(pool, zeroForOne, fee, amountIn)
}

// simulateExactIn runs the tick-by-tick swap loop over a pool snapshot.
func simulateExactIn(pool PoolView, zeroForOne bool, fee uint32, amountIn *big.Int) (*big.Int, error) {
	sqrtPrice, tick := pool.Slot0()
	sqrtPrice = new(big.Int).Set(sqrtPrice)
	liquidity := new(big.Int).Set(pool.Liquidity())

	// hard price bounds stand in for a caller-supplied limit
	var sqrtPriceLimit *big.Int
	if zeroForOne {
		sqrtPriceLimit = new(big.Int).Add(MinSqrtRatio, big.NewInt(1))
	} else {
		sqrtPriceLimit = new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1))
	}

	amountRemaining := new(big.Int).Set(amountIn)
	amountOut := new(big.Int)

	for amountRemaining.Sign() > 0 && sqrtPrice.Cmp(sqrtPriceLimit) != 0 {
		nextTick, initialized := pool.NextInitializedTick(tick, zeroForOne)
		if nextTick < MinTick {
			nextTick = MinTick
		}
		if nextTick > MaxTick {
			nextTick = MaxTick
		}

		sqrtPriceNext := GetSqrtRatioAtTick(nextTick)

		// clamp the step target to the price limit
		target := sqrtPriceNext
		if zeroForOne {
			if sqrtPriceNext.Cmp(sqrtPriceLimit) < 0 {
				target = sqrtPriceLimit
			}
		} else {
			if sqrtPriceNext.Cmp(sqrtPriceLimit) > 0 {
				target = sqrtPriceLimit
			}
		}

		step := computeSwapStep(sqrtPrice, target, liquidity, amountRemaining, fee)

		amountRemaining.Sub(amountRemaining, step.amountIn)
		amountRemaining.Sub(amountRemaining, step.feeAmount)
		amountOut.Add(amountOut, step.amountOut)
		sqrtPrice = step.sqrtPriceNext

		if sqrtPrice.Cmp(sqrtPriceNext) == 0 {
			// reached the boundary: cross the tick and pick up its
			// liquidity delta
			if initialized {
				liquidityNet := pool.LiquidityNet(nextTick)
				if zeroForOne {
					liquidity.Sub(liquidity, liquidityNet)
				} else {
					liquidity.Add(liquidity, liquidityNet)
				}
			}
			if zeroForOne {
				tick = nextTick - 1
			} else {
				tick = nextTick
			}
		} else {
			// stopped inside the range
			break
		}
	}

	return amountOut, nil
}
