// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"
)

// Tick and sqrt-price bounds shared with the external pools
var (
	MinTick int32 = -887272
	MaxTick int32 = 887272

	MinSqrtRatio    = new(big.Int).SetUint64(4295128739)
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)
)

// feePipsDenominator: fees are expressed in hundredths of a bip
var feePipsDenominator = big.NewInt(1_000_000)

// sqrtRatioMagics are sqrt(1.0001^-(2^i)) in Q128.128, one per bit of the
// absolute tick. Reproduced bit-for-bit from the canonical tick math so the
// simulation prices exactly match the external pool's.
var sqrtRatioMagics = mustParseHexBigs(
	"fffcb933bd6fad37aa2d162d1a594001",
	"fff97272373d413259a46990580e213a",
	"fff2e50f5f656932ef12357cf3c7fdcc",
	"ffe5caca7e10e4e61c3624eaa0941cd0",
	"ffcb9843d60f6159c9db58835c926644",
	"ff973b41fa98c081472e6896dfb254c0",
	"ff2ea16466c96a3843ec78b326b52861",
	"fe5dee046a99a2a811c461f1969c3053",
	"fcbe86c7900a88aedcffc83b479aa3a4",
	"f987a7253ac413176f2b074cf7815e54",
	"f3392b0822b70005940c7a398e4b70f3",
	"e7159475a2c29b7443b29c7fa6e889d9",
	"d097f3bdfd2022b8845ad8f792aa5825",
	"a9f746462d870fdf8a65dc1f90e061e5",
	"70d869a156d2a1b890bb3df62baf32f7",
	"31be135f97d08fd981231505542fcfa6",
	"9aa508b5b7a84e1c677de54f3e99bc9",
	"5d6af8dedb81196699c329225ee604",
	"2216e584f5fa1ea926041bedfe98",
	"48a170391f7dc42444e8fa2",
)

var (
	q128        = new(big.Int).Lsh(big.NewInt(1), 128)
	maxUint256  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	lowest32Set = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 32), big.NewInt(1))
)

func mustParseHexBigs(hexes ...string) []*big.Int {
	out := make([]*big.Int, len(hexes))
	for i, h := range hexes {
		n, ok := new(big.Int).SetString(h, 16)
		if !ok {
			panic("bad sqrt ratio constant: " + h)
		}
		out[i] = n
	}
	return out
}

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 as a Q64.96 value.
// Ticks outside [MinTick, MaxTick] are clamped.
func GetSqrtRatioAtTick(tick int32) *big.Int {
	if tick < MinTick {
		tick = MinTick
	}
	if tick > MaxTick {
		tick = MaxTick
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-int64(tick))
	}

	var ratio *big.Int
	if absTick&1 != 0 {
		ratio = new(big.Int).Set(sqrtRatioMagics[0])
	} else {
		ratio = new(big.Int).Set(q128)
	}
	for i := 1; i < len(sqrtRatioMagics); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, sqrtRatioMagics[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up so the result round-trips through
	// the inverse tick lookup
	result := new(big.Int).Rsh(ratio, 32)
	if new(big.Int).And(ratio, lowest32Set).Sign() != 0 {
		result.Add(result, big.NewInt(1))
	}
	return result
}

// MulDiv computes a * b / denominator with full intermediate precision,
// truncating toward zero.
func MulDiv(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Div(product, denominator)
}

// MulDivRoundingUp computes ceil(a * b / denominator).
func MulDivRoundingUp(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	quotient, remainder := product.QuoRem(product, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient
}

func divRoundingUp(a, denominator *big.Int) *big.Int {
	quotient, remainder := new(big.Int).QuoRem(a, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient
}

// getAmount0Delta returns the token0 amount covering the price range
// [sqrtRatioA, sqrtRatioB] at liquidity. Order of the bounds is irrelevant.
func getAmount0Delta(sqrtRatioA, sqrtRatioB, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtRatioA.Cmp(sqrtRatioB) > 0 {
		sqrtRatioA, sqrtRatioB = sqrtRatioB, sqrtRatioA
	}

	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator2 := new(big.Int).Sub(sqrtRatioB, sqrtRatioA)

	if roundUp {
		return divRoundingUp(MulDivRoundingUp(numerator1, numerator2, sqrtRatioB), sqrtRatioA)
	}
	return new(big.Int).Div(MulDiv(numerator1, numerator2, sqrtRatioB), sqrtRatioA)
}

// getAmount1Delta returns the token1 amount covering the price range
// [sqrtRatioA, sqrtRatioB] at liquidity.
func getAmount1Delta(sqrtRatioA, sqrtRatioB, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtRatioA.Cmp(sqrtRatioB) > 0 {
		sqrtRatioA, sqrtRatioB = sqrtRatioB, sqrtRatioA
	}

	diff := new(big.Int).Sub(sqrtRatioB, sqrtRatioA)
	if roundUp {
		return MulDivRoundingUp(liquidity, diff, Q96)
	}
	return MulDiv(liquidity, diff, Q96)
}

// getNextSqrtPriceFromInput returns the price after swapping amountIn of the
// input token, rounded so the pool never gives out too much output.
func getNextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn *big.Int, zeroForOne bool) *big.Int {
	if amountIn.Sign() == 0 {
		return new(big.Int).Set(sqrtPrice)
	}

	if zeroForOne {
		// price moves down: sqrtP' = L * sqrtP / (L + amountIn * sqrtP / Q96)
		// computed as mulDivRoundingUp(L<<96, sqrtP, (L<<96) + amountIn*sqrtP)
		numerator1 := new(big.Int).Lsh(liquidity, 96)
		product := new(big.Int).Mul(amountIn, sqrtPrice)
		denominator := new(big.Int).Add(numerator1, product)
		return MulDivRoundingUp(numerator1, sqrtPrice, denominator)
	}

	// price moves up: sqrtP' = sqrtP + amountIn * Q96 / L, rounded down
	quotient := MulDiv(amountIn, Q96, liquidity)
	return new(big.Int).Add(sqrtPrice, quotient)
}

// swapStepResult is the outcome of swapping within one tick range.
type swapStepResult struct {
	sqrtPriceNext *big.Int // price after this step
	amountIn      *big.Int // input consumed, excluding fee
	amountOut     *big.Int // output produced
	feeAmount     *big.Int // fee taken from the input
}

// computeSwapStep advances the price toward sqrtPriceTarget, consuming at
// most amountRemaining of exact input at the given fee. Mirrors the
// external pool's in-range swap math including its rounding directions.
func computeSwapStep(sqrtPriceCurrent, sqrtPriceTarget, liquidity, amountRemaining *big.Int, feePips uint32) swapStepResult {
	zeroForOne := sqrtPriceCurrent.Cmp(sqrtPriceTarget) >= 0
	fee := new(big.Int).SetUint64(uint64(feePips))
	feeComplement := new(big.Int).Sub(feePipsDenominator, fee)

	amountRemainingLessFee := MulDiv(amountRemaining, feeComplement, feePipsDenominator)

	var maxAmountIn *big.Int
	if zeroForOne {
		maxAmountIn = getAmount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, true)
	} else {
		maxAmountIn = getAmount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, true)
	}

	var res swapStepResult
	if amountRemainingLessFee.Cmp(maxAmountIn) >= 0 {
		// range fully consumed: land exactly on the target price
		res.sqrtPriceNext = new(big.Int).Set(sqrtPriceTarget)
		res.amountIn = maxAmountIn
	} else {
		res.sqrtPriceNext = getNextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, amountRemainingLessFee, zeroForOne)
		res.amountIn = amountRemainingLessFee
	}

	reachedTarget := res.sqrtPriceNext.Cmp(sqrtPriceTarget) == 0

	if zeroForOne {
		res.amountOut = getAmount1Delta(res.sqrtPriceNext, sqrtPriceCurrent, liquidity, false)
	} else {
		res.amountOut = getAmount0Delta(sqrtPriceCurrent, res.sqrtPriceNext, liquidity, false)
	}

	if !reachedTarget {
		// the entire remainder is spent; whatever the curve did not
		// consume is the fee
		res.feeAmount = new(big.Int).Sub(amountRemaining, res.amountIn)
	} else {
		res.feeAmount = MulDivRoundingUp(res.amountIn, fee, feeComplement)
	}

	return res
}
