// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// YieldProjector combines the base lending rate, the campaign emission
// stream, and a two-hop price simulation into one forward APR figure.
//
// Every intermediate division truncates toward zero. That bias is the
// contract: the projection may undershoot the exact value but never
// overshoot it.
type YieldProjector struct {
	registry *CampaignRegistry
	quoter   Quoter

	market    MoneyMarket
	rateModel RateModel

	// token path for pricing the reward stream
	rewardToken       common.Address
	intermediateToken common.Address
	underlyingToken   common.Address

	// fees selects the pool tier per hop; shared with the harvester so
	// projections price against the pools harvests actually use
	fees *SwapFeeConfig
}

// NewYieldProjector wires a projector over the registry, the external money
// market and rate model, a quoter, and the harvester's fee configuration.
func NewYieldProjector(
	registry *CampaignRegistry,
	quoter Quoter,
	market MoneyMarket,
	rateModel RateModel,
	rewardToken, intermediateToken, underlyingToken common.Address,
	fees *SwapFeeConfig,
) *YieldProjector {
	return &YieldProjector{
		registry:          registry,
		quoter:            quoter,
		market:            market,
		rateModel:         rateModel,
		rewardToken:       rewardToken,
		intermediateToken: intermediateToken,
		underlyingToken:   underlyingToken,
		fees:              fees,
	}
}

// lockReduction models the external lock schedule: 20% of each reward vests
// immediately, the remaining 80% linearly. Projected reward flow is scaled
// by 1/5.
var lockReduction = big.NewInt(5)

// ProjectedAPR estimates the annual yield of the position under a
// hypothetical balance delta (positive deposit, negative withdrawal),
// 1e18-scaled where 1e18 is 100%. Read-only: registry state is only read,
// nothing is written, and the quoter runs its side-effect-free simulation
// path.
func (p *YieldProjector) ProjectedAPR(stateDB StateDB, vault common.Address, position PositionView, delta *big.Int, now uint64) (*big.Int, error) {
	if delta == nil {
		delta = new(big.Int)
	}

	// 1. adjust the money market's cash by the hypothetical delta
	cash := p.market.Cash()
	adjustedCash := new(big.Int).Add(cash, delta)
	if adjustedCash.Sign() < 0 {
		return nil, ErrDeltaTooLarge
	}
	borrows := p.market.TotalBorrows()

	// 2. base supply rate for the adjusted scenario
	rates, err := p.rateModel.RateInfo(vault, []*big.Int{adjustedCash}, []*big.Int{borrows})
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, ErrRateUnavailable
	}
	baseRate := new(big.Int).Set(rates[0])

	// 3. weekly reward emission, reduced for the lock schedule
	ratePerSecond := p.registry.ActiveRatePerSecond(stateDB, vault, now)
	weeklyReward := new(big.Int).Mul(ratePerSecond, SecondsPerWeek)
	weeklyReward.Div(weeklyReward, lockReduction)
	if weeklyReward.Sign() == 0 {
		// nothing to price: the base rate is the whole story
		return baseRate, nil
	}

	// 4. scale the vault-wide stream down to this position's share
	positionWeekly, err := p.positionShare(position, delta, weeklyReward)
	if err != nil {
		return nil, err
	}
	if positionWeekly.Sign() == 0 {
		return baseRate, nil
	}

	// 5. price the weekly reward share in underlying terms
	underlyingWeekly, err := p.priceRewards(positionWeekly)
	if err != nil {
		return nil, err
	}

	// 6. annualize against the post-delta position value
	totalValue := new(big.Int).Add(position.TotalAssets(), delta)
	if totalValue.Sign() <= 0 {
		return nil, ErrDeltaTooLarge
	}

	annual := new(big.Int).Mul(underlyingWeekly, WeeksPerYear)
	incremental := new(big.Int).Mul(annual, WAD)
	incremental.Div(incremental, totalValue)

	return baseRate.Add(baseRate, incremental), nil
}

// positionShare scales the vault-wide weekly reward by the position's
// post-delta fraction of vault shares.
func (p *YieldProjector) positionShare(position PositionView, delta, weeklyReward *big.Int) (*big.Int, error) {
	shares := p.market.BalanceOf(position.Account())
	totalShares := p.market.TotalSupply()

	if delta.Sign() != 0 {
		abs := new(big.Int).Abs(delta)
		deltaShares := p.market.ConvertToShares(abs)
		if delta.Sign() > 0 {
			shares = new(big.Int).Add(shares, deltaShares)
			totalShares = new(big.Int).Add(totalShares, deltaShares)
		} else {
			shares = new(big.Int).Sub(shares, deltaShares)
			totalShares = new(big.Int).Sub(totalShares, deltaShares)
			if shares.Sign() < 0 {
				return nil, ErrDeltaTooLarge
			}
		}
	}

	if totalShares.Sign() <= 0 {
		return new(big.Int), nil
	}

	out := new(big.Int).Mul(weeklyReward, shares)
	return out.Div(out, totalShares), nil
}

// priceRewards converts a reward-token amount into underlying terms via the
// configured two-hop path, skipping the second hop when the underlying is
// the intermediate asset itself.
func (p *YieldProjector) priceRewards(amount *big.Int) (*big.Int, error) {
	firstFee := p.fees.Tier(p.rewardToken, p.intermediateToken)
	out, err := p.quoter.Quote(p.rewardToken, p.intermediateToken, firstFee, amount)
	if err != nil {
		return nil, err
	}

	if p.underlyingToken == p.intermediateToken {
		return out, nil
	}

	secondFee := p.fees.Tier(p.intermediateToken, p.underlyingToken)
	return p.quoter.Quote(p.intermediateToken, p.underlyingToken, secondFee, out)
}
