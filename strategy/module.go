// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/big"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/yield/modules"
)

// ConfigKey is the key used in json config files to specify this precompile
// config.
const ConfigKey = "yieldStrategyConfig"

// Module is the precompile module (LXYield at LP-9090)
var Module = modules.Module{
	ConfigKey: ConfigKey,
	Address:   common.HexToAddress(LXYieldAddress),
}

// PayoutModule is the payout relay module (LXPayout at LP-9091)
var PayoutModule = modules.Module{
	ConfigKey: "yieldPayoutConfig",
	Address:   common.HexToAddress(LXPayoutAddress),
}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
	if err := modules.RegisterModule(PayoutModule); err != nil {
		panic(err)
	}
}

// Config collects the identities and token path the strategy is wired with.
type Config struct {
	// Governance may mutate the campaign registry and payout root
	Governance common.Address

	// Management may tune harvest thresholds and fee tiers
	Management common.Address

	// RewardToken is the emission token campaigns pay out
	RewardToken common.Address

	// IntermediateToken is the first hop of the pricing/harvest path
	IntermediateToken common.Address

	// UnderlyingToken is the vault's asset, the end of the path
	UnderlyingToken common.Address
}

// Strategy wires the campaign registry, the yield projector, the harvester
// and the payout relay into the precompile's outward surface. All methods
// are synchronous and all-or-nothing: an error leaves every piece of state
// untouched (the host reverts the enclosing transaction).
type Strategy struct {
	registry  *CampaignRegistry
	projector *YieldProjector
	harvester *Harvester
	payout    *PayoutRelay

	position PositionView

	governance common.Address
	management common.Address

	log log.Logger
}

// NewStrategy assembles the strategy singleton. The projector and harvester
// share one SwapFeeConfig, so simulated and real swaps always price against
// the same pools.
func NewStrategy(
	cfg Config,
	market MoneyMarket,
	rateModel RateModel,
	quoter Quoter,
	rewardLock RewardLock,
	swapper Swapper,
	position PositionView,
	logger log.Logger,
) *Strategy {
	fees := NewSwapFeeConfig()
	registry := NewCampaignRegistry(cfg.Governance)

	return &Strategy{
		registry: registry,
		projector: NewYieldProjector(
			registry, quoter, market, rateModel,
			cfg.RewardToken, cfg.IntermediateToken, cfg.UnderlyingToken,
			fees,
		),
		harvester: NewHarvester(
			rewardLock, swapper, position.Account(),
			cfg.RewardToken, cfg.IntermediateToken, cfg.UnderlyingToken,
			fees, cfg.Management, logger,
		),
		payout:     NewPayoutRelay(cfg.Governance),
		position:   position,
		governance: cfg.Governance,
		management: cfg.Management,
		log:        logger,
	}
}

// ProjectedAPR estimates the position's annual yield under a hypothetical
// deposit (positive) or withdrawal (negative) delta. Read-only.
func (s *Strategy) ProjectedAPR(stateDB StateDB, vault common.Address, delta *big.Int) (*big.Int, error) {
	now := stateDB.GetBlockTime()
	return s.projector.ProjectedAPR(stateDB, vault, s.position, delta, now)
}

// Campaigns enumerates a vault's registered reward campaigns. Order is not
// significant.
func (s *Strategy) Campaigns(stateDB StateDB, vault common.Address) []Campaign {
	return s.registry.List(stateDB, vault)
}

// AddCampaigns replays a batch from the reward-campaign feed: campaigns[i]
// is registered for targets[i]. Governance only. The batch fails fast: an
// invalid entry aborts the call and the host discards prior inserts.
func (s *Strategy) AddCampaigns(stateDB StateDB, caller common.Address, targets []common.Address, campaigns []Campaign) error {
	if len(targets) != len(campaigns) {
		return ErrBatchMismatch
	}
	for i, vault := range targets {
		if err := s.registry.Add(stateDB, caller, vault, campaigns[i]); err != nil {
			return err
		}
	}
	if len(targets) > 0 {
		s.log.Debug("campaign batch registered", log.Int("count", len(targets)))
	}
	return nil
}

// PruneExpired removes expired campaigns for each target vault. Governance
// only. Time is read once and shared across the whole batch.
func (s *Strategy) PruneExpired(stateDB StateDB, caller common.Address, targets []common.Address) error {
	now := stateDB.GetBlockTime()
	for _, vault := range targets {
		if err := s.registry.PruneExpired(stateDB, caller, vault, now); err != nil {
			return err
		}
	}
	return nil
}

// Harvest runs one harvest cycle for the position.
func (s *Strategy) Harvest(stateDB StateDB) error {
	return s.harvester.Harvest(stateDB)
}

// SetThreshold forwards to the harvester. Management only.
func (s *Strategy) SetThreshold(caller common.Address, threshold *big.Int) error {
	return s.harvester.SetThreshold(caller, threshold)
}

// SetMinimumSwapAmount forwards to the harvester. Management only.
func (s *Strategy) SetMinimumSwapAmount(caller common.Address, minimum *big.Int) error {
	return s.harvester.SetMinimumSwapAmount(caller, minimum)
}

// SetFeeTier forwards to the harvester's fee config. Management only.
func (s *Strategy) SetFeeTier(caller common.Address, pair TokenPair, tier uint32) error {
	return s.harvester.SetFeeTier(caller, pair, tier)
}

// SetPayoutRoot publishes a new reward distribution root. Governance only.
func (s *Strategy) SetPayoutRoot(stateDB StateDB, caller common.Address, root common.Hash) error {
	return s.payout.SetRoot(stateDB, caller, root)
}

// ClaimRewards credits a batch of reward payouts. Entries are parallel
// slices; any failing claim aborts the batch.
func (s *Strategy) ClaimRewards(
	stateDB StateDB,
	recipients []common.Address,
	tokens []common.Address,
	amounts []*big.Int,
	proofs [][]common.Hash,
) error {
	if len(recipients) != len(tokens) || len(recipients) != len(amounts) || len(recipients) != len(proofs) {
		return ErrBatchMismatch
	}
	for i := range recipients {
		if err := s.payout.Claim(stateDB, recipients[i], tokens[i], amounts[i], proofs[i]); err != nil {
			return err
		}
	}
	return nil
}
