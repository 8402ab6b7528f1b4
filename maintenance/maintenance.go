// Package maintenance is the per-block entry point (spec.md §6): it runs
// C3/C4 on every block, then — only when the block crosses a maintenance
// interval — runs C5 through C10 in the fixed order db_update.cpp's
// apply_block/perform_chain_maintenance observes: expire stale entities,
// refresh feeds, detect black swans and force-settle, then recompute
// activity and distribute emission.
package maintenance

import (
	"github.com/pkg/errors"

	"github.com/GravityProtocol/bitshares-core/chainactivity"
	"github.com/GravityProtocol/bitshares-core/chaincollab"
	"github.com/GravityProtocol/bitshares-core/chainemission"
	"github.com/GravityProtocol/bitshares-core/chainexpiry"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chainmarket"
	"github.com/GravityProtocol/bitshares-core/chainparams"
	"github.com/GravityProtocol/bitshares-core/chainstate"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// Ledger is every piece of state a maintenance pass reads or mutates. It
// does not own persistence — the caller constructs it from whatever
// storage backs the rest of the node and passes it in by reference.
type Ledger struct {
	Dynamic   *chaintypes.DynamicGlobalState
	Params    *chaintypes.GlobalParameters
	Witnesses map[chaintypes.WitnessID]*chaintypes.Witness

	TransactionDedup    *chainindex.View[chaintypes.TransactionDedupEntry]
	Proposals           *chainindex.View[chaintypes.Proposal]
	LimitOrders         *chainindex.View[chaintypes.LimitOrder]
	WithdrawPermissions *chainindex.View[chaintypes.WithdrawPermission]

	Assets                  map[chaintypes.AssetID]*chaintypes.Asset
	CallOrdersByAsset       map[chaintypes.AssetID]*chainindex.View[chaintypes.CallOrder]
	SettlementOrdersByAsset map[chaintypes.AssetID]*chainindex.View[chaintypes.ForceSettlementOrder]
	HighestBidByAsset       map[chaintypes.AssetID]chaintypes.Price
	FeedProducerOrder       []chaintypes.WitnessID
	CoreAsset               chaintypes.AssetID

	Balances       map[chaintypes.AccountName]int64
	ActivityScores *chainactivity.PreviousScoreCache

	// PendingTransfers is the rolling per-block buffer C9 scores against:
	// every block's Transfers are appended here as it's applied, and the
	// whole accumulated period is handed to chainactivity.Calculate and
	// cleared only at the maintenance block that closes the period out.
	PendingTransfers []chaintypes.Transfer
}

// Collaborators bundles the external collaborator interfaces a
// maintenance pass calls through (spec.md §6).
type Collaborators struct {
	Scheduler   chaincollab.Scheduler
	Evaluators  chaincollab.Evaluators
	FeeSchedule chaincollab.FeeSchedule
}

// ApplyBlockMaintenance is the per-block entry point. It always runs C3
// and C4; C5 through C10 only run when dgp.DynamicFlags carries
// FlagMaintenance, set by whichever code decided this block starts a new
// maintenance interval.
func ApplyBlockMaintenance(ledger *Ledger, block chaintypes.Block, collab Collaborators) error {
	runID := chainlog.NewRunID()
	defer chainlog.Default().RunCompleted()

	if err := chainstate.UpdateGlobalDynamicData(ledger.Dynamic, ledger.Witnesses, block, collab.Scheduler, runID); err != nil {
		return errors.Wrap(err, "maintenance: updating global dynamic data")
	}
	if err := chainstate.UpdateSigningWitness(ledger.Dynamic, *ledger.Params, collab.Evaluators); err != nil {
		return errors.Wrap(err, "maintenance: paying signing witness")
	}
	chainstate.UpdateLastIrreversibleBlock(ledger.Dynamic, ledger.Witnesses, *ledger.Params)

	ledger.PendingTransfers = append(ledger.PendingTransfers, block.Transfers...)

	if !ledger.Dynamic.HasFlag(chaintypes.FlagMaintenance) {
		return nil
	}
	return runMaintenanceInterval(ledger, block, collab, runID)
}

func runMaintenanceInterval(ledger *Ledger, block chaintypes.Block, collab Collaborators, runID string) error {
	chainexpiry.SweepTransactionDedup(ledger.TransactionDedup, block.Timestamp, runID)
	chainexpiry.SweepProposals(ledger.Proposals, block.Timestamp, collab.Evaluators, runID)
	if err := chainexpiry.SweepLimitOrders(ledger.LimitOrders, block.Timestamp, collab.FeeSchedule, collab.Evaluators, ledger.CoreAsset); err != nil {
		return errors.Wrap(err, "maintenance: sweeping expired limit orders")
	}
	chainexpiry.SweepWithdrawPermissions(ledger.WithdrawPermissions, block.Timestamp)

	for assetID, asset := range ledger.Assets {
		if err := runMarketMaintenance(ledger, assetID, asset, block, collab, runID); err != nil {
			return err
		}
	}

	elapsedPeriods := uint64(1)
	if ledger.Params.ActivityPeriod > 0 {
		elapsedPeriods = block.Number / ledger.Params.ActivityPeriod
		if elapsedPeriods == 0 {
			elapsedPeriods = 1
		}
	}
	scores := chainactivity.Calculate(block.Number, ledger.PendingTransfers, ledger.ActivityScores, ledger.Params.TransactionAmountThreshold, ledger.Params.AccountAmountThreshold, chainparams.ActivityDecayKoefficient, elapsedPeriods, runID)
	ledger.PendingTransfers = nil

	distributed, err := chainemission.DistributeEmission(ledger.Dynamic, ledger.Params, currentCoreSupply(ledger), ledger.Balances, scores, ledger.CoreAsset, collab.Evaluators, runID)
	if err != nil {
		return errors.Wrap(err, "maintenance: distributing gravity emission")
	}
	if core, ok := ledger.Assets[ledger.CoreAsset]; ok {
		core.Dynamic.CurrentSupply += distributed
	}
	return nil
}

func runMarketMaintenance(ledger *Ledger, assetID chaintypes.AssetID, asset *chaintypes.Asset, block chaintypes.Block, collab Collaborators, runID string) error {
	if asset.Bitasset == nil {
		return nil
	}

	chainmarket.RefreshFeeds(asset, ledger.FeedProducerOrder, block.Timestamp)

	callOrders := ledger.CallOrdersByAsset[assetID]
	if callOrders == nil {
		return nil
	}

	// A feed refresh can move the margin-call price for every
	// outstanding call order on this asset; re-check them for calls
	// before asking whether the asset has gone underwater entirely.
	if err := collab.Evaluators.CheckCallOrders(assetID); err != nil {
		return errors.Wrapf(err, "maintenance: checking call orders for asset %d", assetID)
	}

	triggered, err := chainmarket.CheckForBlackSwan(asset, true, callOrders, ledger.HighestBidByAsset[assetID], collab.Evaluators, runID)
	if err != nil {
		return errors.Wrapf(err, "maintenance: checking asset %d for black swan", assetID)
	}
	if triggered {
		return nil
	}

	settlementOrders := ledger.SettlementOrdersByAsset[assetID]
	if settlementOrders == nil {
		return nil
	}
	if _, _, err := chainmarket.ProcessForceSettlements(asset, settlementOrders, callOrders, block.Timestamp, collab.Evaluators); err != nil {
		return errors.Wrapf(err, "maintenance: force-settling asset %d", assetID)
	}
	return nil
}

func currentCoreSupply(ledger *Ledger) int64 {
	if core, ok := ledger.Assets[ledger.CoreAsset]; ok {
		return core.Dynamic.CurrentSupply
	}
	return 0
}
