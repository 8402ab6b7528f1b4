package chaintypes

import "time"

// AssetDynamicData is the mutable supply counter of an asset.
type AssetDynamicData struct {
	CurrentSupply int64
}

// PriceFeed is one witness/feed-producer's view of a bitasset's market.
type PriceFeed struct {
	Producer                WitnessID
	PublishTime             time.Time
	SettlementPrice         Price
	CoreExchangeRate        Price
	MaintenanceCollateralRatio  int64 // parts per Percent100
	MaximumShortSqueezeRatio    int64 // parts per Percent100
}

// BitAssetOptions are the governance-set parameters of a market-issued
// asset (spec.md §3).
type BitAssetOptions struct {
	ShortBackingAsset            AssetID
	ForceSettlementOffsetPercent int64 // parts per Percent100
	ForceSettlementDelay         time.Duration
	FeedLifetime                 time.Duration
	MaxForceSettlementVolumePct  int64 // parts per Percent100
	MinimumFeeds                  uint32
}

// BitAssetData is the market-issued-asset extension of Asset (spec.md §3).
type BitAssetData struct {
	CurrentFeed       PriceFeed
	FeedsByProducer   []PriceFeed
	Options           BitAssetOptions
	ForceSettledVolume int64

	// SettlementPriceIfSettled is set once the asset has been globally
	// settled (black swan); nil means still trading normally.
	SettlementPriceIfSettled *Price
}

// HasSettlement reports whether the asset has already been globally
// settled — invariant 4 of spec.md §3 hinges on this.
func (b *BitAssetData) HasSettlement() bool {
	return b.SettlementPriceIfSettled != nil
}

// MaxForceSettlementVolume computes max_force_settlement_volume(current_supply)
// per spec.md §4.6: current_supply * max_force_settlement_volume_pct / Percent100,
// floored (integer division truncates toward zero, which is floor for the
// non-negative operands this is always called with).
func (b *BitAssetData) MaxForceSettlementVolume(currentSupply int64) int64 {
	return currentSupply * b.Options.MaxForceSettlementVolumePct / Percent100
}

// Asset is a ledger asset, core or market-issued (spec.md §3).
type Asset struct {
	ID      AssetID
	Symbol  string
	Dynamic AssetDynamicData

	// CoreExchangeRate mirrors the asset's options.core_exchange_rate,
	// kept in sync with BitAssetData.CurrentFeed.CoreExchangeRate by the
	// feed refresher (C8) whenever they diverge.
	CoreExchangeRate Price

	// Bitasset is nil for non-market-issued assets.
	Bitasset *BitAssetData
}

// IsMarketIssued reports whether the asset carries bitasset data.
func (a *Asset) IsMarketIssued() bool {
	return a.Bitasset != nil
}

// Amount constructs an Amount of this asset.
func (a *Asset) Amount(v int64) Amount {
	return Amount{Value: v, Asset: a.ID}
}
