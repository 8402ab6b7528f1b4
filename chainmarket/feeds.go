package chainmarket

import (
	"sort"
	"time"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

// hardfork615Time is the cutover db_update.cpp guards its feed-expiry
// comparison with: before it, a feed published exactly FeedLifetime ago
// is still considered current (<=); from it on, it is expired (<).
// Modeled as a predicate rather than a build-tag so both behaviors stay
// reachable and testable from the same binary.
var hardfork615Time = time.Date(2018, time.October, 13, 0, 0, 0, 0, time.UTC)

// FeedIsStale reports whether a feed published at publishTime with the
// given lifetime has expired as of now, honoring the hardfork-615
// boundary-inclusive/exclusive change.
func FeedIsStale(publishTime time.Time, lifetime time.Duration, now time.Time) bool {
	age := now.Sub(publishTime)
	if now.Before(hardfork615Time) {
		return age > lifetime
	}
	return age >= lifetime
}

// RefreshFeeds drops every stale producer feed, then recomputes the
// asset's current feed as the median of what remains (by settlement
// price), matching update_expired_feeds. If no feed or fewer than
// MinimumFeeds remain, the current feed is nulled out rather than left
// stale.
//
// producerOrder fixes the bit position assigned to each producer in the
// returned presence bitmap (bit i set means producers[i]'s feed survived
// the sweep); callers use it purely for diagnostics, never for
// consensus decisions.
func RefreshFeeds(asset *chaintypes.Asset, producerOrder []chaintypes.WitnessID, now time.Time) bitfield.Bitlist {
	presence := bitfield.NewBitlist(uint64(len(producerOrder)))
	if asset.Bitasset == nil {
		return presence
	}

	producerIndex := make(map[chaintypes.WitnessID]int, len(producerOrder))
	for i, p := range producerOrder {
		producerIndex[p] = i
	}

	live := asset.Bitasset.FeedsByProducer[:0:0]
	for _, feed := range asset.Bitasset.FeedsByProducer {
		if FeedIsStale(feed.PublishTime, asset.Bitasset.Options.FeedLifetime, now) {
			continue
		}
		live = append(live, feed)
		if idx, ok := producerIndex[feed.Producer]; ok {
			presence.SetBitAt(uint64(idx), true)
		}
	}
	asset.Bitasset.FeedsByProducer = live

	if len(live) == 0 || uint32(len(live)) < asset.Bitasset.Options.MinimumFeeds {
		asset.Bitasset.CurrentFeed = chaintypes.PriceFeed{}
		return presence
	}

	asset.Bitasset.CurrentFeed = medianFeed(live)
	if !asset.Bitasset.CurrentFeed.CoreExchangeRate.IsNull() {
		asset.CoreExchangeRate = asset.Bitasset.CurrentFeed.CoreExchangeRate
	}
	return presence
}

// medianFeed returns the whole feed record at the median settlement
// price, not a field-by-field average — the original selects one
// producer's complete feed via nth_element rather than blending ratios
// that belong to different producers.
func medianFeed(feeds []chaintypes.PriceFeed) chaintypes.PriceFeed {
	sorted := make([]chaintypes.PriceFeed, len(feeds))
	copy(sorted, feeds)
	sort.Slice(sorted, func(i, j int) bool {
		return priceLess(sorted[i].SettlementPrice, sorted[j].SettlementPrice)
	})
	return sorted[len(sorted)/2]
}

func priceLess(a, b chaintypes.Price) bool {
	// Local to avoid importing chainprice just for a total order over a
	// slice already known to share one asset pair.
	lhs := a.Quote.Value * b.Base.Value
	rhs := b.Quote.Value * a.Base.Value
	return lhs < rhs
}
