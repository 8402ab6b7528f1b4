// Package chainactivity computes the per-account activity index (spec.md
// §4.9, C9): a bounded-iteration, decayed flow-propagation score over the
// period's transfer graph, grounded on db_update.cpp's process_poi and its
// transaction.log/activity.log tabular output.
package chainactivity

import (
	"sort"

	lru "github.com/hashicorp/golang-lru"

	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

const (
	// maxRounds bounds the flow-propagation loop. Every qualifying edge
	// adds at least its own amount to its recipient in every round, so
	// the scores do not converge: whenever an edge with a non-zero amount
	// qualifies, all maxRounds rounds run. Resolves the
	// activity_index_calculator Open Question in SPEC_FULL.md §11.
	maxRounds = 64
	// residualEpsilon is the other half of the stop test: the loop ends
	// early once the largest single-edge flow of a round is below this,
	// which happens only when no edge with a non-zero amount qualifies.
	residualEpsilon = 1e-9
)

// PreviousScoreCache seeds each account's starting activity score from
// its prior maintenance period, decayed once per elapsed period. A
// process-lifetime LRU is enough: an account that falls out of the cache
// simply restarts from zero, which is the same as having never
// transacted.
type PreviousScoreCache struct {
	cache *lru.Cache
}

// NewPreviousScoreCache builds a cache holding up to capacity accounts'
// previous-period scores.
func NewPreviousScoreCache(capacity int) (*PreviousScoreCache, error) {
	c, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &PreviousScoreCache{cache: c}, nil
}

func (p *PreviousScoreCache) get(account chaintypes.AccountName) float64 {
	if v, ok := p.cache.Get(account); ok {
		return v.(float64)
	}
	return 0
}

// Set stores account's score for next period's seed.
func (p *PreviousScoreCache) Set(account chaintypes.AccountName, score float64) {
	p.cache.Add(account, score)
}

// edge is one qualifying transfer: amount moved from From to To.
type edge struct {
	from, to chaintypes.AccountName
	amount   float64
}

// Calculate runs the bounded flow-propagation pass over every transfer
// accumulated since the last maintenance interval and returns each
// participating account's normalized activity score in [0, 1]. Callers
// are expected to accumulate Transfer records from every block of the
// period into a rolling buffer and pass the whole buffer in here at the
// maintenance block — process_poi scores a full period's transaction
// log, not just the block that happens to trigger maintenance. Only
// transfers at or above transactionAmountThreshold whose recipient's
// balance after the transfer exceeds accountAmountThreshold count as
// edges — the same two-threshold filter process_poi applies before
// building its graph. The sender's balance is not checked.
//
// decayKoefficient (parts per chaintypes.Percent100) pulls every
// account's previous-period score toward zero before this period's flow
// is added, once for each of elapsedPeriods.
func Calculate(blockNumber uint64, transfers []chaintypes.Transfer, previous *PreviousScoreCache, transactionAmountThreshold, accountAmountThreshold int64, decayKoefficient int64, elapsedPeriods uint64, runID string) map[chaintypes.AccountName]float64 {
	edges := buildEdges(transfers, transactionAmountThreshold, accountAmountThreshold)
	accounts := accountSet(edges)

	scores := make(map[chaintypes.AccountName]float64, len(accounts))
	decay := decayFactor(decayKoefficient, elapsedPeriods)
	for _, a := range accounts {
		scores[a] = previous.get(a) * decay
	}

	for round := 0; round < maxRounds; round++ {
		next := make(map[chaintypes.AccountName]float64, len(scores))
		for a, s := range scores {
			next[a] = s
		}
		maxDelta := 0.0
		for _, e := range edges {
			flow := e.amount * (1 + scores[e.from])
			next[e.to] += flow
			if flow > maxDelta {
				maxDelta = flow
			}
		}
		scores = next
		if maxDelta < residualEpsilon {
			break
		}
	}

	normalize(scores)
	for a, s := range scores {
		previous.Set(a, s)
	}

	logActivity(runID, blockNumber, scores)
	return scores
}

func buildEdges(transfers []chaintypes.Transfer, transactionAmountThreshold, accountAmountThreshold int64) []edge {
	edges := make([]edge, 0, len(transfers))
	for _, t := range transfers {
		if t.Amount.Value < transactionAmountThreshold {
			continue
		}
		if t.TargetBalance.Value <= accountAmountThreshold {
			continue
		}
		edges = append(edges, edge{from: t.From, to: t.To, amount: float64(t.Amount.Value)})
	}
	return edges
}

func accountSet(edges []edge) []chaintypes.AccountName {
	seen := make(map[chaintypes.AccountName]bool)
	for _, e := range edges {
		seen[e.from] = true
		seen[e.to] = true
	}
	out := make([]chaintypes.AccountName, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func decayFactor(decayKoefficient int64, elapsedPeriods uint64) float64 {
	if elapsedPeriods == 0 {
		return 1
	}
	retained := float64(chaintypes.Percent100-decayKoefficient) / float64(chaintypes.Percent100)
	factor := 1.0
	for i := uint64(0); i < elapsedPeriods; i++ {
		factor *= retained
	}
	return factor
}

func normalize(scores map[chaintypes.AccountName]float64) {
	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max == 0 {
		return
	}
	for a, s := range scores {
		scores[a] = s / max
	}
}

func logActivity(runID string, blockNumber uint64, scores map[chaintypes.AccountName]float64) {
	accounts := make([]chaintypes.AccountName, 0, len(scores))
	for a := range scores {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	for _, a := range accounts {
		chainlog.Default().Tabular(chainlog.KindActivity, runID, map[string]interface{}{
			"block_number": blockNumber,
			"account":      string(a),
			"score":        scores[a],
		})
	}
}
