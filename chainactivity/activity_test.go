package chainactivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

func transfer(from, to chaintypes.AccountName, amount, targetBalance int64) chaintypes.Transfer {
	return chaintypes.Transfer{
		From:          from,
		To:            to,
		Amount:        chaintypes.NewAmount(amount, 0),
		TargetBalance: chaintypes.NewAmount(targetBalance, 0),
		Timestamp:     time.Now(),
	}
}

func TestCalculate_FiltersBelowThresholds(t *testing.T) {
	cache, err := NewPreviousScoreCache(128)
	require.NoError(t, err)

	block := chaintypes.Block{
		Number: 1,
		Transfers: []chaintypes.Transfer{
			transfer("alice", "bob", 50, 60),     // below transaction threshold
			transfer("carol", "dave", 500, 50),   // below account threshold
			transfer("erin", "frank", 500, 2000), // qualifies
		},
	}

	scores := Calculate(block.Number, block.Transfers, cache, 100, 1000, 0, 0, "run")

	assert.Contains(t, scores, chaintypes.AccountName("erin"))
	assert.Contains(t, scores, chaintypes.AccountName("frank"))
	assert.NotContains(t, scores, chaintypes.AccountName("alice"))
	assert.NotContains(t, scores, chaintypes.AccountName("carol"))
}

func TestCalculate_NormalizesIntoUnitRange(t *testing.T) {
	cache, err := NewPreviousScoreCache(128)
	require.NoError(t, err)

	block := chaintypes.Block{
		Number: 1,
		Transfers: []chaintypes.Transfer{
			transfer("alice", "bob", 1000, 2000),
			transfer("bob", "carol", 500, 2000),
		},
	}

	scores := Calculate(block.Number, block.Transfers, cache, 100, 1000, 0, 0, "run")
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestCalculate_SeedsFromPreviousPeriodWithDecay(t *testing.T) {
	cache, err := NewPreviousScoreCache(128)
	require.NoError(t, err)
	cache.Set("alice", 0.8)

	block := chaintypes.Block{
		Number: 1,
		Transfers: []chaintypes.Transfer{
			transfer("alice", "bob", 1000, 2000),
		},
	}

	withDecay := Calculate(block.Number, block.Transfers, cache, 100, 1000, 5000, 1, "run")
	assert.Contains(t, withDecay, chaintypes.AccountName("alice"))
}

func TestDecayFactor_ZeroElapsedPeriodsIsIdentity(t *testing.T) {
	assert.Equal(t, 1.0, decayFactor(5000, 0))
}

func TestDecayFactor_FullDecayCoefficientZerosOutAfterOnePeriod(t *testing.T) {
	assert.Equal(t, 0.0, decayFactor(chaintypes.Percent100, 1))
}
