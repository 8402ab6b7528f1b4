package chainexpiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GravityProtocol/bitshares-core/chaincollab/fake"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
)

const core chaintypes.AssetID = 0

var epoch = time.Unix(1_700_000_000, 0)

func txDedupView(entries ...*chaintypes.TransactionDedupEntry) *chainindex.View[chaintypes.TransactionDedupEntry] {
	v := chainindex.NewView(ByExpiration(func(e *chaintypes.TransactionDedupEntry) time.Time { return e.Expiration }))
	for _, e := range entries {
		v.Insert(e)
	}
	return v
}

func TestSweepTransactionDedup_RemovesOnlyExpired(t *testing.T) {
	expired := &chaintypes.TransactionDedupEntry{TxID: [32]byte{1}, Expiration: epoch.Add(-time.Second)}
	fresh := &chaintypes.TransactionDedupEntry{TxID: [32]byte{2}, Expiration: epoch.Add(time.Hour)}
	v := txDedupView(expired, fresh)

	removed := SweepTransactionDedup(v, epoch, "run")

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, fresh, v.Front())
}

func TestSweepWithdrawPermissions_RemovesOnlyExpired(t *testing.T) {
	expired := &chaintypes.WithdrawPermission{ID: 1, Expiration: epoch.Add(-time.Minute)}
	fresh := &chaintypes.WithdrawPermission{ID: 2, Expiration: epoch.Add(time.Minute)}
	v := chainindex.NewView(ByExpiration(func(p *chaintypes.WithdrawPermission) time.Time { return p.Expiration }))
	v.Insert(expired)
	v.Insert(fresh)

	removed := SweepWithdrawPermissions(v, epoch)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, v.Len())
}

func TestSweepProposals_ExecutesAuthorizedAndDiscardsUnauthorized(t *testing.T) {
	authorized := &chaintypes.Proposal{
		ID:                1,
		ExpirationTime:    epoch.Add(-time.Second),
		RequiredApprovals:  []chaintypes.AccountName{"alice"},
		CurrentApprovals:   []chaintypes.AccountName{"alice"},
		Operations:         []interface{}{"op1"},
	}
	unauthorized := &chaintypes.Proposal{
		ID:                2,
		ExpirationTime:    epoch.Add(-time.Second),
		RequiredApprovals: []chaintypes.AccountName{"bob"},
		CurrentApprovals:  nil,
	}
	notYetExpired := &chaintypes.Proposal{ID: 3, ExpirationTime: epoch.Add(time.Hour)}

	v := chainindex.NewView(ByExpiration(func(p *chaintypes.Proposal) time.Time { return p.ExpirationTime }))
	v.Insert(authorized)
	v.Insert(unauthorized)
	v.Insert(notYetExpired)

	collab := fake.New()
	SweepProposals(v, epoch, collab, "run")

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, notYetExpired, v.Front())
	assert.Len(t, collab.PushedProposals, 1)
	assert.Equal(t, authorized, collab.PushedProposals[0])
}

func TestSweepProposals_ExecutionFailureIsLoggedAndSkipped(t *testing.T) {
	p := &chaintypes.Proposal{
		ID:                1,
		ExpirationTime:    epoch.Add(-time.Second),
		RequiredApprovals: []chaintypes.AccountName{"alice"},
		CurrentApprovals:  []chaintypes.AccountName{"alice"},
		Operations:        []interface{}{"op1"},
	}
	notYetExpired := &chaintypes.Proposal{ID: 2, ExpirationTime: epoch.Add(time.Hour)}
	v := chainindex.NewView(ByExpiration(func(p *chaintypes.Proposal) time.Time { return p.ExpirationTime }))
	v.Insert(p)
	v.Insert(notYetExpired)

	collab := fake.New()
	collab.PushProposalFunc = func(*chaintypes.Proposal) error { return assert.AnError }

	SweepProposals(v, epoch, collab, "run")

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, notYetExpired, v.Front())
}

func TestSweepLimitOrders_RefundsBalanceAndCapsDeferredFee(t *testing.T) {
	order := &chaintypes.LimitOrder{
		ID:          7,
		Seller:      "alice",
		Balance:     chaintypes.NewAmount(500, 1),
		Expiration:  epoch.Add(-time.Second),
		DeferredFee: 100,
	}
	v := chainindex.NewView(ByExpiration(func(o *chaintypes.LimitOrder) time.Time { return o.Expiration }))
	v.Insert(order)

	collab := fake.New()
	collab.CalculateCancelFeeFunc = func(*chaintypes.LimitOrder) int64 { return 30 }

	require.NoError(t, SweepLimitOrders(v, epoch, collab, collab, core))

	assert.Equal(t, 0, v.Len())
	assert.Equal(t, []chaintypes.OrderID{7}, collab.CancelledOrders)
	adjustments := collab.Adjustments["alice"]
	require.Len(t, adjustments, 2)
	assert.Equal(t, chaintypes.NewAmount(500, 1), adjustments[0])
	assert.Equal(t, chaintypes.NewAmount(70, core), adjustments[1])
}

func TestSweepLimitOrders_FeeExceedingDeferredFeeForfeitsAll(t *testing.T) {
	order := &chaintypes.LimitOrder{
		ID:          8,
		Seller:      "bob",
		Balance:     chaintypes.NewAmount(0, 1),
		Expiration:  epoch.Add(-time.Second),
		DeferredFee: 40,
	}
	v := chainindex.NewView(ByExpiration(func(o *chaintypes.LimitOrder) time.Time { return o.Expiration }))
	v.Insert(order)

	collab := fake.New()
	collab.CalculateCancelFeeFunc = func(*chaintypes.LimitOrder) int64 { return 1000 }

	require.NoError(t, SweepLimitOrders(v, epoch, collab, collab, core))

	assert.Empty(t, collab.Adjustments["bob"])
}
