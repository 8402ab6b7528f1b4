// Command chainmaint-sim is a development harness for exercising one
// maintenance pass end to end against a YAML parameter file and a
// synthetic block. It is not a node, a wallet, or an RPC surface — just
// a way to watch C1 through C10 run without wiring up the rest of a
// chain.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/GravityProtocol/bitshares-core/chainactivity"
	"github.com/GravityProtocol/bitshares-core/chaincollab/fake"
	"github.com/GravityProtocol/bitshares-core/chainindex"
	"github.com/GravityProtocol/bitshares-core/chainlog"
	"github.com/GravityProtocol/bitshares-core/chainparams"
	"github.com/GravityProtocol/bitshares-core/chaintypes"
	"github.com/GravityProtocol/bitshares-core/maintenance"
)

func main() {
	app := &cli.App{
		Name:  "chainmaint-sim",
		Usage: "run one maintenance pass against a synthetic block",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Usage: "path to a GlobalParameters YAML file (optional)"},
			&cli.Int64Flag{Name: "block-number", Value: 1},
			&cli.BoolFlag{Name: "maintenance", Usage: "mark this block as starting a maintenance interval"},
			&cli.BoolFlag{Name: "verbose"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		chainlog.Default().Logger().SetLevel(logrus.DebugLevel)
	}

	params := chainparams.MainnetGlobalParameters()
	if path := c.String("params"); path != "" {
		doc, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		params, err = chainparams.LoadParameters(doc)
		if err != nil {
			return err
		}
	}

	scores, err := chainactivity.NewPreviousScoreCache(1024)
	if err != nil {
		return err
	}

	const coreAsset chaintypes.AssetID = 0
	const witness chaintypes.WitnessID = 1
	params.ActiveWitnesses = []chaintypes.WitnessID{witness}

	dgp := &chaintypes.DynamicGlobalState{WitnessBudget: params.WitnessPayPerBlock * 1000}
	if c.Bool("maintenance") {
		dgp.DynamicFlags = chaintypes.FlagMaintenance
	}

	ledger := &maintenance.Ledger{
		Dynamic:                 dgp,
		Params:                  &params,
		Witnesses:               map[chaintypes.WitnessID]*chaintypes.Witness{witness: {ID: witness}},
		TransactionDedup:        chainindex.NewView(func(a, b chaintypes.TransactionDedupEntry) bool { return a.Expiration.Before(b.Expiration) }),
		Proposals:               chainindex.NewView(func(a, b chaintypes.Proposal) bool { return a.ExpirationTime.Before(b.ExpirationTime) }),
		LimitOrders:             chainindex.NewView(func(a, b chaintypes.LimitOrder) bool { return a.Expiration.Before(b.Expiration) }),
		WithdrawPermissions:     chainindex.NewView(func(a, b chaintypes.WithdrawPermission) bool { return a.Expiration.Before(b.Expiration) }),
		Assets:                  map[chaintypes.AssetID]*chaintypes.Asset{coreAsset: {ID: coreAsset, Symbol: "CORE", Dynamic: chaintypes.AssetDynamicData{CurrentSupply: 1_000_000_000}}},
		CallOrdersByAsset:       map[chaintypes.AssetID]*chainindex.View[chaintypes.CallOrder]{},
		SettlementOrdersByAsset: map[chaintypes.AssetID]*chainindex.View[chaintypes.ForceSettlementOrder]{},
		HighestBidByAsset:       map[chaintypes.AssetID]chaintypes.Price{},
		CoreAsset:               coreAsset,
		Balances:                map[chaintypes.AccountName]int64{"alice": 10_000, "bob": 20_000},
		ActivityScores:          scores,
	}

	collab := fake.New()
	collab.SlotAtTimeFunc = func(t time.Time) uint64 { return uint64(t.Unix() / int64(params.BlockInterval.Seconds())) }
	collab.ScheduledWitnessFunc = func(uint64) chaintypes.WitnessID { return witness }

	block := chaintypes.Block{
		Number:    uint64(c.Int64("block-number")),
		WitnessID: witness,
		Timestamp: time.Unix(c.Int64("block-number")*int64(params.BlockInterval.Seconds()), 0),
		Transfers: []chaintypes.Transfer{
			{From: "alice", To: "bob", Amount: chaintypes.NewAmount(5000, coreAsset), TargetBalance: chaintypes.NewAmount(25_000, coreAsset), Timestamp: time.Now()},
		},
	}

	if err := maintenance.ApplyBlockMaintenance(ledger, block, maintenance.Collaborators{
		Scheduler:   collab,
		Evaluators:  collab,
		FeeSchedule: collab,
	}); err != nil {
		return err
	}

	fmt.Printf("head=%d last_irreversible=%d witness_budget=%d\n", ledger.Dynamic.HeadBlockNumber, ledger.Dynamic.LastIrreversibleBlock, ledger.Dynamic.WitnessBudget)
	for account, adjustments := range collab.Adjustments {
		total := int64(0)
		for _, a := range adjustments {
			total += a.Value
		}
		fmt.Printf("  %-10s net %+d\n", account, total)
	}
	return nil
}
