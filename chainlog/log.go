// Package chainlog is the diagnostic sink every maintenance component
// writes to. It sits outside the consensus hash boundary (spec.md §9
// design note: "diagnostic logging interleaved with consensus code must
// be separated") — nothing in this package can influence ledger state,
// and no consensus package reads anything back from it.
package chainlog

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Kind tags which of the legacy tabular logs (spec.md §6) a record
// reproduces: emission.log, activity.log, transaction.log, block_info.log.
type Kind string

const (
	KindEmission    Kind = "emission"
	KindActivity    Kind = "activity"
	KindTransaction Kind = "transaction"
	KindBlockInfo   Kind = "block_info"
)

// Sink is a structured, swappable diagnostic log plus a small set of
// maintenance counters. The zero value is not usable; use New or Default.
type Sink struct {
	logger *logrus.Logger
	dedup  *gocache.Cache

	runsTotal        prometheus.Counter
	blackSwansTotal  prometheus.Counter
	expiredRemoved   *prometheus.CounterVec
	emissionDistrib  prometheus.Counter
}

// New builds a Sink around logger, registering its metrics with reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the global
// default registry across parallel test packages.
func New(logger *logrus.Logger, reg prometheus.Registerer) *Sink {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Sink{
		logger: logger,
		// Five-minute TTL: long enough to silence per-block repeats of
		// the same black swan while force-settlement drains the asset's
		// leftover orders, short enough that a fresh swan after a quiet
		// period logs again.
		dedup: gocache.New(5*time.Minute, 10*time.Minute),

		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainmaint_runs_total",
			Help: "Number of times ApplyBlockMaintenance completed.",
		}),
		blackSwansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainmaint_black_swans_total",
			Help: "Number of black-swan events triggered.",
		}),
		expiredRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chainmaint_expired_removed_total",
			Help: "Number of expired entities removed by kind.",
		}, []string{"kind"}),
		emissionDistrib: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainmaint_emission_distributed_total",
			Help: "Cumulative amount of core asset distributed by gravity emission.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.runsTotal, s.blackSwansTotal, s.expiredRemoved, s.emissionDistrib)
	}
	return s
}

var defaultSink = New(logrus.StandardLogger(), nil)

// Default returns the package-wide sink used when a caller doesn't need
// isolated metrics (e.g. the demo CLI).
func Default() *Sink { return defaultSink }

// NewRunID returns a fresh correlation id for one maintenance pass; every
// log line emitted during that pass should carry it as run_id so the
// C3..C10 diagnostics for a single block can be grepped together.
func NewRunID() string { return uuid.NewString() }

// Tabular reproduces one line of the legacy tabular logs as a structured
// record. fields should match the header columns documented for that log
// kind in spec.md §6.
func (s *Sink) Tabular(kind Kind, runID string, fields logrus.Fields) {
	fields["log_kind"] = string(kind)
	fields["run_id"] = runID
	s.logger.WithFields(fields).Info(string(kind))
}

// BlockInfo logs C3's per-block summary. Every call logs a record; there
// is no deduplication.
func (s *Sink) BlockInfo(runID string, blockNumber uint64, missedSlots uint64, aslot uint64) {
	s.Tabular(KindBlockInfo, runID, logrus.Fields{
		"block_number": blockNumber,
		"missed_slots": missedSlots,
		"aslot":        aslot,
	})
}

// BlackSwan logs a detected black swan, deduplicated by asset for the
// TTL window so repeated force-settlement cancellations against an
// already-settled asset don't spam the sink.
func (s *Sink) BlackSwan(runID string, assetSymbol string, settlePrice string) {
	s.blackSwansTotal.Inc()
	key := "blackswan:" + assetSymbol
	if _, found := s.dedup.Get(key); found {
		return
	}
	s.dedup.SetDefault(key, struct{}{})
	s.logger.WithFields(logrus.Fields{
		"log_kind":     "blackswan",
		"run_id":       runID,
		"asset":        assetSymbol,
		"settle_price": settlePrice,
	}).Warn("black swan detected")
}

// ExpiredRemoved increments the per-kind counter for an expiry sweep
// (limit orders, proposals, transactions, withdraw permissions).
func (s *Sink) ExpiredRemoved(kind string, n int) {
	if n <= 0 {
		return
	}
	s.expiredRemoved.WithLabelValues(kind).Add(float64(n))
}

// EmissionDistributed records a gravity-emission distribution total.
func (s *Sink) EmissionDistributed(amount int64) {
	if amount <= 0 {
		return
	}
	s.emissionDistrib.Add(float64(amount))
}

// RunCompleted marks one ApplyBlockMaintenance call as finished.
func (s *Sink) RunCompleted() { s.runsTotal.Inc() }

// Logger exposes the underlying structured logger for callers (e.g. the
// expiry sweepers) that need ad hoc WithFields calls not covered above.
func (s *Sink) Logger() *logrus.Logger { return s.logger }
