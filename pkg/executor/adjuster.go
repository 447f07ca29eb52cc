package executor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ConcurrencyAdjuster periodically reconsiders the inter-broker replica
// movement cap using an additive-increase/multiplicative-decrease policy
// driven by broker metric watermarks. It never touches the
// intra-broker or leader caps: the source implementation gates this
// explicitly to inter-broker replica moves only.
type ConcurrencyAdjuster struct {
	session      *session
	tracker      *Tracker
	loadMonitor  LoadMonitor
	watermarks   Watermarks
	maxPerBroker int32
	interval     time.Duration

	enabled atomic.Bool

	stopCh chan struct{}
	doneCh chan struct{}

	log logrus.FieldLogger
}

// NewConcurrencyAdjuster constructs an adjuster bound to session and tracker.
// loadMonitor may be nil, in which case Run is a no-op loop that only waits
// for stop.
func NewConcurrencyAdjuster(
	session *session,
	tracker *Tracker,
	loadMonitor LoadMonitor,
	watermarks Watermarks,
	maxPerBroker int,
	interval time.Duration,
	log logrus.FieldLogger,
) *ConcurrencyAdjuster {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &ConcurrencyAdjuster{
		session:      session,
		tracker:      tracker,
		loadMonitor:  loadMonitor,
		watermarks:   watermarks,
		maxPerBroker: int32(maxPerBroker),
		interval:     interval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		log:          log,
	}
	return a
}

// SetEnabled toggles the adjuster; it may be called from any goroutine
//.
func (a *ConcurrencyAdjuster) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

func (a *ConcurrencyAdjuster) Enabled() bool {
	return a.enabled.Load()
}

// Run drives the adjuster's ticker loop until Stop is called. It is meant to
// run in its own goroutine for the lifetime of the Controller.
func (a *ConcurrencyAdjuster) Run(ctx context.Context) {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// Stop signals Run to return and blocks until it has.
func (a *ConcurrencyAdjuster) Stop() {
	select {
	case <-a.stopCh:
	default:
		close(a.stopCh)
	}
	<-a.doneCh
}

// tick runs one adjustment pass. It is a no-op unless the adjuster is
// enabled, a load monitor is wired, the current batch is in the
// INTER_BROKER_IN_PROGRESS phase, and the current batch hasn't disabled
// auto concurrency (demote/remove batches do, via session.skipAutoConcurrency).
func (a *ConcurrencyAdjuster) tick(ctx context.Context) {
	if !a.Enabled() || a.loadMonitor == nil {
		return
	}
	if a.session.Phase() != InterBrokerInProgress {
		return
	}
	if a.session.SkipAutoConcurrency() {
		return
	}

	values, err := a.loadMonitor.CurrentBrokerMetricValues(ctx)
	if err != nil {
		a.log.WithError(err).Warn("concurrency adjuster: failed to read broker metrics")
		return
	}
	if len(values) == 0 {
		return
	}

	decision := a.decide(values)
	cur := a.tracker.CapInter()

	switch decision {
	case decreaseConcurrency:
		next := cur / 2
		if next < 1 {
			next = 1
		}
		if next != cur {
			a.log.WithFields(logrus.Fields{"from": cur, "to": next}).Info(
				"concurrency adjuster: decreasing inter-broker concurrency",
			)
			a.tracker.SetCapInter(next)
		}
	case increaseConcurrency:
		next := cur + 1
		if next > a.maxPerBroker {
			next = a.maxPerBroker
		}
		if next != cur {
			a.log.WithFields(logrus.Fields{"from": cur, "to": next}).Info(
				"concurrency adjuster: increasing inter-broker concurrency",
			)
			a.tracker.SetCapInter(next)
		}
	case holdConcurrency:
	}
}

type adjustDecision int

const (
	holdConcurrency adjustDecision = iota
	increaseConcurrency
	decreaseConcurrency
)

// decide implements the watermark comparison: a
// multiplicative decrease wins if any broker breaches a high watermark; an
// additive increase only happens if every broker is under every low
// watermark.
func (a *ConcurrencyAdjuster) decide(values BrokerMetricValues) adjustDecision {
	allLow := true

	for _, metrics := range values {
		cpu := metrics["cpu_utilization"]
		queueMs := metrics["request_queue_time_ms"]
		bandwidth := metrics["bandwidth_utilization"]

		if cpu >= a.watermarks.HighCPU ||
			queueMs >= a.watermarks.HighRequestQueueTimeMs ||
			bandwidth >= a.watermarks.HighBandwidthUtilization {
			return decreaseConcurrency
		}

		if cpu >= a.watermarks.LowCPU ||
			queueMs >= a.watermarks.LowRequestQueueTimeMs ||
			bandwidth >= a.watermarks.LowBandwidthUtilization {
			allLow = false
		}
	}

	if allLow {
		return increaseConcurrency
	}
	return holdConcurrency
}
