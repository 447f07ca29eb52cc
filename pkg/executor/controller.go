package executor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Controller is the facade: the single entry point
// callers use to reserve the executor, hand it proposals, observe its
// status, and request a stop. It owns the supervisor worker goroutine and
// the AIMD adjuster goroutine, and enforces the single-writer discipline by
// only ever mutating session flags and tracker caps itself (all Task/Tracker
// mutation happens on the supervisor's goroutine).
type Controller struct {
	mu sync.Mutex

	session  *session
	tracker  *Tracker
	config   Config
	adjuster *ConcurrencyAdjuster
	sv       *Supervisor
	metrics  *metricsSet

	cancel context.CancelFunc
}

// NewController constructs a Controller and starts its background
// goroutines (the supervisor worker and the concurrency adjuster, whose ticks
// do nothing while it is disabled). Callers should call Shutdown when done.
func NewController(
	config Config,
	admin AdminAPI,
	coord CoordinationStore,
	metadata MetadataClient,
	loadMonitor LoadMonitor,
	throttles ThrottleHelper,
	notifier Notifier,
	anomaly AnomalyDetector,
	userTasks UserTaskManager,
	registerer prometheus.Registerer,
	log logrus.FieldLogger,
) *Controller {
	interval, err := clampProgressCheckInterval(config.ProgressCheckInterval)
	if err == nil {
		config.ProgressCheckInterval = interval
	}

	s := newSession()
	tracker := NewTracker()
	metrics := newMetricsSet(registerer)

	demotionHistory := NewHistory(config.DemotionHistoryRetention)
	removalHistory := NewHistory(config.RemovalHistoryRetention)

	sv := NewSupervisor(
		s, tracker, config,
		admin, coord, metadata, loadMonitor, throttles, notifier, anomaly, userTasks,
		demotionHistory, removalHistory,
		metrics, log,
	)

	adjuster := NewConcurrencyAdjuster(
		s,
		tracker,
		loadMonitor,
		config.ConcurrencyAdjusterWatermarks,
		config.ConcurrencyAdjusterMaxPartitionMovementsPerBroker,
		config.ConcurrencyAdjusterInterval,
		log,
	)
	adjuster.SetEnabled(config.ConcurrencyAdjusterEnabled)

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		session:  s,
		tracker:  tracker,
		config:   config,
		adjuster: adjuster,
		sv:       sv,
		metrics:  metrics,
		cancel:   cancel,
	}

	go sv.Run(ctx)
	go adjuster.Run(ctx)

	return c
}

// BeginProposing reserves the controller for a caller that is about to
// compute proposals: it fails with OngoingExecutionError if a
// batch is already in flight. It does not yet hand the supervisor any work.
func (c *Controller) BeginProposing() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.HasOngoing() {
		return "", &OngoingExecutionError{Message: "an execution is already in progress"}
	}

	id := uuid.New().String()
	c.session.setUUID(id)
	c.session.hasOngoing.Store(true)
	c.session.setPhase(Proposing)
	return id, nil
}

// FailProposing releases the reservation made by BeginProposing without
// starting an execution, e.g. because proposal generation itself failed.
func (c *Controller) FailProposing(uuid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.UUID() != uuid || c.session.Phase() != Proposing {
		return &IllegalArgumentError{Message: "uuid does not match the reserved proposing session"}
	}
	c.session.reset()
	return nil
}

// Execute hands a finished proposal set to the supervisor and returns once
// it has been accepted (materialized into tasks); it does not block until
// the batch finishes.
func (c *Controller) Execute(
	ctx context.Context,
	uuid string,
	mode ExecutionMode,
	proposals []*Proposal,
	brokersExemptFromConcurrencyCap []int,
) error {
	c.mu.Lock()
	if c.session.UUID() != uuid || c.session.Phase() != Proposing {
		c.mu.Unlock()
		return &IllegalArgumentError{Message: "uuid does not match the reserved proposing session"}
	}
	c.mu.Unlock()

	req := &batchRequest{
		uuid:          uuid,
		mode:          mode,
		proposals:     proposals,
		exemptBrokers: brokersExemptFromConcurrencyCap,
		accepted:      make(chan error, 1),
	}
	return c.sv.Submit(ctx, req)
}

// ExecuteDemote is the demote-broker/remove-broker entry point: it behaves
// like Execute but also records the affected brokers in the demotion/removal
// history stores.
func (c *Controller) ExecuteDemote(
	ctx context.Context,
	uuid string,
	proposals []*Proposal,
	brokersExemptFromConcurrencyCap []int,
	demotedBrokers []int,
	removedBrokers []int,
) error {
	c.mu.Lock()
	if c.session.UUID() != uuid || c.session.Phase() != Proposing {
		c.mu.Unlock()
		return &IllegalArgumentError{Message: "uuid does not match the reserved proposing session"}
	}
	c.mu.Unlock()

	req := &batchRequest{
		uuid:                uuid,
		mode:                NonAssignerMode,
		proposals:           proposals,
		exemptBrokers:       brokersExemptFromConcurrencyCap,
		demotedBrokers:      demotedBrokers,
		removedBrokers:      removedBrokers,
		skipAutoConcurrency: true,
		accepted:            make(chan error, 1),
	}
	return c.sv.Submit(ctx, req)
}

// Stop requests the in-flight execution stop. A forced request escalates a
// graceful stop already in progress; a request no stronger than the current
// stop signal changes nothing and returns false.
func (c *Controller) Stop(force bool, byUser bool, reason func() string) bool {
	sig := StopGraceful
	if force {
		sig = StopForced
	}
	changed := c.session.requestStop(sig)
	if changed {
		c.session.stoppedByUser.Store(byUser)
		if reason != nil {
			c.session.reasonProvider.Store(reason)
		}
	}
	return changed
}

// SetConcurrencyAdjuster toggles the AIMD adjuster. The source
// implementation only ever applies this to inter-broker replica moves
//; UnsupportedTypeError mirrors that constraint for
// callers that (incorrectly) ask to gate it per task type.
func (c *Controller) SetConcurrencyAdjuster(enabled bool, taskType TaskType) error {
	if taskType != InterBrokerReplicaTask {
		return &UnsupportedTypeError{
			Message: "the concurrency adjuster only applies to inter-broker replica moves",
		}
	}
	c.adjuster.SetEnabled(enabled)
	return nil
}

// SetInterBrokerConcurrency, SetIntraBrokerConcurrency, and
// SetLeaderConcurrency let a caller override the per-type concurrency cap;
// they take effect on the next batch admission.
func (c *Controller) SetInterBrokerConcurrency(n int32) { c.tracker.SetCapInter(n) }
func (c *Controller) SetIntraBrokerConcurrency(n int32) { c.tracker.SetCapIntra(n) }
func (c *Controller) SetLeaderConcurrency(n int32)      { c.tracker.SetCapLeader(n) }

// SetProgressCheckInterval adjusts the supervisor's poll period, enforcing
// the hard floor.
func (c *Controller) SetProgressCheckInterval(d time.Duration) error {
	return c.sv.SetProgressCheckInterval(d)
}

// Status returns an immutable snapshot of the controller's current state
//.
func (c *Controller) Status() StatusSnapshot {
	return buildSnapshot(c.session, c.tracker, c.adjuster.Enabled())
}

// DemotionHistorySnapshot and RemovalHistorySnapshot expose read access to
// the history stores for callers computing future proposals.
func (c *Controller) DemotionHistorySnapshot() map[int]int64 {
	return c.sv.demotionHistory.Snapshot()
}

func (c *Controller) RemovalHistorySnapshot() map[int]int64 {
	return c.sv.removalHistory.Snapshot()
}

// MarkBrokersPermanentlyDemoted and MarkBrokersPermanentlyRemoved pin
// entries in the respective history so neither History.Sweep nor the cache's
// TTL expiry evicts them.
func (c *Controller) MarkBrokersPermanentlyDemoted(brokerIDs []int) {
	c.sv.demotionHistory.MarkPermanent(brokerIDs)
}

func (c *Controller) MarkBrokersPermanentlyRemoved(brokerIDs []int) {
	c.sv.removalHistory.MarkPermanent(brokerIDs)
}

// Shutdown stops the supervisor and adjuster goroutines and closes the
// history stores' caches, returning the combined error from both Close calls
// (ttlcache.Close stops the cache's expiry goroutine and can fail
// independently per store).
func (c *Controller) Shutdown() error {
	c.cancel()
	c.adjuster.Stop()

	var err error
	if cerr := c.sv.demotionHistory.Close(); cerr != nil {
		err = multierror.Append(err, cerr)
	}
	if cerr := c.sv.removalHistory.Close(); cerr != nil {
		err = multierror.Append(err, cerr)
	}
	return err
}
