package executor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// batchRequest is handed from the Controller Facade to the supervisor
// worker goroutine to begin one execution.
type batchRequest struct {
	uuid                string
	mode                ExecutionMode
	proposals           []*Proposal
	exemptBrokers       []int
	demotedBrokers      []int
	removedBrokers      []int
	reason              string
	skipAutoConcurrency bool

	accepted chan error
}

// Supervisor runs the three-phase state machine (inter-broker -> intra-broker
// -> leader) describedIt is the sole writer of Task/Tracker
// state; the Controller Facade only ever mutates session flags and caps.
type Supervisor struct {
	session *session
	tracker *Tracker
	config  Config

	admin       AdminAPI
	coord       CoordinationStore
	metadata    MetadataClient
	loadMonitor LoadMonitor
	throttles   ThrottleHelper
	notifier    Notifier
	anomaly     AnomalyDetector
	userTasks   UserTaskManager

	demotionHistory *History
	removalHistory  *History

	metrics *metricsSet
	log     logrus.FieldLogger

	progressIntervalMs atomic.Int64

	requests chan *batchRequest
	done     chan struct{}
}

// NewSupervisor wires a Supervisor to its collaborators. Any of
// loadMonitor/throttles/notifier/anomaly/userTasks may be nil.
func NewSupervisor(
	session *session,
	tracker *Tracker,
	config Config,
	admin AdminAPI,
	coord CoordinationStore,
	metadata MetadataClient,
	loadMonitor LoadMonitor,
	throttles ThrottleHelper,
	notifier Notifier,
	anomaly AnomalyDetector,
	userTasks UserTaskManager,
	demotionHistory *History,
	removalHistory *History,
	metrics *metricsSet,
	log logrus.FieldLogger,
) *Supervisor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	sv := &Supervisor{
		session:         session,
		tracker:         tracker,
		config:          config,
		admin:           admin,
		coord:           coord,
		metadata:        metadata,
		loadMonitor:     loadMonitor,
		throttles:       throttles,
		notifier:        notifier,
		anomaly:         anomaly,
		userTasks:       userTasks,
		demotionHistory: demotionHistory,
		removalHistory:  removalHistory,
		metrics:         metrics,
		log:             log,
		requests:        make(chan *batchRequest),
		done:            make(chan struct{}),
	}
	sv.progressIntervalMs.Store(config.ProgressCheckInterval.Milliseconds())
	return sv
}

// SetProgressCheckInterval adjusts the poll period used by waitForProgress;
// it may be called from any goroutine and takes effect on the next wait.
func (sv *Supervisor) SetProgressCheckInterval(d time.Duration) error {
	clamped, err := clampProgressCheckInterval(d)
	if err != nil {
		return err
	}
	sv.progressIntervalMs.Store(clamped.Milliseconds())
	return nil
}

// Submit hands a batch request to the worker goroutine and blocks until it
// has been accepted (cluster preflight passed, tasks materialized) or
// rejected outright; it does not wait for the batch to finish.
func (sv *Supervisor) Submit(ctx context.Context, req *batchRequest) error {
	select {
	case sv.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.accepted:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the worker goroutine's main loop; it is started exactly once by the
// Controller Facade and exits when ctx is cancelled.
func (sv *Supervisor) Run(ctx context.Context) {
	defer close(sv.done)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-sv.requests:
			sv.runBatch(ctx, req)
		}
	}
}

// hasOngoingClusterWork checks the coordination store's three entry
// preconditions: no ongoing partition reassignment, no ongoing intra-broker
// move, and no ongoing preferred-leader election, in that order, short
// circuiting on the first one found.
func (sv *Supervisor) hasOngoingClusterWork(ctx context.Context) (bool, error) {
	if has, err := sv.coord.HasOngoingPartitionReassignment(ctx); err != nil {
		return false, err
	} else if has {
		return true, nil
	}
	if has, err := sv.coord.HasOngoingIntraBrokerMove(ctx); err != nil {
		return false, err
	} else if has {
		return true, nil
	}
	if has, err := sv.coord.HasOngoingLeaderElection(ctx); err != nil {
		return false, err
	} else if has {
		return true, nil
	}
	return false, nil
}

func (sv *Supervisor) runBatch(ctx context.Context, req *batchRequest) {
	if sv.coord != nil {
		ongoing, err := sv.hasOngoingClusterWork(ctx)
		if err != nil {
			sv.log.WithError(err).Warn("failed to check coordination store for ongoing cluster-side work")
		} else if ongoing {
			req.accepted <- &OngoingExecutionError{
				Message: "cluster already has an ongoing partition reassignment, intra-broker move, or leader election",
			}
			return
		}
	}

	cluster, err := sv.metadata.Refresh(ctx)
	if err != nil {
		req.accepted <- &IllegalStateError{Message: "failed to refresh cluster metadata", Cause: err}
		return
	}

	if err := sv.tracker.AddProposals(req.proposals, req.exemptBrokers, cluster, DefaultOrdering{}); err != nil {
		req.accepted <- err
		return
	}

	nowMs := time.Now().UnixMilli()
	for _, brokerID := range req.demotedBrokers {
		sv.demotionHistory.NoteStart(brokerID, nowMs)
	}
	for _, brokerID := range req.removedBrokers {
		sv.removalHistory.NoteStart(brokerID, nowMs)
	}

	sv.session.setUUID(req.uuid)
	sv.session.executionMode.Store(int32(req.mode))
	sv.session.hasOngoing.Store(true)
	sv.session.stoppedByUser.Store(false)
	sv.session.resetStopSignal()
	sv.session.setSkipAutoConcurrency(req.skipAutoConcurrency)
	sv.session.setPhase(Starting)
	if sv.metrics != nil {
		sv.metrics.recordStarted(req.mode)
	}

	req.accepted <- nil
	close(req.accepted)

	if sv.throttles != nil {
		if err := sv.throttles.SetThrottles(ctx, req.proposals); err != nil {
			sv.log.WithError(err).Warn("failed to set replication throttles")
		}
	}
	if sv.loadMonitor != nil {
		if err := sv.loadMonitor.SetSamplingMode(ctx, SamplingBrokerMetricsOnly); err != nil {
			sv.log.WithError(err).Warn("failed to switch load monitor sampling mode")
		}
	}

	sv.runInterBrokerPhase(ctx, cluster)
	sv.runIntraBrokerPhase(ctx, cluster)
	sv.runLeaderPhase(ctx, cluster)

	sv.cleanup(ctx, req)
}

func (sv *Supervisor) cleanup(ctx context.Context, req *batchRequest) {
	inter := InterBrokerReplicaTask
	stillInProgress := sv.tracker.InProgress(&inter)
	completed := sv.tracker.Finished(inter)

	if sv.throttles != nil {
		if err := sv.throttles.ClearThrottles(ctx, completed, stillInProgress); err != nil {
			sv.log.WithError(err).Warn("failed to clear replication throttles")
		}
	}
	if sv.loadMonitor != nil {
		if err := sv.loadMonitor.ResumeSampling(ctx, "execution finished"); err != nil {
			sv.log.WithError(err).Warn("failed to resume full load monitor sampling")
		}
	}

	if sv.anomaly != nil {
		sv.anomaly.ClearOngoingDetectionTime()
		sv.anomaly.ResetUnfixableGoals()
		sv.anomaly.MarkSelfHealingFinished(req.uuid)
	}
	if sv.userTasks != nil {
		sv.userTasks.MarkFinished(req.uuid, sv.session.StopSignal() != StopNone)
	}

	if sv.metrics != nil {
		if sv.session.StopSignal() != StopNone {
			sv.metrics.recordStopped(sv.session.StoppedByUser())
		} else {
			sv.metrics.recordCompleted()
		}
	}

	sv.session.reset()
}

// waitForProgress blocks for the configured poll interval or until ctx is
// cancelled, whichever comes first.
func (sv *Supervisor) waitForProgress(ctx context.Context) {
	timer := time.NewTimer(time.Duration(sv.progressIntervalMs.Load()) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// runInterBrokerPhase admits and observes inter-broker replica move tasks
// until none remain pending or in-flight, honoring stop escalation
//.
func (sv *Supervisor) runInterBrokerPhase(ctx context.Context, cluster *ClusterSnapshot) {
	sv.session.setPhase(InterBrokerInProgress)
	inter := InterBrokerReplicaTask

	for {
		if ctx.Err() != nil {
			return
		}

		stop := sv.session.StopSignal()
		if stop == StopNone {
			batch := sv.tracker.NextInterBrokerBatch(time.Now().UnixMilli())
			if len(batch) > 0 {
				sv.submitInterBroker(ctx, batch)
			}
		}

		sv.pollInterBroker(ctx, cluster)

		if stop == StopForced {
			sv.abortAllInterBroker(ctx)
			return
		}
		if stop == StopGraceful {
			sv.rollbackInterBroker(ctx)
		}

		if sv.tracker.RemainingPending(inter) == 0 && len(sv.tracker.InProgress(&inter)) == 0 {
			return
		}
		if stop == StopGraceful && len(sv.tracker.InProgress(&inter)) == 0 {
			return
		}

		sv.waitForProgress(ctx)

		cluster = sv.refreshOrKeep(ctx, cluster)
	}
}

func (sv *Supervisor) refreshOrKeep(ctx context.Context, cluster *ClusterSnapshot) *ClusterSnapshot {
	fresh, err := sv.metadata.Refresh(ctx)
	if err != nil {
		sv.log.WithError(err).Warn("failed to refresh cluster metadata; reusing last snapshot")
		return cluster
	}
	return fresh
}

func (sv *Supervisor) submitInterBroker(ctx context.Context, batch []*Task) {
	results, err := sv.admin.SubmitReplicaReassignments(ctx, batch)
	if err != nil {
		sv.log.WithError(err).Error("failed to submit inter-broker reassignments")
		return
	}
	for _, task := range batch {
		result, ok := results[task.Proposal.PartitionKey()]
		if ok && result != nil && result.Err != nil {
			sv.log.WithError(result.Err).Warnf(
				"submission rejected for %s", task.Proposal.PartitionKey(),
			)
			sv.handleInterBrokerDead(ctx, task, time.Now().UnixMilli())
		}
	}
}

// handleInterBrokerDead marks task DEAD, submits a rollback reassignment
// reverting it to its current replica set (it has already left
// tracker.InProgress by the time rollbackInterBroker's sweep would otherwise
// find it), and self-triggers a graceful stop for the rest of the batch if
// none has been requested yet.
func (sv *Supervisor) handleInterBrokerDead(ctx context.Context, task *Task, nowMs int64) {
	_ = sv.tracker.MarkDead(task, nowMs)
	sv.rollbackTasks(ctx, []*Task{task})

	if sv.session.requestStop(StopGraceful) {
		sv.log.Warnf(
			"inter-broker task for %s died; self-triggering a graceful stop",
			task.Proposal.PartitionKey(),
		)
	}
}

// pollInterBroker observes in-flight inter-broker tasks against the current
// ongoing-reassignment set and cluster snapshot, marking tasks done, dead,
// or resubmitting ones the controller silently dropped.
func (sv *Supervisor) pollInterBroker(ctx context.Context, cluster *ClusterSnapshot) {
	inter := InterBrokerReplicaTask
	ongoing, err := sv.admin.ListOngoingReassignments(ctx)
	if err != nil {
		sv.log.WithError(err).Warn("failed to list ongoing reassignments")
		return
	}

	nowMs := time.Now().UnixMilli()
	for _, task := range sv.tracker.InProgress(&inter) {
		key := task.Proposal.PartitionKey()
		state, exists := cluster.partition(key)

		if !exists {
			if task.State() == InProgress {
				_ = sv.tracker.MarkAborting(task, nowMs)
			} else {
				_ = sv.tracker.MarkDone(task, nowMs)
			}
			continue
		}

		if _, stillOngoing := ongoing[key]; stillOngoing {
			sv.alertIfSlow(task, nowMs)
			continue
		}

		if sameElements(state.Replicas, task.Proposal.TargetReplicas) {
			if len(setIntersection(state.ISR, task.Proposal.SourceBrokers())) > 0 {
				// A replica being removed is still reporting in-sync; the
				// cluster hasn't fully settled onto the target set yet.
				continue
			}
			_ = sv.tracker.MarkDone(task, nowMs)
			continue
		}

		if sameElements(state.Replicas, task.Proposal.CurrentReplicas) {
			if task.State() == Aborting {
				_ = sv.tracker.MarkDone(task, nowMs)
				continue
			}
			if sv.config.FeatureReexecuteDroppedTasks {
				sv.log.Warnf("reassignment for %s appears to have been dropped; resubmitting", key)
				sv.submitInterBroker(ctx, []*Task{task})
			}
			continue
		}

		probeCtx, cancelProbe := context.WithTimeout(
			ctx,
			time.Duration(FutureErrorVerificationTimeoutMs)*time.Millisecond,
		)
		errClass, probeErr := sv.admin.ProbeSubmissionError(probeCtx, key)
		cancelProbe()
		if probeErr == nil && errClass != "" {
			sv.log.Warnf("reassignment for %s failed with %s", key, errClass)
			sv.handleInterBrokerDead(ctx, task, nowMs)
		}
	}
}

func (sv *Supervisor) alertIfSlow(task *Task, nowMs int64) {
	if sv.config.SlowTaskAlertThreshold <= 0 {
		return
	}
	elapsed := nowMs - task.StartTimeMs()
	if elapsed < sv.config.SlowTaskAlertThreshold.Milliseconds() {
		return
	}
	if nowMs-task.SlowAlertedAtMs() < SlowTaskAlertBackoffMs {
		return
	}
	task.setSlowAlertedAtMs(nowMs)
	if sv.notifier != nil {
		sv.notifier.SendAlert("task " + task.Proposal.String() + " is taking longer than expected")
	}
}

// rollbackInterBroker cancels in-flight inter-broker tasks back to their
// current replica set on a graceful stop.
func (sv *Supervisor) rollbackInterBroker(ctx context.Context) {
	inter := InterBrokerReplicaTask
	nowMs := time.Now().UnixMilli()

	var toRollback []*Task
	for _, task := range sv.tracker.InProgress(&inter) {
		if task.State() == InProgress {
			toRollback = append(toRollback, task)
			_ = sv.tracker.MarkAborting(task, nowMs)
		}
	}
	sv.rollbackTasks(ctx, toRollback)
}

// rollbackTasks submits a reverted reassignment (target/current swapped) for
// each of the given inter-broker tasks. Used both for the in-bulk rollback on
// a graceful stop and for the single-task rollback issued when a task dies.
func (sv *Supervisor) rollbackTasks(ctx context.Context, tasks []*Task) {
	if len(tasks) == 0 {
		return
	}

	rollback := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		reverted := &Proposal{
			Topic:           task.Proposal.Topic,
			PartitionIndex:  task.Proposal.PartitionIndex,
			CurrentReplicas: task.Proposal.TargetReplicas,
			TargetReplicas:  task.Proposal.CurrentReplicas,
			TargetLogDirs:   task.Proposal.TargetLogDirs,
			DataSizeMB:      task.Proposal.DataSizeMB,
		}
		rollback = append(rollback, &Task{
			ExecutionID: task.ExecutionID,
			Type:        InterBrokerReplicaTask,
			Proposal:    reverted,
		})
	}

	if _, err := sv.admin.SubmitReplicaReassignments(ctx, rollback); err != nil {
		sv.log.WithError(err).Error("failed to submit rollback reassignments")
	}
}

// abortAllInterBroker marks every in-flight inter-broker task dead and asks
// the coordination store to delete the cluster's reassignment markers, on a
// forced stop.
func (sv *Supervisor) abortAllInterBroker(ctx context.Context) {
	inter := InterBrokerReplicaTask
	nowMs := time.Now().UnixMilli()
	for _, task := range sv.tracker.InProgress(&inter) {
		_ = sv.tracker.MarkDead(task, nowMs)
	}
	if sv.coord != nil {
		if err := sv.coord.DeleteReassignmentMarkers(ctx); err != nil {
			sv.log.WithError(err).Error("failed to delete reassignment markers on forced stop")
		}
	}
}

// runIntraBrokerPhase is the log-directory-move analog of
// runInterBrokerPhase; intra-broker moves have no rollback path, so a
// graceful stop simply stops admitting new ones and drains the rest.
func (sv *Supervisor) runIntraBrokerPhase(ctx context.Context, cluster *ClusterSnapshot) {
	sv.session.setPhase(IntraBrokerInProgress)
	intra := IntraBrokerReplicaTask

	for {
		if ctx.Err() != nil {
			return
		}

		stop := sv.session.StopSignal()
		if stop == StopNone {
			batch := sv.tracker.NextIntraBrokerBatch(time.Now().UnixMilli())
			if len(batch) > 0 {
				sv.submitIntraBroker(ctx, batch)
			}
		}

		sv.pollIntraBroker(ctx)

		if stop == StopForced {
			nowMs := time.Now().UnixMilli()
			for _, task := range sv.tracker.InProgress(&intra) {
				_ = sv.tracker.MarkDead(task, nowMs)
			}
			return
		}

		if sv.tracker.RemainingPending(intra) == 0 && len(sv.tracker.InProgress(&intra)) == 0 {
			return
		}
		if stop == StopGraceful && len(sv.tracker.InProgress(&intra)) == 0 {
			return
		}

		sv.waitForProgress(ctx)
	}
}

func (sv *Supervisor) submitIntraBroker(ctx context.Context, batch []*Task) {
	results, err := sv.admin.SubmitReplicaReassignments(ctx, batch)
	if err != nil {
		sv.log.WithError(err).Error("failed to submit intra-broker log-dir moves")
		return
	}
	for _, task := range batch {
		result, ok := results[task.ResultKey()]
		if ok && result != nil && result.Err != nil {
			_ = sv.tracker.MarkDead(task, time.Now().UnixMilli())
		}
	}
}

func (sv *Supervisor) pollIntraBroker(ctx context.Context) {
	intra := IntraBrokerReplicaTask
	inProgress := sv.tracker.InProgress(&intra)
	if len(inProgress) == 0 {
		return
	}

	brokerIDs := make([]int, 0, len(inProgress))
	seen := map[int]struct{}{}
	for _, task := range inProgress {
		if _, ok := seen[task.BrokerID]; !ok {
			seen[task.BrokerID] = struct{}{}
			brokerIDs = append(brokerIDs, task.BrokerID)
		}
	}

	logDirs, err := sv.metadata.DescribeLogDirs(ctx, brokerIDs)
	if err != nil {
		sv.log.WithError(err).Warn("failed to describe log dirs")
		return
	}

	nowMs := time.Now().UnixMilli()
	for _, task := range inProgress {
		entries, ok := logDirs[task.BrokerID]
		if !ok {
			continue
		}
		entry, ok := entries[task.Proposal.PartitionKey()]
		if !ok {
			_ = sv.tracker.MarkDone(task, nowMs)
			continue
		}
		if entry.FutureDir == "" && entry.CurrentDir == task.Proposal.TargetLogDirs[task.BrokerID] {
			_ = sv.tracker.MarkDone(task, nowMs)
			continue
		}
		sv.alertIfSlow(task, nowMs)
	}
}

// runLeaderPhase is the preferred-leader-election phase; elections are
// idempotent and cheap, so a graceful or forced stop simply abandons any
// still-pending ones without cancelling in-flight elections.
func (sv *Supervisor) runLeaderPhase(ctx context.Context, cluster *ClusterSnapshot) {
	sv.session.setPhase(LeaderInProgress)
	leader := LeaderTask

	for {
		if ctx.Err() != nil {
			return
		}

		stop := sv.session.StopSignal()
		if stop == StopNone {
			batch := sv.tracker.NextLeaderBatch(time.Now().UnixMilli())
			if len(batch) > 0 {
				if err := sv.coord.TriggerPreferredLeaderElection(ctx, batch); err != nil {
					sv.log.WithError(err).Error("failed to trigger preferred leader elections")
				}
			}
		}

		sv.pollLeader(ctx, cluster)

		if stop != StopNone && len(sv.tracker.InProgress(&leader)) == 0 {
			return
		}
		if sv.tracker.RemainingPending(leader) == 0 && len(sv.tracker.InProgress(&leader)) == 0 {
			return
		}

		sv.waitForProgress(ctx)

		cluster = sv.refreshOrKeep(ctx, cluster)
	}
}

// pollLeader observes in-flight leader tasks: a task dies if its target
// leader's broker is no longer live or it has exceeded
// Config.LeaderMovementTimeout, and completes once the election has stopped
// appearing as ongoing and the cluster reports the target broker as leader.
func (sv *Supervisor) pollLeader(ctx context.Context, cluster *ClusterSnapshot) {
	leader := LeaderTask
	ongoing, err := sv.coord.ListOngoingPreferredLeaderElections(ctx)
	if err != nil {
		sv.log.WithError(err).Warn("failed to list ongoing leader elections")
		return
	}

	nowMs := time.Now().UnixMilli()
	for _, task := range sv.tracker.InProgress(&leader) {
		key := task.Proposal.PartitionKey()
		targetLeader := task.Proposal.TargetLeader()

		if !cluster.isLive(targetLeader) {
			sv.log.Warnf(
				"preferred leader election for %s: target leader %d is not live; marking dead",
				key, targetLeader,
			)
			_ = sv.tracker.MarkDead(task, nowMs)
			continue
		}
		if sv.config.LeaderMovementTimeout > 0 &&
			nowMs-task.StartTimeMs() > sv.config.LeaderMovementTimeout.Milliseconds() {
			sv.log.Warnf("preferred leader election for %s exceeded its timeout; marking dead", key)
			_ = sv.tracker.MarkDead(task, nowMs)
			continue
		}

		if _, stillOngoing := ongoing[key]; stillOngoing {
			sv.alertIfSlow(task, nowMs)
			continue
		}

		if state, exists := cluster.partition(key); exists && state.Leader == targetLeader {
			_ = sv.tracker.MarkDone(task, nowMs)
		}
	}
}
