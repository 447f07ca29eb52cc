package executor

import (
	"strconv"
	"sync"

	cmap "github.com/orcaman/concurrent-map"
	"go.uber.org/atomic"
)

// partitionTasks groups the (at most) one inter-broker task, one leader task,
// and any number of intra-broker tasks derived from a single partition
//.
type partitionTasks struct {
	interBroker *Task
	leader      *Task
	intraBroker []*Task
}

// Tracker owns all tasks for one batch: it materializes them from proposals,
// groups them by partition/broker, enforces concurrency caps, and hands out
// runnable batches for submission.
//
// The task lists themselves are single-writer (only the supervisor worker
// calls addProposals/next*Batch/mark*), but the cap setters may be called
// from any goroutine, so the caps are plain atomics.
type Tracker struct {
	mu sync.Mutex

	nextID int64

	pendingInter  []*Task
	pendingIntra  []*Task
	pendingLeader []*Task

	inProgress map[int64]*Task
	done       map[int64]*Task

	byPartition cmap.ConcurrentMap

	interBrokerCounts cmap.ConcurrentMap // brokerKey -> *atomic.Int32
	intraBrokerCounts cmap.ConcurrentMap // brokerKey -> *atomic.Int32
	leaderInProgress  atomic.Int32

	interCap  atomic.Int32
	intraCap  atomic.Int32
	leaderCap atomic.Int32

	exempt map[int]struct{}
}

// NewTracker creates an empty Tracker with caps of 1 for every task type.
func NewTracker() *Tracker {
	t := &Tracker{
		inProgress:        map[int64]*Task{},
		done:              map[int64]*Task{},
		byPartition:       cmap.New(),
		interBrokerCounts: cmap.New(),
		intraBrokerCounts: cmap.New(),
		exempt:            map[int]struct{}{},
	}
	t.interCap.Store(1)
	t.intraCap.Store(1)
	t.leaderCap.Store(1)
	return t
}

func brokerCountKey(brokerID int) string {
	return strconv.Itoa(brokerID)
}

func (t *Tracker) counterFor(m cmap.ConcurrentMap, brokerID int) *atomic.Int32 {
	key := brokerCountKey(brokerID)
	if v, ok := m.Get(key); ok {
		return v.(*atomic.Int32)
	}
	counter := atomic.NewInt32(0)
	// Upsert-or-get: another goroutine may have raced us; keep whichever
	// landed first so counts stay on a single counter per broker.
	if !m.SetIfAbsent(key, counter) {
		v, _ := m.Get(key)
		return v.(*atomic.Int32)
	}
	return counter
}

// AddProposals materializes tasks from proposals, grouping them by partition
// and type per the invariants: one LEADER task iff the leader
// differs and replicas are identical, one INTER_BROKER task iff any replica
// is added/removed, and one INTRA_BROKER task per broker whose log directory
// target differs. Tasks are ordered for emission by the given strategy.
func (t *Tracker) AddProposals(
	proposals []*Proposal,
	exemptBrokers []int,
	cluster *ClusterSnapshot,
	ordering OrderingStrategy,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ordering == nil {
		ordering = DefaultOrdering{}
	}

	t.exempt = map[int]struct{}{}
	for _, b := range exemptBrokers {
		t.exempt[b] = struct{}{}
	}

	for _, proposal := range proposals {
		pt := &partitionTasks{}

		if proposal.NeedsInterBrokerMove() {
			task := newTask(t.nextID, InterBrokerReplicaTask, proposal, 0)
			t.nextID++
			pt.interBroker = task
			t.pendingInter = append(t.pendingInter, task)
		}

		for _, brokerID := range proposal.IntraBrokerMoves() {
			task := newTask(t.nextID, IntraBrokerReplicaTask, proposal, brokerID)
			t.nextID++
			pt.intraBroker = append(pt.intraBroker, task)
			t.pendingIntra = append(t.pendingIntra, task)
		}

		if proposal.NeedsLeaderMove() {
			task := newTask(t.nextID, LeaderTask, proposal, 0)
			t.nextID++
			pt.leader = task
			t.pendingLeader = append(t.pendingLeader, task)
		}

		t.byPartition.Set(proposal.PartitionKey(), pt)
	}

	sortTasks(t.pendingInter, ordering, cluster)
	sortTasks(t.pendingIntra, ordering, cluster)
	sortTasks(t.pendingLeader, ordering, cluster)

	return nil
}

// admitInterBroker reports whether task can run concurrently with the
// already-admitted/in-progress inter-broker tasks: every broker in
// source ∪ dest must be under cap, unless exempt.
func (t *Tracker) admitInterBroker(task *Task, cap int32) bool {
	for _, brokerID := range task.CapKey() {
		if _, exempt := t.exempt[brokerID]; exempt {
			continue
		}
		if t.counterFor(t.interBrokerCounts, brokerID).Load() >= cap {
			return false
		}
	}
	return true
}

func (t *Tracker) admitIntraBroker(task *Task, cap int32) bool {
	if _, exempt := t.exempt[task.BrokerID]; exempt {
		return true
	}
	return t.counterFor(t.intraBrokerCounts, task.BrokerID).Load() < cap
}

// NextInterBrokerBatch returns the largest deterministic prefix of pending
// inter-broker tasks admissible under the current cap, marking them
// IN_PROGRESS.
func (t *Tracker) NextInterBrokerBatch(nowMs int64) []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	cap := t.interCap.Load()
	batch := []*Task{}
	i := 0
	for ; i < len(t.pendingInter); i++ {
		task := t.pendingInter[i]
		if !t.admitInterBroker(task, cap) {
			break
		}
		if err := task.transition(InProgress, nowMs); err != nil {
			break
		}
		for _, brokerID := range task.CapKey() {
			if _, exempt := t.exempt[brokerID]; !exempt {
				t.counterFor(t.interBrokerCounts, brokerID).Inc()
			}
		}
		t.inProgress[task.ExecutionID] = task
		batch = append(batch, task)
	}
	t.pendingInter = t.pendingInter[i:]
	return batch
}

// NextIntraBrokerBatch is the intra-broker analog of NextInterBrokerBatch.
func (t *Tracker) NextIntraBrokerBatch(nowMs int64) []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	cap := t.intraCap.Load()
	batch := []*Task{}
	i := 0
	for ; i < len(t.pendingIntra); i++ {
		task := t.pendingIntra[i]
		if !t.admitIntraBroker(task, cap) {
			break
		}
		if err := task.transition(InProgress, nowMs); err != nil {
			break
		}
		if _, exempt := t.exempt[task.BrokerID]; !exempt {
			t.counterFor(t.intraBrokerCounts, task.BrokerID).Inc()
		}
		t.inProgress[task.ExecutionID] = task
		batch = append(batch, task)
	}
	t.pendingIntra = t.pendingIntra[i:]
	return batch
}

// NextLeaderBatch returns the largest deterministic prefix of pending leader
// tasks admissible under the global leader cap.
func (t *Tracker) NextLeaderBatch(nowMs int64) []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	cap := t.leaderCap.Load()
	batch := []*Task{}
	i := 0
	for ; i < len(t.pendingLeader); i++ {
		task := t.pendingLeader[i]
		if t.leaderInProgress.Load() >= cap {
			break
		}
		if err := task.transition(InProgress, nowMs); err != nil {
			break
		}
		t.leaderInProgress.Inc()
		t.inProgress[task.ExecutionID] = task
		batch = append(batch, task)
	}
	t.pendingLeader = t.pendingLeader[i:]
	return batch
}

func (t *Tracker) releaseCounts(task *Task) {
	switch task.Type {
	case InterBrokerReplicaTask:
		for _, brokerID := range task.CapKey() {
			if _, exempt := t.exempt[brokerID]; !exempt {
				t.counterFor(t.interBrokerCounts, brokerID).Dec()
			}
		}
	case IntraBrokerReplicaTask:
		if _, exempt := t.exempt[task.BrokerID]; !exempt {
			t.counterFor(t.intraBrokerCounts, task.BrokerID).Dec()
		}
	case LeaderTask:
		t.leaderInProgress.Dec()
	}
}

// MarkDone transitions a task to its successful terminal state: COMPLETED if
// it was IN_PROGRESS, or ABORTED if it was ABORTING.
func (t *Tracker) MarkDone(task *Task, nowMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	target := Completed
	if task.State() == Aborting {
		target = Aborted
	}
	if err := task.transition(target, nowMs); err != nil {
		return err
	}

	t.releaseCounts(task)
	delete(t.inProgress, task.ExecutionID)
	t.done[task.ExecutionID] = task
	return nil
}

// MarkAborting begins cancellation of an in-flight task; it still counts
// against concurrency caps until it settles.
func (t *Tracker) MarkAborting(task *Task, nowMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return task.transition(Aborting, nowMs)
}

// MarkDead transitions a task to DEAD from IN_PROGRESS or ABORTING.
func (t *Tracker) MarkDead(task *Task, nowMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := task.transition(Dead, nowMs); err != nil {
		return err
	}

	t.releaseCounts(task)
	delete(t.inProgress, task.ExecutionID)
	t.done[task.ExecutionID] = task
	return nil
}

// InProgress returns the tasks currently IN_PROGRESS or ABORTING, optionally
// filtered to a single type.
func (t *Tracker) InProgress(typeFilter *TaskType) []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []*Task{}
	for _, task := range t.inProgress {
		if typeFilter != nil && task.Type != *typeFilter {
			continue
		}
		out = append(out, task)
	}
	return out
}

// RemainingPending returns the count of not-yet-emitted tasks of the given
// type.
func (t *Tracker) RemainingPending(taskType TaskType) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch taskType {
	case InterBrokerReplicaTask:
		return len(t.pendingInter)
	case IntraBrokerReplicaTask:
		return len(t.pendingIntra)
	default:
		return len(t.pendingLeader)
	}
}

// Finished returns the tasks of the given type that reached a terminal
// state.
func (t *Tracker) Finished(taskType TaskType) []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []*Task{}
	for _, task := range t.done {
		if task.Type == taskType {
			out = append(out, task)
		}
	}
	return out
}

// AllPendingCancelled returns the tasks still PENDING for the given type;
// used to report "cancelled" tasks after a forced stop.
func (t *Tracker) AllPendingCancelled(taskType TaskType) []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch taskType {
	case InterBrokerReplicaTask:
		return append([]*Task{}, t.pendingInter...)
	case IntraBrokerReplicaTask:
		return append([]*Task{}, t.pendingIntra...)
	default:
		return append([]*Task{}, t.pendingLeader...)
	}
}

// SetCapInter, SetCapIntra, SetCapLeader dynamically adjust the per-type
// concurrency caps; changes take effect on the next batch.
func (t *Tracker) SetCapInter(n int32)  { t.interCap.Store(n) }
func (t *Tracker) SetCapIntra(n int32)  { t.intraCap.Store(n) }
func (t *Tracker) SetCapLeader(n int32) { t.leaderCap.Store(n) }

func (t *Tracker) CapInter() int32  { return t.interCap.Load() }
func (t *Tracker) CapIntra() int32  { return t.intraCap.Load() }
func (t *Tracker) CapLeader() int32 { return t.leaderCap.Load() }
