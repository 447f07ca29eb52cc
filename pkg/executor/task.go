package executor

import (
	"fmt"
	"sync"
)

// TaskType identifies which of the three kinds of work a Task performs.
type TaskType int

const (
	// InterBrokerReplicaTask moves a replica from one broker to another.
	InterBrokerReplicaTask TaskType = iota
	// IntraBrokerReplicaTask moves a replica to a different log directory on
	// the same broker.
	IntraBrokerReplicaTask
	// LeaderTask triggers a preferred leader election.
	LeaderTask
)

// String renders the task type for logging.
func (t TaskType) String() string {
	switch t {
	case InterBrokerReplicaTask:
		return "inter-broker"
	case IntraBrokerReplicaTask:
		return "intra-broker"
	case LeaderTask:
		return "leader"
	default:
		return "unknown"
	}
}

// TaskState is a task's position in the lifecycle described:
//
//	PENDING -> IN_PROGRESS -> {COMPLETED | ABORTING -> ABORTED | DEAD}
type TaskState int

const (
	// Pending tasks have been materialized from a proposal but not yet handed
	// out by the tracker for submission.
	Pending TaskState = iota
	// InProgress tasks have been submitted and are being observed.
	InProgress
	// Completed tasks reached their goal state in the cluster.
	Completed
	// Aborting tasks are being cancelled (partition vanished, or a cancel was
	// requested) and are waiting to settle.
	Aborting
	// Aborted tasks have settled after an abort request.
	Aborted
	// Dead tasks hit a fatal condition and will never complete.
	Dead
)

// String renders the task state for logging and summaries.
func (s TaskState) String() string {
	switch s {
	case Pending:
		return "pending"
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	case Aborting:
		return "aborting"
	case Aborted:
		return "aborted"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// IsTerminal returns whether the state is sticky (no further transitions).
func (s TaskState) IsTerminal() bool {
	return s == Completed || s == Dead || s == Aborted
}

// errIllegalTransition is returned when a caller asks for a transition that
// the state machine does not allow.
type errIllegalTransition struct {
	taskType  TaskType
	id        int64
	fromState TaskState
	toState   TaskState
}

func (e *errIllegalTransition) Error() string {
	return fmt.Sprintf(
		"task %d (%s): illegal transition %s -> %s",
		e.id, e.taskType, e.fromState, e.toState,
	)
}

// legalTransitions enumerates the only edges the task state machine allows.
var legalTransitions = map[TaskState]map[TaskState]bool{
	Pending:    {InProgress: true},
	InProgress: {Completed: true, Aborting: true, Dead: true},
	Aborting:   {Aborted: true, Dead: true},
	Completed:  {},
	Aborted:    {},
	Dead:       {},
}

// Task is the executable unit derived from a Proposal: one of an inter-broker
// replica move, an intra-broker replica move, or a leader election.
type Task struct {
	// ExecutionID is monotonic within a batch.
	ExecutionID int64
	Type        TaskType
	Proposal    *Proposal

	// BrokerID is the destination broker for intra-broker tasks; it is
	// irrelevant (left at zero) for the other two task types.
	BrokerID int

	mu              sync.Mutex
	state           TaskState
	startTimeMs     int64
	slowAlertedAtMs int64
}

// newTask constructs a Pending task.
func newTask(id int64, taskType TaskType, proposal *Proposal, brokerID int) *Task {
	return &Task{
		ExecutionID: id,
		Type:        taskType,
		Proposal:    proposal,
		BrokerID:    brokerID,
		state:       Pending,
	}
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StartTimeMs returns the time the task was moved to IN_PROGRESS, or zero if
// it has not started yet.
func (t *Task) StartTimeMs() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startTimeMs
}

// SlowAlertedAtMs returns the last time a slow-task alert was raised for this
// task, or zero if none has been; the slow-task alert backoff is measured
// from this per-task timestamp.
func (t *Task) SlowAlertedAtMs() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slowAlertedAtMs
}

func (t *Task) setSlowAlertedAtMs(nowMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slowAlertedAtMs = nowMs
}

// transition moves the task to newState if the edge is legal, stamping
// startTimeMs on the PENDING->IN_PROGRESS edge. It returns an error
// describing the disallowed edge otherwise; terminal states are sticky.
func (t *Task) transition(newState TaskState, nowMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == newState {
		return nil
	}

	if !legalTransitions[t.state][newState] {
		return &errIllegalTransition{fromState: t.state, toState: newState, id: t.ExecutionID, taskType: t.Type}
	}

	if t.state == Pending && newState == InProgress {
		t.startTimeMs = nowMs
	}

	t.state = newState
	return nil
}

// ResultKey is the key this task's submission result is reported under.
// Inter-broker and leader tasks are keyed by partition alone, since at most
// one of each exists per partition; intra-broker tasks are additionally
// keyed by broker, since a partition can have one intra-broker move per
// broker in flight at once.
func (t *Task) ResultKey() string {
	if t.Type == IntraBrokerReplicaTask {
		return fmt.Sprintf("%s/%d", t.Proposal.PartitionKey(), t.BrokerID)
	}
	return t.Proposal.PartitionKey()
}

// CapKey returns the set of brokers this task's cap-check must consider, per
// task type: inter-broker considers both the source and destination brokers
// it touches, intra-broker considers its single broker, and leader tasks
// have no per-broker key (the cap is global).
func (t *Task) CapKey() []int {
	switch t.Type {
	case InterBrokerReplicaTask:
		brokers := append([]int{}, t.Proposal.SourceBrokers()...)
		brokers = append(brokers, t.Proposal.DestBrokers()...)
		return brokers
	case IntraBrokerReplicaTask:
		return []int{t.BrokerID}
	default:
		return nil
	}
}
