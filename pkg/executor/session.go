package executor

import (
	"go.uber.org/atomic"
)

// StopSignal is the three-level escalation the supervisor loop watches for.
// Values are ordered so the signal can only escalate:
// NONE < GRACEFUL < FORCED.
type StopSignal int32

const (
	// StopNone means no stop has been requested.
	StopNone StopSignal = iota
	// StopGraceful cancels inter-broker work (with rollback) and drains
	// intra-broker/leader work.
	StopGraceful
	// StopForced cancels everything in flight and triggers the
	// coordination-store intervention.
	StopForced
)

func (s StopSignal) String() string {
	switch s {
	case StopNone:
		return "none"
	case StopGraceful:
		return "graceful"
	case StopForced:
		return "forced"
	default:
		return "unknown"
	}
}

// Phase is the supervisor's top-level state, distinct from a Task's state.
type Phase int32

const (
	// NoTask means there is no batch in flight.
	NoTask Phase = iota
	// Proposing means a caller has reserved the controller but has not yet
	// supplied proposals.
	Proposing
	// Starting means proposals were just handed to the tracker and phases
	// are about to begin.
	Starting
	// InterBrokerInProgress is the first phase: replica moves across brokers.
	InterBrokerInProgress
	// IntraBrokerInProgress is the second phase: local directory moves.
	IntraBrokerInProgress
	// LeaderInProgress is the third phase: preferred leader elections.
	LeaderInProgress
	// Stopping means a stop signal is being drained.
	Stopping
)

func (p Phase) String() string {
	switch p {
	case NoTask:
		return "NO_TASK"
	case Proposing:
		return "PROPOSING"
	case Starting:
		return "STARTING"
	case InterBrokerInProgress:
		return "INTER_BROKER_IN_PROGRESS"
	case IntraBrokerInProgress:
		return "INTRA_BROKER_IN_PROGRESS"
	case LeaderInProgress:
		return "LEADER_IN_PROGRESS"
	case Stopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// ExecutionMode records whether a batch was started by the full assigner or
// by the balancing-only path. It is informational only.
type ExecutionMode int32

const (
	// NonAssignerMode is the regular balancing-only execution path.
	NonAssignerMode ExecutionMode = iota
	// AssignerMode is the "Kafka assigner"-style full reassignment path.
	AssignerMode
)

// session holds the process-wide, single-active-batch state described in
//Session flags are atomics so the Controller Facade's setters can
// run on any caller goroutine while the supervisor worker reads them at the
// top of each loop iteration.
type session struct {
	phase               atomic.Int32
	uuid                atomic.String
	hasOngoing          atomic.Bool
	stopSignal          atomic.Int32
	stoppedByUser       atomic.Bool
	executionMode       atomic.Int32
	skipAutoConcurrency atomic.Bool

	reasonProvider atomic.Value // func() string
}

func newSession() *session {
	s := &session{}
	s.phase.Store(int32(NoTask))
	return s
}

func (s *session) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *session) setPhase(p Phase) {
	s.phase.Store(int32(p))
}

func (s *session) UUID() string {
	return s.uuid.Load()
}

func (s *session) setUUID(uuid string) {
	s.uuid.Store(uuid)
}

func (s *session) HasOngoing() bool {
	return s.hasOngoing.Load()
}

func (s *session) StopSignal() StopSignal {
	return StopSignal(s.stopSignal.Load())
}

// SkipAutoConcurrency reports whether the current batch disables the AIMD
// concurrency adjuster (set for demote/remove batches).
func (s *session) SkipAutoConcurrency() bool {
	return s.skipAutoConcurrency.Load()
}

func (s *session) setSkipAutoConcurrency(v bool) {
	s.skipAutoConcurrency.Store(v)
}

// requestStop escalates the stop signal, honoring "cannot downgrade, FORCED
// overrides GRACEFUL". Returns false if the signal was already at least as
// strong as the requested one.
func (s *session) requestStop(sig StopSignal) bool {
	for {
		cur := StopSignal(s.stopSignal.Load())
		if cur >= sig {
			return false
		}
		if s.stopSignal.CAS(int32(cur), int32(sig)) {
			return true
		}
	}
}

func (s *session) resetStopSignal() {
	s.stopSignal.Store(int32(StopNone))
}

func (s *session) StoppedByUser() bool {
	return s.stoppedByUser.Load()
}

func (s *session) ReasonProvider() func() string {
	v := s.reasonProvider.Load()
	if v == nil {
		return func() string { return "" }
	}
	return v.(func() string)
}

func (s *session) reset() {
	s.setPhase(NoTask)
	s.uuid.Store("")
	s.hasOngoing.Store(false)
	s.resetStopSignal()
	s.stoppedByUser.Store(false)
	s.skipAutoConcurrency.Store(false)
}
