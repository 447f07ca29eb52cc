package executor

// TaskCounts summarizes one task type's lifecycle counts at a point in time.
type TaskCounts struct {
	Pending    int
	InProgress int
	Completed  int
	Aborting   int
	Aborted    int
	Dead       int
}

// StatusSnapshot is an immutable value object describing the controller's
// state when it was taken. Each field is read on its own from the session's
// atomics or the tracker's lock-protected accessors; the fields are not read
// under one common lock, so two of them may reflect slightly different
// instants.
type StatusSnapshot struct {
	Phase         Phase
	UUID          string
	ExecutionMode ExecutionMode
	StopSignal    StopSignal
	StoppedByUser bool

	InterBrokerCap  int32
	IntraBrokerCap  int32
	LeaderCap       int32
	AdjusterEnabled bool

	InterBroker TaskCounts
	IntraBroker TaskCounts
	Leader      TaskCounts

	Reason string
}

func countTasks(inProgress, finished, pending []*Task) TaskCounts {
	c := TaskCounts{Pending: len(pending)}
	for _, t := range inProgress {
		switch t.State() {
		case InProgress:
			c.InProgress++
		case Aborting:
			c.Aborting++
		}
	}
	for _, t := range finished {
		switch t.State() {
		case Completed:
			c.Completed++
		case Aborted:
			c.Aborted++
		case Dead:
			c.Dead++
		}
	}
	return c
}

// buildSnapshot assembles a StatusSnapshot from the current session and
// tracker state. It must be called with the controller's single-writer
// discipline already in place for the tracker reads to be coherent, or with
// the tracker's own lock-protected accessors as used here.
func buildSnapshot(s *session, tracker *Tracker, adjusterEnabled bool) StatusSnapshot {
	inter := InterBrokerReplicaTask
	intra := IntraBrokerReplicaTask
	leader := LeaderTask

	return StatusSnapshot{
		Phase:           s.Phase(),
		UUID:            s.UUID(),
		ExecutionMode:   ExecutionMode(s.executionMode.Load()),
		StopSignal:      s.StopSignal(),
		StoppedByUser:   s.StoppedByUser(),
		InterBrokerCap:  tracker.CapInter(),
		IntraBrokerCap:  tracker.CapIntra(),
		LeaderCap:       tracker.CapLeader(),
		AdjusterEnabled: adjusterEnabled,
		InterBroker: countTasks(
			tracker.InProgress(&inter),
			tracker.Finished(inter),
			tracker.AllPendingCancelled(inter),
		),
		IntraBroker: countTasks(
			tracker.InProgress(&intra),
			tracker.Finished(intra),
			tracker.AllPendingCancelled(intra),
		),
		Leader: countTasks(
			tracker.InProgress(&leader),
			tracker.Finished(leader),
			tracker.AllPendingCancelled(leader),
		),
		Reason: s.ReasonProvider()(),
	}
}
