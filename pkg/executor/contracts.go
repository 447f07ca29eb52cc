package executor

import "context"

// This file defines the external collaborators the executor depends on but
// does not implement.
// Concrete adapters live outside this package (see pkg/execadmin); the
// executor only ever holds an interface view, per the "break cycles with a
// narrow handle" design note.

// ClusterSnapshot is the subset of cluster metadata the executor needs: live
// broker IDs and the observed state of each partition it cares about.
type ClusterSnapshot struct {
	LiveBrokerIDs map[int]struct{}
	Partitions    map[string]PartitionState
}

// PartitionState is the observed replicas/ISR/leader for one partition, or
// Exists=false if the topic/partition has vanished.
type PartitionState struct {
	Exists   bool
	Replicas []int
	ISR      []int
	Leader   int
}

func (c *ClusterSnapshot) partition(key string) (PartitionState, bool) {
	if c == nil || c.Partitions == nil {
		return PartitionState{}, false
	}
	ps, ok := c.Partitions[key]
	return ps, ok
}

func (c *ClusterSnapshot) isLive(brokerID int) bool {
	if c == nil {
		return false
	}
	_, ok := c.LiveBrokerIDs[brokerID]
	return ok
}

// LogDirEntry describes a single replica's current and (if moving)
// in-progress future log directory on a broker, as reported by
// describeLogDirs.
type LogDirEntry struct {
	CurrentDir string
	FutureDir  string // empty if no move is in flight
}

// MetadataClient refreshes the executor's view of the cluster.
type MetadataClient interface {
	Refresh(ctx context.Context) (*ClusterSnapshot, error)

	// DescribeLogDirs returns, for each (broker, topic, partition) the
	// in-progress tasks care about, the current/future log directory.
	DescribeLogDirs(
		ctx context.Context,
		brokerIDs []int,
	) (map[int]map[string]LogDirEntry, error)
}

// SubmissionResult is returned per-partition when submitting inter-broker or
// intra-broker moves; Err is set if the submission itself was rejected
// synchronously, and ErrClass is populated for the supervisor's dead-task
// probe.
type SubmissionResult struct {
	Err      error
	ErrClass string // e.g. "INVALID_REPLICA_ASSIGNMENT"
}

// AdminAPI is the cluster admin surface the executor submits work through
// and polls for drift.
type AdminAPI interface {
	SubmitReplicaReassignments(ctx context.Context, tasks []*Task) (map[string]*SubmissionResult, error)
	ListOngoingReassignments(ctx context.Context) (map[string]struct{}, error)

	// ProbeSubmissionError blocks up to FutureErrorVerificationTimeoutMs
	// waiting to see whether a prior submission surfaced an
	// INVALID_REPLICA_ASSIGNMENT-class error.
	ProbeSubmissionError(ctx context.Context, partitionKey string) (errClass string, err error)
}

// CoordinationStore is the coordination-store (e.g. ZooKeeper) surface used
// for leader elections and the force-stop intervention.
type CoordinationStore interface {
	ListOngoingPreferredLeaderElections(ctx context.Context) (map[string]struct{}, error)
	TriggerPreferredLeaderElection(ctx context.Context, tasks []*Task) error

	// DeleteReassignmentMarkers forces the cluster controller to abandon
	// in-flight reassignments; only called on a forced stop.
	DeleteReassignmentMarkers(ctx context.Context) error

	HasOngoingPartitionReassignment(ctx context.Context) (bool, error)
	HasOngoingIntraBrokerMove(ctx context.Context) (bool, error)
	HasOngoingLeaderElection(ctx context.Context) (bool, error)
}

// SamplingMode is the granularity the load monitor should sample at while an
// execution is in flight.
type SamplingMode int

const (
	// SamplingAll is the default, full-fidelity sampling mode.
	SamplingAll SamplingMode = iota
	// SamplingBrokerMetricsOnly pauses partition-level sampling to avoid
	// accuracy loss while replicas are moving.
	SamplingBrokerMetricsOnly
)

// BrokerMetricValues is a per-broker map of metric name to value, as
// returned by the load monitor.
type BrokerMetricValues map[int]map[string]float64

// LoadMonitor is the external load-monitoring collaborator. A nil
// LoadMonitor is valid and simply disables the AIMD adjuster.
type LoadMonitor interface {
	CurrentBrokerMetricValues(ctx context.Context) (BrokerMetricValues, error)
	SetSamplingMode(ctx context.Context, mode SamplingMode) error
	PauseSampling(ctx context.Context, reason string, force bool) error
	ResumeSampling(ctx context.Context, reason string) error
}

// ThrottleHelper sets/clears the per-topic replication throttle used while
// inter-broker tasks are in flight.
type ThrottleHelper interface {
	SetThrottles(ctx context.Context, proposals []*Proposal) error
	ClearThrottles(ctx context.Context, completed []*Task, stillInProgress []*Task) error
}

// Notifier sends operator-facing messages.
type Notifier interface {
	SendNotification(message string)
	SendAlert(message string)
}

// AnomalyDetector is notified about self-healing batch lifecycle events
//.
type AnomalyDetector interface {
	ClearOngoingDetectionTime()
	ResetUnfixableGoals()
	MarkSelfHealingFinished(uuid string)
}

// UserTaskManager is notified about user-triggered batch lifecycle events;
// it is optional.
type UserTaskManager interface {
	MarkBegan(uuid string)
	MarkFinished(uuid string, wasStoppedOrErrored bool)
}
