package executor

import "time"

// Timing constants carried over from the source implementation;
// kept as named constants rather than inlined magic numbers.
const (
	// MinProgressCheckIntervalMs is the hard floor enforced on
	// progressCheckIntervalMs.
	MinProgressCheckIntervalMs int64 = 5000

	// SlowTaskAlertBackoffMs is the fixed backoff between slow-task alerts.
	// It is measured per task (from Task.SlowAlertedAtMs), so each slow task
	// raises its own alerts; there is no executor-wide backoff.
	SlowTaskAlertBackoffMs int64 = 60000

	// FutureErrorVerificationTimeoutMs bounds how long the supervisor will
	// block probing a submission's future for an INVALID_REPLICA_ASSIGNMENT
	// class error.
	FutureErrorVerificationTimeoutMs int64 = 10000
)

// Watermarks configures the AIMD concurrency adjuster's thresholds, exposed
// as typed, documented configuration rather than inlined constants.
type Watermarks struct {
	// HighCPU triggers a multiplicative decrease if any broker's CPU
	// utilization (0-100) is at or above this value.
	HighCPU float64
	// LowCPU is the threshold all brokers must be strictly below for an
	// additive increase to be recommended.
	LowCPU float64

	// HighRequestQueueTimeMs triggers a multiplicative decrease if any
	// broker's average request-queue time is at or above this value.
	HighRequestQueueTimeMs float64
	// LowRequestQueueTimeMs is the threshold all brokers must be strictly
	// below for an additive increase to be recommended.
	LowRequestQueueTimeMs float64

	// LowBandwidthUtilization is the threshold all brokers must be strictly
	// below, in addition to the other low-watermarks, before recommending an
	// additive increase.
	LowBandwidthUtilization float64
	// HighBandwidthUtilization triggers a multiplicative decrease if any
	// broker is at or above this value.
	HighBandwidthUtilization float64
}

// DefaultWatermarks returns conservative defaults modeled on the kind of
// thresholds a Kafka cluster operator would set for CPU/queue-time/bandwidth
// based admission control.
func DefaultWatermarks() Watermarks {
	return Watermarks{
		HighCPU:                  80,
		LowCPU:                   30,
		HighRequestQueueTimeMs:   500,
		LowRequestQueueTimeMs:    50,
		LowBandwidthUtilization:  40,
		HighBandwidthUtilization: 85,
	}
}

// Config holds the configuration keys recognized by the executor.
type Config struct {
	// ProgressCheckInterval is the poll period for the supervisor loop.
	// NewController keeps a value below MinProgressCheckIntervalMs as given;
	// Controller.SetProgressCheckInterval rejects values below that floor.
	ProgressCheckInterval time.Duration

	// LeaderMovementTimeout bounds how long a LEADER task may sit in
	// IN_PROGRESS before it is declared DEAD.
	LeaderMovementTimeout time.Duration

	// SlowTaskAlertThreshold bounds how long any in-progress task may run
	// before a slow-task alert is raised; independent of
	// LeaderMovementTimeout, which only governs LEADER task deadness.
	SlowTaskAlertThreshold time.Duration

	// DemotionHistoryRetention and RemovalHistoryRetention bound how long a
	// brokerId stays in the respective History store.
	DemotionHistoryRetention time.Duration
	RemovalHistoryRetention  time.Duration

	// ConcurrencyAdjusterEnabled is the default for the inter-broker AIMD
	// adjuster; it can be overridden at runtime via
	// Controller.SetConcurrencyAdjuster.
	ConcurrencyAdjusterEnabled bool
	// ConcurrencyAdjusterInterval is the tick period of the AIMD adjuster.
	ConcurrencyAdjusterInterval time.Duration
	// ConcurrencyAdjusterMaxPartitionMovementsPerBroker is the AIMD ceiling
	//.
	ConcurrencyAdjusterMaxPartitionMovementsPerBroker int
	// ConcurrencyAdjusterWatermarks are the thresholds read by the adjuster.
	ConcurrencyAdjusterWatermarks Watermarks

	// HistorySweepInterval is not read by the executor: no periodic history
	// sweep runs. Non-permanent history entries expire through the cache's
	// per-entry TTL, and History.Sweep runs only when a caller invokes it.
	HistorySweepInterval time.Duration

	// FeatureReexecuteDroppedTasks gates the dropped-task resubmission pass
	// behind a flag, per the TODO the source carries on
	// maybeReexecuteInterBrokerReplicaActions.
	FeatureReexecuteDroppedTasks bool

	// ZookeeperSecurityEnabled is informational passthrough to the
	// coordination-store client.
	ZookeeperSecurityEnabled bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		ProgressCheckInterval:      10 * time.Second,
		LeaderMovementTimeout:      10 * time.Minute,
		SlowTaskAlertThreshold:     10 * time.Minute,
		DemotionHistoryRetention:   15 * time.Minute,
		RemovalHistoryRetention:    15 * time.Minute,
		ConcurrencyAdjusterEnabled: true,
		ConcurrencyAdjusterInterval: 5 * time.Minute,
		ConcurrencyAdjusterMaxPartitionMovementsPerBroker: 10,
		ConcurrencyAdjusterWatermarks:                     DefaultWatermarks(),
		HistorySweepInterval:                              5 * time.Minute,
		FeatureReexecuteDroppedTasks:                      true,
	}
}

// clampProgressCheckInterval enforces the hard floor.
func clampProgressCheckInterval(d time.Duration) (time.Duration, error) {
	if d.Milliseconds() < MinProgressCheckIntervalMs {
		return 0, &IllegalArgumentError{
			Message: "progressCheckInterval must be >= 5000ms",
		}
	}
	return d, nil
}
