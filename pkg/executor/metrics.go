package executor

import "github.com/prometheus/client_golang/prometheus"

// metricsSet holds the gauges the Controller publishes. These
// mirror the source implementation's sensors but are exported as standard
// Prometheus gauges rather than an internal metrics registry, per the
// ambient-stack expansion.
type metricsSet struct {
	stopped              prometheus.Gauge
	stoppedByUser         prometheus.Gauge
	startedInAssigner     prometheus.Gauge
	startedInNonAssigner  prometheus.Gauge
	interBrokerCap        prometheus.Gauge
	intraBrokerCap        prometheus.Gauge
	leaderCap             prometheus.Gauge
	inProgress            *prometheus.GaugeVec
}

func newMetricsSet(registerer prometheus.Registerer) *metricsSet {
	m := &metricsSet{
		stopped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "execution_stopped",
			Help:      "1 if the most recent execution ended via a stop request.",
		}),
		stoppedByUser: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "execution_stopped_by_user",
			Help:      "1 if the most recent stop request came from a user rather than an automated caller.",
		}),
		startedInAssigner: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "started_in_assigner_mode",
			Help:      "1 if the in-flight (or most recent) execution was started in assigner mode.",
		}),
		startedInNonAssigner: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "started_in_non_assigner_mode",
			Help:      "1 if the in-flight (or most recent) execution was started in non-assigner mode.",
		}),
		interBrokerCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "inter_broker_partition_movement_concurrency",
			Help:      "Current inter-broker replica movement concurrency cap.",
		}),
		intraBrokerCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "intra_broker_partition_movement_concurrency",
			Help:      "Current intra-broker replica movement concurrency cap.",
		}),
		leaderCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "leader_movement_concurrency",
			Help:      "Current leader movement concurrency cap.",
		}),
		inProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "executor",
			Name:      "tasks_in_progress",
			Help:      "Number of tasks currently in progress, by type.",
		}, []string{"type"}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.stopped,
			m.stoppedByUser,
			m.startedInAssigner,
			m.startedInNonAssigner,
			m.interBrokerCap,
			m.intraBrokerCap,
			m.leaderCap,
			m.inProgress,
		)
	}

	return m
}

func (m *metricsSet) recordStarted(mode ExecutionMode) {
	if mode == AssignerMode {
		m.startedInAssigner.Set(1)
		m.startedInNonAssigner.Set(0)
	} else {
		m.startedInAssigner.Set(0)
		m.startedInNonAssigner.Set(1)
	}
}

func (m *metricsSet) recordStopped(byUser bool) {
	m.stopped.Set(1)
	if byUser {
		m.stoppedByUser.Set(1)
	} else {
		m.stoppedByUser.Set(0)
	}
}

func (m *metricsSet) recordCompleted() {
	m.stopped.Set(0)
	m.stoppedByUser.Set(0)
}

func (m *metricsSet) recordCaps(inter, intra, leader int32) {
	m.interBrokerCap.Set(float64(inter))
	m.intraBrokerCap.Set(float64(intra))
	m.leaderCap.Set(float64(leader))
}

func (m *metricsSet) recordInProgress(snapshot StatusSnapshot) {
	m.inProgress.WithLabelValues("inter-broker").Set(float64(snapshot.InterBroker.InProgress))
	m.inProgress.WithLabelValues("intra-broker").Set(float64(snapshot.IntraBroker.InProgress))
	m.inProgress.WithLabelValues("leader").Set(float64(snapshot.Leader.InProgress))
}
