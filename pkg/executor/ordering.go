package executor

import "sort"

// OrderingStrategy determines the deterministic emission order tasks of a
// given type are handed out in. Implementations must be total
// and deterministic for identical input.
type OrderingStrategy interface {
	// Less reports whether task a should be emitted before task b.
	Less(a, b *Task, cluster *ClusterSnapshot) bool
}

// DefaultOrdering prioritizes partitions with a dead/offline replica (these
// are the most urgent to fix), then larger partitions first (to start the
// slowest movements earliest), then breaks ties by partition id.
type DefaultOrdering struct{}

func (DefaultOrdering) Less(a, b *Task, cluster *ClusterSnapshot) bool {
	aUrgent := hasOfflineReplica(a, cluster)
	bUrgent := hasOfflineReplica(b, cluster)
	if aUrgent != bUrgent {
		return aUrgent
	}

	if a.Proposal.DataSizeMB != b.Proposal.DataSizeMB {
		return a.Proposal.DataSizeMB > b.Proposal.DataSizeMB
	}

	if a.Proposal.Topic != b.Proposal.Topic {
		return a.Proposal.Topic < b.Proposal.Topic
	}
	return a.Proposal.PartitionIndex < b.Proposal.PartitionIndex
}

func hasOfflineReplica(t *Task, cluster *ClusterSnapshot) bool {
	if cluster == nil {
		return false
	}
	for _, brokerID := range t.Proposal.CurrentReplicas {
		if !cluster.isLive(brokerID) {
			return true
		}
	}
	return false
}

// sortTasks orders tasks in place according to the given strategy, falling
// back to execution id for any residual ties to guarantee a total order.
func sortTasks(tasks []*Task, strategy OrderingStrategy, cluster *ClusterSnapshot) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if strategy.Less(a, b, cluster) {
			return true
		}
		if strategy.Less(b, a, cluster) {
			return false
		}
		return a.ExecutionID < b.ExecutionID
	})
}
