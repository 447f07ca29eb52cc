package executor

import "fmt"

// Proposal is the declarative description of a target placement and/or
// preferred leader for a single partition. Proposals are produced by an
// external optimizer; the executor only consumes them.
type Proposal struct {
	// Topic and PartitionIndex identify the partition this proposal applies to.
	Topic          string
	PartitionIndex int

	// CurrentReplicas is the replica set as currently observed in cluster
	// metadata, in broker order. The first entry is the current leader.
	CurrentReplicas []int

	// TargetReplicas is the desired replica set, in broker order. The first
	// entry is the desired (preferred) leader.
	TargetReplicas []int

	// TargetLogDirs optionally maps a brokerID that keeps its replica to the
	// log directory it should be moved to on that broker (intra-broker move).
	TargetLogDirs map[int]string

	// DataSizeMB is the estimated size of the partition's data, used by
	// ordering strategies; DefaultOrdering moves larger partitions first.
	DataSizeMB float64
}

// String renders the proposal for logging.
func (p *Proposal) String() string {
	return fmt.Sprintf(
		"%s-%d: %v -> %v",
		p.Topic,
		p.PartitionIndex,
		p.CurrentReplicas,
		p.TargetReplicas,
	)
}

// PartitionKey is the identity used to group tasks derived from the same
// partition.
func (p *Proposal) PartitionKey() string {
	return fmt.Sprintf("%s-%d", p.Topic, p.PartitionIndex)
}

// CurrentLeader returns the current leader broker, or -1 if CurrentReplicas
// is empty.
func (p *Proposal) CurrentLeader() int {
	if len(p.CurrentReplicas) == 0 {
		return -1
	}
	return p.CurrentReplicas[0]
}

// TargetLeader returns the target (preferred) leader broker, or -1 if
// TargetReplicas is empty.
func (p *Proposal) TargetLeader() int {
	if len(p.TargetReplicas) == 0 {
		return -1
	}
	return p.TargetReplicas[0]
}

// SameReplicaSet returns whether the current and target replica sets contain
// the same brokers, regardless of order.
func (p *Proposal) SameReplicaSet() bool {
	return sameElements(p.CurrentReplicas, p.TargetReplicas)
}

// NeedsLeaderMove returns whether this proposal requires a preferred leader
// election (replicas unchanged, leader differs).
func (p *Proposal) NeedsLeaderMove() bool {
	return p.SameReplicaSet() && p.CurrentLeader() != p.TargetLeader()
}

// SourceBrokers returns the brokers present in CurrentReplicas but not in
// TargetReplicas (i.e. replicas being removed from this partition).
func (p *Proposal) SourceBrokers() []int {
	return setDifference(p.CurrentReplicas, p.TargetReplicas)
}

// DestBrokers returns the brokers present in TargetReplicas but not in
// CurrentReplicas (i.e. replicas being added to this partition).
func (p *Proposal) DestBrokers() []int {
	return setDifference(p.TargetReplicas, p.CurrentReplicas)
}

// NeedsInterBrokerMove returns whether this proposal requires moving replicas
// across brokers.
func (p *Proposal) NeedsInterBrokerMove() bool {
	return len(p.SourceBrokers()) > 0 || len(p.DestBrokers()) > 0
}

// IntraBrokerMoves returns the brokers that keep their replica but must move
// it to a different local log directory.
func (p *Proposal) IntraBrokerMoves() []int {
	if len(p.TargetLogDirs) == 0 {
		return nil
	}

	retained := setIntersection(p.CurrentReplicas, p.TargetReplicas)
	brokers := []int{}
	for _, brokerID := range retained {
		if _, ok := p.TargetLogDirs[brokerID]; ok {
			brokers = append(brokers, brokerID)
		}
	}
	return brokers
}

func sameElements(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	counts := map[int]int{}
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

func setDifference(a, b []int) []int {
	bSet := map[int]struct{}{}
	for _, v := range b {
		bSet[v] = struct{}{}
	}
	out := []int{}
	for _, v := range a {
		if _, ok := bSet[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

func setIntersection(a, b []int) []int {
	bSet := map[int]struct{}{}
	for _, v := range b {
		bSet[v] = struct{}{}
	}
	out := []int{}
	for _, v := range a {
		if _, ok := bSet[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
