package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposalPartitionKey(t *testing.T) {
	p := &Proposal{Topic: "orders", PartitionIndex: 4}
	assert.Equal(t, "orders-4", p.PartitionKey())
}

func TestProposalLeadersAndReplicaSets(t *testing.T) {
	testCases := []struct {
		description   string
		proposal      *Proposal
		sameReplicas  bool
		needsLeader   bool
		needsInter    bool
		sourceBrokers []int
		destBrokers   []int
	}{
		{
			description: "no change",
			proposal: &Proposal{
				CurrentReplicas: []int{1, 2, 3},
				TargetReplicas:  []int{1, 2, 3},
			},
			sameReplicas:  true,
			needsLeader:   false,
			needsInter:    false,
			sourceBrokers: []int{},
			destBrokers:   []int{},
		},
		{
			description: "leader change only",
			proposal: &Proposal{
				CurrentReplicas: []int{1, 2, 3},
				TargetReplicas:  []int{2, 1, 3},
			},
			sameReplicas:  true,
			needsLeader:   true,
			needsInter:    false,
			sourceBrokers: []int{},
			destBrokers:   []int{},
		},
		{
			description: "replica swap",
			proposal: &Proposal{
				CurrentReplicas: []int{1, 2, 3},
				TargetReplicas:  []int{1, 2, 4},
			},
			sameReplicas:  false,
			needsLeader:   false,
			needsInter:    true,
			sourceBrokers: []int{3},
			destBrokers:   []int{4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.sameReplicas, tc.proposal.SameReplicaSet())
			assert.Equal(t, tc.needsLeader, tc.proposal.NeedsLeaderMove())
			assert.Equal(t, tc.needsInter, tc.proposal.NeedsInterBrokerMove())
			assert.ElementsMatch(t, tc.sourceBrokers, tc.proposal.SourceBrokers())
			assert.ElementsMatch(t, tc.destBrokers, tc.proposal.DestBrokers())
		})
	}
}

func TestProposalIntraBrokerMoves(t *testing.T) {
	p := &Proposal{
		CurrentReplicas: []int{1, 2, 3},
		TargetReplicas:  []int{1, 2, 4},
		TargetLogDirs: map[int]string{
			1: "/data/d2",
			3: "/data/d2",
		},
	}

	// Broker 3 is leaving the replica set entirely, so it should not be
	// reported as an intra-broker move even though it has a TargetLogDirs
	// entry; broker 1 is retained and does get one.
	assert.Equal(t, []int{1}, p.IntraBrokerMoves())
}

func TestProposalNoLogDirChanges(t *testing.T) {
	p := &Proposal{
		CurrentReplicas: []int{1, 2, 3},
		TargetReplicas:  []int{1, 2, 3},
	}
	assert.Nil(t, p.IntraBrokerMoves())
}
