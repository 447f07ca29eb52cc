package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTransitionLifecycle(t *testing.T) {
	task := newTask(1, InterBrokerReplicaTask, &Proposal{Topic: "orders", PartitionIndex: 0}, 0)
	assert.Equal(t, Pending, task.State())

	require.NoError(t, task.transition(InProgress, 100))
	assert.Equal(t, InProgress, task.State())
	assert.Equal(t, int64(100), task.StartTimeMs())

	require.NoError(t, task.transition(Completed, 200))
	assert.Equal(t, Completed, task.State())
	assert.True(t, task.State().IsTerminal())
}

func TestTaskTransitionIllegalEdges(t *testing.T) {
	task := newTask(1, LeaderTask, &Proposal{Topic: "orders", PartitionIndex: 0}, 0)

	err := task.transition(Completed, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal transition")

	require.NoError(t, task.transition(InProgress, 0))
	require.NoError(t, task.transition(Dead, 10))

	// Terminal states are sticky: moving DEAD -> ABORTED is illegal.
	err = task.transition(Aborted, 20)
	require.Error(t, err)
}

func TestTaskTransitionNoopSameState(t *testing.T) {
	task := newTask(1, LeaderTask, &Proposal{}, 0)
	require.NoError(t, task.transition(Pending, 0))
	assert.Equal(t, Pending, task.State())
}

func TestTaskResultKey(t *testing.T) {
	proposal := &Proposal{Topic: "orders", PartitionIndex: 2}

	inter := newTask(1, InterBrokerReplicaTask, proposal, 0)
	assert.Equal(t, "orders-2", inter.ResultKey())

	leader := newTask(2, LeaderTask, proposal, 0)
	assert.Equal(t, "orders-2", leader.ResultKey())

	intraA := newTask(3, IntraBrokerReplicaTask, proposal, 5)
	intraB := newTask(4, IntraBrokerReplicaTask, proposal, 6)
	assert.Equal(t, "orders-2/5", intraA.ResultKey())
	assert.Equal(t, "orders-2/6", intraB.ResultKey())
	assert.NotEqual(t, intraA.ResultKey(), intraB.ResultKey())
}

func TestTaskCapKey(t *testing.T) {
	proposal := &Proposal{
		CurrentReplicas: []int{1, 2, 3},
		TargetReplicas:  []int{1, 2, 4},
	}

	inter := newTask(1, InterBrokerReplicaTask, proposal, 0)
	assert.ElementsMatch(t, []int{3, 4}, inter.CapKey())

	intra := newTask(2, IntraBrokerReplicaTask, proposal, 7)
	assert.Equal(t, []int{7}, intra.CapKey())

	leader := newTask(3, LeaderTask, proposal, 0)
	assert.Nil(t, leader.CapKey())
}
