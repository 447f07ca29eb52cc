package execadmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt32s(t *testing.T) {
	assert.Equal(t, []int32{1, 2, 3}, toInt32s([]int{1, 2, 3}))
	assert.Equal(t, []int32{}, toInt32s(nil))
}

func TestToInts(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, toInts([]int32{1, 2, 3}))
	assert.Equal(t, []int{}, toInts(nil))
}

func TestErrString(t *testing.T) {
	assert.Equal(t, "", errString(nil))

	msg := "boom"
	assert.Equal(t, "boom", errString(&msg))
}

func TestSplitPartitionKey(t *testing.T) {
	topic, partition, err := splitPartitionKey("orders-0")
	require.NoError(t, err)
	assert.Equal(t, "orders", topic)
	assert.Equal(t, 0, partition)

	topic, partition, err = splitPartitionKey("multi-segment-topic-12")
	require.NoError(t, err)
	assert.Equal(t, "multi-segment-topic", topic)
	assert.Equal(t, 12, partition)

	_, _, err = splitPartitionKey("no-partition-suffix-here-")
	require.Error(t, err)

	_, _, err = splitPartitionKey("noseparator")
	require.Error(t, err)
}
