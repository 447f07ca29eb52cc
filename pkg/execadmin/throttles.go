package execadmin

import (
	"context"
	"fmt"
	"sort"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/topicctl/pkg/admin"
	"github.com/segmentio/topicctl/pkg/executor"
	"github.com/sirupsen/logrus"
)

// ThrottledAdminClient implements executor.ThrottleHelper by reusing
// admin.Client's config-update calls and the replication-throttle helpers in
// pkg/admin/throttles.go, the same way pkg/apply.updatePlacementRunner sets
// and clears throttles around a batch of partition moves.
type ThrottledAdminClient struct {
	client        admin.Client
	throttleBytes int64
	log           logrus.FieldLogger
}

// NewThrottledAdminClient wraps an admin.Client. throttleBytes is the
// per-broker replication rate limit (bytes/sec) applied to any broker
// participating in an in-flight move; 0 leaves broker-level rate unthrottled
// and only sets the leader/follower replica lists.
func NewThrottledAdminClient(client admin.Client, throttleBytes int64, log logrus.FieldLogger) *ThrottledAdminClient {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ThrottledAdminClient{client: client, throttleBytes: throttleBytes, log: log}
}

// SetThrottles applies leader/follower partition throttles (and, if
// configured, a broker-level rate cap) for every topic touched by the
// argument proposals.
func (t *ThrottledAdminClient) SetThrottles(ctx context.Context, proposals []*executor.Proposal) error {
	byTopic := map[string][]*executor.Proposal{}
	for _, p := range proposals {
		byTopic[p.Topic] = append(byTopic[p.Topic], p)
	}

	allBrokers := map[int]struct{}{}

	for topic, topicProposals := range byTopic {
		curr, desired := assignmentPairs(topicProposals)

		leaderThrottles := admin.LeaderPartitionThrottles(curr, desired)
		followerThrottles := admin.FollowerPartitionThrottles(curr, desired)

		entries := admin.PartitionThrottleConfigEntries(leaderThrottles, followerThrottles)
		if len(entries) == 0 {
			continue
		}

		if _, err := t.client.UpdateTopicConfig(ctx, topic, entries, false); err != nil {
			return fmt.Errorf("failed to set partition throttles on topic %s: %w", topic, err)
		}

		for _, throttle := range leaderThrottles {
			allBrokers[throttle.Broker] = struct{}{}
		}
		for _, throttle := range followerThrottles {
			allBrokers[throttle.Broker] = struct{}{}
		}
	}

	if t.throttleBytes <= 0 || len(allBrokers) == 0 {
		return nil
	}

	brokerIDs := make([]int, 0, len(allBrokers))
	for id := range allBrokers {
		brokerIDs = append(brokerIDs, id)
	}
	sort.Ints(brokerIDs)

	throttle := admin.BrokerThrottle{ThrottleBytes: t.throttleBytes}
	for _, id := range brokerIDs {
		throttle.Broker = id
		if _, err := t.client.UpdateBrokerConfig(ctx, id, throttle.ConfigEntries(), false); err != nil {
			return fmt.Errorf("failed to set broker throttle on broker %d: %w", id, err)
		}
	}
	return nil
}

// ClearThrottles removes throttle config from any topic/broker that no
// longer has a task in flight, leaving throttles in place for topics and
// brokers still being moved.
func (t *ThrottledAdminClient) ClearThrottles(
	ctx context.Context,
	completed []*executor.Task,
	stillInProgress []*executor.Task,
) error {
	stillTopics := map[string]struct{}{}
	stillBrokers := map[int]struct{}{}
	for _, task := range stillInProgress {
		stillTopics[task.Proposal.Topic] = struct{}{}
		for _, r := range task.Proposal.CurrentReplicas {
			stillBrokers[r] = struct{}{}
		}
		for _, r := range task.Proposal.TargetReplicas {
			stillBrokers[r] = struct{}{}
		}
	}

	doneTopics := map[string]struct{}{}
	doneBrokers := map[int]struct{}{}
	for _, task := range completed {
		doneTopics[task.Proposal.Topic] = struct{}{}
		for _, r := range task.Proposal.CurrentReplicas {
			doneBrokers[r] = struct{}{}
		}
		for _, r := range task.Proposal.TargetReplicas {
			doneBrokers[r] = struct{}{}
		}
	}

	clearEntries := []kafka.ConfigEntry{
		{ConfigName: admin.LeaderReplicasThrottledKey, ConfigValue: ""},
		{ConfigName: admin.FollowerReplicasThrottledKey, ConfigValue: ""},
	}
	for topic := range doneTopics {
		if _, ok := stillTopics[topic]; ok {
			continue
		}
		if _, err := t.client.UpdateTopicConfig(ctx, topic, clearEntries, true); err != nil {
			return fmt.Errorf("failed to clear partition throttles on topic %s: %w", topic, err)
		}
	}

	if t.throttleBytes <= 0 {
		return nil
	}

	clearBrokerEntries := []kafka.ConfigEntry{
		{ConfigName: admin.LeaderThrottledKey, ConfigValue: ""},
		{ConfigName: admin.FollowerThrottledKey, ConfigValue: ""},
	}
	for broker := range doneBrokers {
		if _, ok := stillBrokers[broker]; ok {
			continue
		}
		if _, err := t.client.UpdateBrokerConfig(ctx, broker, clearBrokerEntries, true); err != nil {
			return fmt.Errorf("failed to clear broker throttle on broker %d: %w", broker, err)
		}
	}
	return nil
}

// assignmentPairs renders a topic's proposals as aligned curr/desired
// PartitionAssignment slices, sorted by partition index, the shape
// admin.LeaderPartitionThrottles/FollowerPartitionThrottles expect.
func assignmentPairs(proposals []*executor.Proposal) ([]admin.PartitionAssignment, []admin.PartitionAssignment) {
	sorted := make([]*executor.Proposal, len(proposals))
	copy(sorted, proposals)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].PartitionIndex < sorted[b].PartitionIndex
	})

	curr := make([]admin.PartitionAssignment, len(sorted))
	desired := make([]admin.PartitionAssignment, len(sorted))
	for i, p := range sorted {
		curr[i] = admin.PartitionAssignment{ID: p.PartitionIndex, Replicas: p.CurrentReplicas}
		desired[i] = admin.PartitionAssignment{ID: p.PartitionIndex, Replicas: p.TargetReplicas}
	}
	return curr, desired
}
