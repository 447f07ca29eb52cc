package execadmin

import (
	"context"
	"fmt"

	"github.com/segmentio/topicctl/pkg/executor"
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
	"go.uber.org/multierr"
)

// KafkaAdminAPI implements executor.AdminAPI and executor.MetadataClient
// directly against the Kafka admin protocol via franz-go, the way
// minion.Service issues raw kmsg requests over its kgo.Client (see e.g.
// DescribeLogDirs/GetMetadata in the kminion collector).
type KafkaAdminAPI struct {
	client *kgo.Client
	adm    *kadm.Client
	log    logrus.FieldLogger
}

// NewKafkaAdminAPI wraps an existing kgo.Client.
func NewKafkaAdminAPI(client *kgo.Client, log logrus.FieldLogger) *KafkaAdminAPI {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &KafkaAdminAPI{
		client: client,
		adm:    kadm.NewClient(client),
		log:    log,
	}
}

// SubmitReplicaReassignments dispatches each task to the protocol request
// appropriate for its type: inter-broker moves go through
// AlterPartitionReassignments, intra-broker (log-dir) moves go through
// AlterReplicaLogDirs.
func (k *KafkaAdminAPI) SubmitReplicaReassignments(
	ctx context.Context,
	tasks []*executor.Task,
) (map[string]*executor.SubmissionResult, error) {
	results := map[string]*executor.SubmissionResult{}

	var interBroker, intraBroker []*executor.Task
	for _, task := range tasks {
		switch task.Type {
		case executor.InterBrokerReplicaTask:
			interBroker = append(interBroker, task)
		case executor.IntraBrokerReplicaTask:
			intraBroker = append(intraBroker, task)
		}
	}

	// Both requests are independent RPCs against different kmsg endpoints;
	// a failure in one shouldn't keep the other from being attempted, so
	// their errors are joined rather than short-circuited.
	var err error
	if len(interBroker) > 0 {
		err = multierr.Append(err, k.submitInterBroker(ctx, interBroker, results))
	}
	if len(intraBroker) > 0 {
		err = multierr.Append(err, k.submitIntraBroker(ctx, intraBroker, results))
	}

	return results, err
}

func (k *KafkaAdminAPI) submitInterBroker(
	ctx context.Context,
	tasks []*executor.Task,
	results map[string]*executor.SubmissionResult,
) error {
	req := kmsg.NewAlterPartitionReassignmentsRequest()
	req.TimeoutMillis = 30000

	byTopic := map[string]*kmsg.AlterPartitionReassignmentsRequestTopic{}
	for _, task := range tasks {
		topic, ok := byTopic[task.Proposal.Topic]
		if !ok {
			t := kmsg.NewAlterPartitionReassignmentsRequestTopic()
			t.Topic = task.Proposal.Topic
			byTopic[task.Proposal.Topic] = &t
			topic = &t
		}

		part := kmsg.NewAlterPartitionReassignmentsRequestTopicPartition()
		part.Partition = int32(task.Proposal.PartitionIndex)
		part.Replicas = toInt32s(task.Proposal.TargetReplicas)
		topic.Partitions = append(topic.Partitions, part)
	}
	for _, topic := range byTopic {
		req.Topics = append(req.Topics, *topic)
	}

	res, err := req.RequestWith(ctx, k.client)
	if err != nil {
		for _, task := range tasks {
			results[task.ResultKey()] = &executor.SubmissionResult{Err: err}
		}
		return fmt.Errorf("failed to submit partition reassignments: %w", err)
	}

	for _, topic := range res.Topics {
		for _, part := range topic.Partitions {
			key := fmt.Sprintf("%s-%d", topic.Topic, part.Partition)
			result := &executor.SubmissionResult{}
			if part.ErrorCode != 0 {
				result.Err = fmt.Errorf("kafka error code %d: %s", part.ErrorCode, errString(part.ErrorMessage))
				result.ErrClass = kmsg.Error{Code: part.ErrorCode}.Error()
			}
			results[key] = result
		}
	}
	return nil
}

func (k *KafkaAdminAPI) submitIntraBroker(
	ctx context.Context,
	tasks []*executor.Task,
	results map[string]*executor.SubmissionResult,
) error {
	// Group by (broker, targetDir): AlterReplicaLogDirs is addressed per
	// broker and per destination directory.
	type dirKey struct {
		brokerID int
		dir      string
	}
	byDir := map[dirKey]map[string][]int32{} // dirKey -> topic -> partitions

	for _, task := range tasks {
		dir := task.Proposal.TargetLogDirs[task.BrokerID]
		key := dirKey{brokerID: task.BrokerID, dir: dir}
		if byDir[key] == nil {
			byDir[key] = map[string][]int32{}
		}
		byDir[key][task.Proposal.Topic] = append(
			byDir[key][task.Proposal.Topic], int32(task.Proposal.PartitionIndex),
		)
	}

	for key, topics := range byDir {
		req := kmsg.NewAlterReplicaLogDirsRequest()
		dirReq := kmsg.NewAlterReplicaLogDirsRequestDir()
		dirReq.Dir = key.dir
		for topic, partitions := range topics {
			topicReq := kmsg.NewAlterReplicaLogDirsRequestDirTopic()
			topicReq.Topic = topic
			topicReq.Partitions = partitions
			dirReq.Topics = append(dirReq.Topics, topicReq)
		}
		req.Dirs = append(req.Dirs, dirReq)

		res, err := req.RequestWith(ctx, k.client)
		if err != nil {
			for topic, partitions := range topics {
				for _, p := range partitions {
					results[fmt.Sprintf("%s-%d/%d", topic, p, key.brokerID)] = &executor.SubmissionResult{Err: err}
				}
			}
			continue
		}

		for _, topic := range res.Topics {
			for _, part := range topic.Partitions {
				resultKey := fmt.Sprintf("%s-%d/%d", topic.Topic, part.Partition, key.brokerID)
				result := &executor.SubmissionResult{}
				if part.ErrorCode != 0 {
					result.Err = fmt.Errorf("kafka error code %d", part.ErrorCode)
				}
				results[resultKey] = result
			}
		}
	}
	return nil
}

// ListOngoingReassignments returns the set of partitions (by "topic-N" key)
// with a reassignment still in flight.
func (k *KafkaAdminAPI) ListOngoingReassignments(ctx context.Context) (map[string]struct{}, error) {
	req := kmsg.NewListPartitionReassignmentsRequest()
	req.Topics = nil // all topics

	res, err := req.RequestWith(ctx, k.client)
	if err != nil {
		return nil, fmt.Errorf("failed to list partition reassignments: %w", err)
	}

	ongoing := map[string]struct{}{}
	for _, topic := range res.Topics {
		for _, part := range topic.Partitions {
			ongoing[fmt.Sprintf("%s-%d", topic.Topic, part.Partition)] = struct{}{}
		}
	}
	return ongoing, nil
}

// ProbeSubmissionError checks whether a specific partition's reassignment
// carries a non-zero error code by re-querying it directly.
func (k *KafkaAdminAPI) ProbeSubmissionError(ctx context.Context, partitionKey string) (string, error) {
	topic, partition, err := splitPartitionKey(partitionKey)
	if err != nil {
		return "", err
	}

	req := kmsg.NewListPartitionReassignmentsRequest()
	t := kmsg.NewListPartitionReassignmentsRequestTopic()
	t.Topic = topic
	t.Partitions = []int32{int32(partition)}
	req.Topics = []kmsg.ListPartitionReassignmentsRequestTopic{t}

	res, err := req.RequestWith(ctx, k.client)
	if err != nil {
		return "", err
	}
	if res.ErrorCode != 0 {
		return kmsg.Error{Code: res.ErrorCode}.Error(), nil
	}
	return "", nil
}

// Refresh fetches full cluster metadata and renders it as an
// executor.ClusterSnapshot.
func (k *KafkaAdminAPI) Refresh(ctx context.Context) (*executor.ClusterSnapshot, error) {
	req := kmsg.NewMetadataRequest()
	req.Topics = nil // all topics

	res, err := req.RequestWith(ctx, k.client)
	if err != nil {
		return nil, fmt.Errorf("failed to request metadata: %w", err)
	}

	snapshot := &executor.ClusterSnapshot{
		LiveBrokerIDs: map[int]struct{}{},
		Partitions:    map[string]executor.PartitionState{},
	}
	for _, broker := range res.Brokers {
		snapshot.LiveBrokerIDs[int(broker.NodeID)] = struct{}{}
	}
	for _, topic := range res.Topics {
		if topic.Topic == nil {
			continue
		}
		for _, part := range topic.Partitions {
			key := fmt.Sprintf("%s-%d", *topic.Topic, part.Partition)
			snapshot.Partitions[key] = executor.PartitionState{
				Exists:   true,
				Replicas: toInts(part.Replicas),
				ISR:      toInts(part.ISR),
				Leader:   int(part.Leader),
			}
		}
	}
	return snapshot, nil
}

// DescribeLogDirs reports the current/future log directory for every
// replica on the given brokers, pairing up the current (IsFuture=false) and
// in-flight (IsFuture=true) entries for the same topic-partition.
func (k *KafkaAdminAPI) DescribeLogDirs(
	ctx context.Context,
	brokerIDs []int,
) (map[int]map[string]executor.LogDirEntry, error) {
	req := kmsg.NewDescribeLogDirsRequest()
	req.Topics = nil // all topics

	shards := k.client.RequestSharded(ctx, &req)

	wanted := map[int32]struct{}{}
	for _, id := range brokerIDs {
		wanted[int32(id)] = struct{}{}
	}

	out := map[int]map[string]executor.LogDirEntry{}
	for _, shard := range shards {
		if shard.Err != nil {
			k.log.WithError(shard.Err).Warnf("describe log dirs failed on broker %d", shard.Meta.NodeID)
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[shard.Meta.NodeID]; !ok {
				continue
			}
		}

		resp, ok := shard.Resp.(*kmsg.DescribeLogDirsResponse)
		if !ok {
			continue
		}

		brokerID := int(shard.Meta.NodeID)
		entries := out[brokerID]
		if entries == nil {
			entries = map[string]executor.LogDirEntry{}
		}

		for _, dir := range resp.Dirs {
			for _, topic := range dir.Topics {
				for _, part := range topic.Partitions {
					key := fmt.Sprintf("%s-%d", topic.Topic, part.Partition)
					entry := entries[key]
					if part.IsFuture {
						entry.FutureDir = dir.Dir
					} else {
						entry.CurrentDir = dir.Dir
					}
					entries[key] = entry
				}
			}
		}

		out[brokerID] = entries
	}

	return out, nil
}

// ListBrokerIDs uses the higher-level kadm client for the simple cases where
// the raw protocol response isn't needed.
func (k *KafkaAdminAPI) ListBrokerIDs(ctx context.Context) ([]int, error) {
	brokers, err := k.adm.ListBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brokers: %w", err)
	}
	ids := make([]int, 0, len(brokers))
	for _, b := range brokers {
		ids = append(ids, int(b.NodeID))
	}
	return ids, nil
}

func toInt32s(ints []int) []int32 {
	out := make([]int32, len(ints))
	for i, v := range ints {
		out[i] = int32(v)
	}
	return out
}

func toInts(ints32 []int32) []int {
	out := make([]int, len(ints32))
	for i, v := range ints32 {
		out[i] = int(v)
	}
	return out
}

func errString(msg *string) string {
	if msg == nil {
		return ""
	}
	return *msg
}

func splitPartitionKey(key string) (string, int, error) {
	idx := -1
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '-' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", 0, fmt.Errorf("invalid partition key %q", key)
	}
	var partition int
	if _, err := fmt.Sscanf(key[idx+1:], "%d", &partition); err != nil {
		return "", 0, fmt.Errorf("invalid partition key %q: %w", key, err)
	}
	return key[:idx], partition, nil
}
