package executor

import (
	"context"
	"sync"
)

// fakeAdminAPI is a minimal, goroutine-safe in-memory stand-in for AdminAPI
// used by supervisor/controller tests. Submitted reassignments are recorded
// but never actually "complete" on their own; tests drive completion through
// the cluster snapshot the fake MetadataClient returns.
type fakeAdminAPI struct {
	mu        sync.Mutex
	submitted []*Task
	results   map[string]*SubmissionResult
	ongoing   map[string]struct{}
}

func newFakeAdminAPI() *fakeAdminAPI {
	return &fakeAdminAPI{
		results: map[string]*SubmissionResult{},
		ongoing: map[string]struct{}{},
	}
}

func (f *fakeAdminAPI) SubmitReplicaReassignments(ctx context.Context, tasks []*Task) (map[string]*SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := map[string]*SubmissionResult{}
	for _, task := range tasks {
		f.submitted = append(f.submitted, task)
		key := task.ResultKey()
		if result, ok := f.results[key]; ok {
			out[key] = result
		} else {
			out[key] = &SubmissionResult{}
		}
	}
	return out, nil
}

func (f *fakeAdminAPI) ListOngoingReassignments(ctx context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := map[string]struct{}{}
	for k := range f.ongoing {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeAdminAPI) ProbeSubmissionError(ctx context.Context, partitionKey string) (string, error) {
	return "", nil
}

// fakeCoordinationStore is a minimal CoordinationStore stand-in.
type fakeCoordinationStore struct {
	mu                sync.Mutex
	triggered         []*Task
	deletedMarkers    int
	ongoingElections  map[string]struct{}
}

func newFakeCoordinationStore() *fakeCoordinationStore {
	return &fakeCoordinationStore{ongoingElections: map[string]struct{}{}}
}

func (f *fakeCoordinationStore) ListOngoingPreferredLeaderElections(ctx context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]struct{}{}
	for k := range f.ongoingElections {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeCoordinationStore) TriggerPreferredLeaderElection(ctx context.Context, tasks []*Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggered = append(f.triggered, tasks...)
	return nil
}

func (f *fakeCoordinationStore) DeleteReassignmentMarkers(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedMarkers++
	return nil
}

func (f *fakeCoordinationStore) HasOngoingPartitionReassignment(ctx context.Context) (bool, error) {
	return false, nil
}

func (f *fakeCoordinationStore) HasOngoingIntraBrokerMove(ctx context.Context) (bool, error) {
	return false, nil
}

func (f *fakeCoordinationStore) HasOngoingLeaderElection(ctx context.Context) (bool, error) {
	return false, nil
}

// fakeMetadataClient serves a settable ClusterSnapshot and log-dir map.
type fakeMetadataClient struct {
	mu       sync.Mutex
	snapshot *ClusterSnapshot
	logDirs  map[int]map[string]LogDirEntry
}

func newFakeMetadataClient(snapshot *ClusterSnapshot) *fakeMetadataClient {
	return &fakeMetadataClient{snapshot: snapshot, logDirs: map[int]map[string]LogDirEntry{}}
}

func (f *fakeMetadataClient) Refresh(ctx context.Context) (*ClusterSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, nil
}

func (f *fakeMetadataClient) DescribeLogDirs(ctx context.Context, brokerIDs []int) (map[int]map[string]LogDirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int]map[string]LogDirEntry{}
	for _, id := range brokerIDs {
		if entries, ok := f.logDirs[id]; ok {
			out[id] = entries
		}
	}
	return out, nil
}

// fakeLoadMonitor is a LoadMonitor stand-in with a fixed metrics snapshot.
type fakeLoadMonitor struct {
	mu     sync.Mutex
	values BrokerMetricValues
	mode   SamplingMode
	paused bool
}

func (f *fakeLoadMonitor) CurrentBrokerMetricValues(ctx context.Context) (BrokerMetricValues, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values, nil
}

func (f *fakeLoadMonitor) SetSamplingMode(ctx context.Context, mode SamplingMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
	return nil
}

func (f *fakeLoadMonitor) PauseSampling(ctx context.Context, reason string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return nil
}

func (f *fakeLoadMonitor) ResumeSampling(ctx context.Context, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return nil
}

// fakeThrottleHelper records Set/Clear calls without touching any cluster.
type fakeThrottleHelper struct {
	mu          sync.Mutex
	setCalls    int
	clearCalls  int
}

func (f *fakeThrottleHelper) SetThrottles(ctx context.Context, proposals []*Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	return nil
}

func (f *fakeThrottleHelper) ClearThrottles(ctx context.Context, completed []*Task, stillInProgress []*Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return nil
}

// fakeNotifier records alerts/notifications sent during a test.
type fakeNotifier struct {
	mu            sync.Mutex
	notifications []string
	alerts        []string
}

func (f *fakeNotifier) SendNotification(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, message)
}

func (f *fakeNotifier) SendAlert(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, message)
}

// fakeAnomalyDetector records lifecycle callbacks.
type fakeAnomalyDetector struct {
	mu               sync.Mutex
	clearedDetection int
	resetGoals       int
	finishedUUIDs    []string
}

func (f *fakeAnomalyDetector) ClearOngoingDetectionTime() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedDetection++
}

func (f *fakeAnomalyDetector) ResetUnfixableGoals() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetGoals++
}

func (f *fakeAnomalyDetector) MarkSelfHealingFinished(uuid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishedUUIDs = append(f.finishedUUIDs, uuid)
}

// fakeUserTaskManager records lifecycle callbacks for user-triggered batches.
type fakeUserTaskManager struct {
	mu       sync.Mutex
	began    []string
	finished map[string]bool
}

func newFakeUserTaskManager() *fakeUserTaskManager {
	return &fakeUserTaskManager{finished: map[string]bool{}}
}

func (f *fakeUserTaskManager) MarkBegan(uuid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.began = append(f.began, uuid)
}

func (f *fakeUserTaskManager) MarkFinished(uuid string, wasStoppedOrErrored bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished[uuid] = wasStoppedOrErrored
}
