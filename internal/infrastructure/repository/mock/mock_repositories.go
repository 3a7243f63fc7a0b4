package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// MockMetadataStore is an in-memory implementation of MetadataStore
type MockMetadataStore struct {
	mu        sync.RWMutex
	snapshots map[string]object.Snapshot
}

// NewMockMetadataStore creates a new mock metadata store
func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{snapshots: make(map[string]object.Snapshot)}
}

func (m *MockMetadataStore) Create(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error) {
	if err := snapshot.Validate(); err != nil {
		return lock.Token{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.snapshots[snapshot.ExternalID]; exists {
		return lock.Token{}, fmt.Errorf("%w: %s", repository.ErrObjectExists, snapshot.ExternalID)
	}
	now := time.Now().UTC()
	snapshot.LockVersion = 0
	snapshot.CreatedAt = now
	snapshot.UpdatedAt = now
	m.snapshots[snapshot.ExternalID] = *snapshot
	return snapshot.LockToken(), nil
}

func (m *MockMetadataStore) Load(ctx context.Context, externalID string) (*object.Snapshot, lock.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, exists := m.snapshots[externalID]
	if !exists {
		return nil, lock.Token{}, fmt.Errorf("%w: %s", repository.ErrObjectNotFound, externalID)
	}
	return &stored, stored.LockToken(), nil
}

func (m *MockMetadataStore) Store(ctx context.Context, snapshot *object.Snapshot, expected lock.Token) (lock.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.snapshots[snapshot.ExternalID]
	if !exists {
		return lock.Token{}, fmt.Errorf("%w: %s", repository.ErrObjectNotFound, snapshot.ExternalID)
	}
	if !current.LockToken().Equals(expected) {
		return lock.Token{}, &lock.StaleLockError{ObjectID: snapshot.ExternalID, Expected: current.LockToken(), Supplied: expected}
	}
	return m.write(snapshot, current), nil
}

func (m *MockMetadataStore) StoreWithoutLock(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.snapshots[snapshot.ExternalID]
	if !exists {
		return lock.Token{}, fmt.Errorf("%w: %s", repository.ErrObjectNotFound, snapshot.ExternalID)
	}
	return m.write(snapshot, current), nil
}

func (m *MockMetadataStore) write(snapshot *object.Snapshot, current object.Snapshot) lock.Token {
	snapshot.LockVersion = current.LockVersion + 1
	snapshot.CreatedAt = current.CreatedAt
	snapshot.UpdatedAt = time.Now().UTC()
	m.snapshots[snapshot.ExternalID] = *snapshot
	return snapshot.LockToken()
}

// MockVersionRecordRepository is an in-memory implementation of VersionRecordRepository
type MockVersionRecordRepository struct {
	mu      sync.RWMutex
	records map[string]map[int]object.VersionRecord
}

// NewMockVersionRecordRepository creates a new mock version record repository
func NewMockVersionRecordRepository() *MockVersionRecordRepository {
	return &MockVersionRecordRepository{records: make(map[string]map[int]object.VersionRecord)}
}

func (m *MockVersionRecordRepository) Create(ctx context.Context, record *object.VersionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byVersion, ok := m.records[record.ExternalID]
	if !ok {
		byVersion = make(map[int]object.VersionRecord)
		m.records[record.ExternalID] = byVersion
	}
	if _, exists := byVersion[record.Version]; exists {
		return fmt.Errorf("%w: %s v%d", repository.ErrVersionRecordExists, record.ExternalID, record.Version)
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	byVersion[record.Version] = *record
	return nil
}

func (m *MockVersionRecordRepository) Find(ctx context.Context, externalID string, version int) (*object.VersionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[externalID][version]
	if !exists {
		return nil, fmt.Errorf("%w: %s v%d", repository.ErrVersionRecordNotFound, externalID, version)
	}
	return &record, nil
}

func (m *MockVersionRecordRepository) Current(ctx context.Context, externalID string) (*object.VersionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	best := 0
	for v := range m.records[externalID] {
		if v > best {
			best = v
		}
	}
	if best == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrVersionRecordNotFound, externalID)
	}
	record := m.records[externalID][best]
	return &record, nil
}

func (m *MockVersionRecordRepository) List(ctx context.Context, externalID string) ([]*object.VersionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*object.VersionRecord
	for _, record := range m.records[externalID] {
		r := record
		result = append(result, &r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

func (m *MockVersionRecordRepository) Update(ctx context.Context, record *object.VersionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.ExternalID][record.Version]; !exists {
		return fmt.Errorf("%w: %s v%d", repository.ErrVersionRecordNotFound, record.ExternalID, record.Version)
	}
	record.UpdatedAt = time.Now().UTC()
	m.records[record.ExternalID][record.Version] = *record
	return nil
}

// MockWorkflowEngine is an in-memory implementation of WorkflowEngine and WorkflowStepUpdater
type MockWorkflowEngine struct {
	mu        sync.RWMutex
	instances map[string][]*workflow.Instance // keyed by object id + name, oldest first
	failures  map[string]error                // keyed by method name
}

// NewMockWorkflowEngine creates a new mock workflow engine
func NewMockWorkflowEngine() *MockWorkflowEngine {
	return &MockWorkflowEngine{
		instances: make(map[string][]*workflow.Instance),
		failures:  make(map[string]error),
	}
}

// FailOn makes every later call of method return err; a nil err clears it
func (m *MockWorkflowEngine) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

func instanceKey(externalID, name string) string {
	return externalID + "|" + name
}

func (m *MockWorkflowEngine) CreateInstance(ctx context.Context, externalID, name string, version int, wfContext map[string]string) (*workflow.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures["CreateInstance"]; err != nil {
		return nil, err
	}
	inst, err := m.create(externalID, name, version, wfContext)
	if err != nil {
		return nil, err
	}
	return inst.Clone(), nil
}

func (m *MockWorkflowEngine) create(externalID, name string, version int, wfContext map[string]string) (*workflow.Instance, error) {
	inst, err := workflow.NewInstance(uuid.NewString(), externalID, name, version, wfContext)
	if err != nil {
		return nil, err
	}
	key := instanceKey(externalID, name)
	for _, existing := range m.instances[key] {
		if existing.Version == version {
			return nil, fmt.Errorf("%w: %s %s v%d", repository.ErrWorkflowExists, externalID, name, version)
		}
	}
	for _, existing := range m.instances[key] {
		existing.Deactivate()
	}
	m.instances[key] = append(m.instances[key], inst)
	return inst, nil
}

func (m *MockWorkflowEngine) CloseInstance(ctx context.Context, externalID, name string, version int, startNext bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures["CloseInstance"]; err != nil {
		return err
	}
	inst := m.find(externalID, name, version)
	if inst == nil {
		return fmt.Errorf("%w: %s %s v%d", repository.ErrWorkflowNotFound, externalID, name, version)
	}
	inst.CompleteAll()
	inst.Deactivate()
	if startNext {
		if _, err := m.create(externalID, workflow.AccessionWF, version, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockWorkflowEngine) FetchInstance(ctx context.Context, externalID, name string) (*workflow.Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failures["FetchInstance"]; err != nil {
		return nil, err
	}
	var latest *workflow.Instance
	for _, inst := range m.instances[instanceKey(externalID, name)] {
		if latest == nil || inst.Version > latest.Version {
			latest = inst
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s %s", repository.ErrWorkflowNotFound, externalID, name)
	}
	return latest.Clone(), nil
}

func (m *MockWorkflowEngine) HasCompletedStep(ctx context.Context, externalID, name, step string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failures["HasCompletedStep"]; err != nil {
		return false, err
	}
	for _, inst := range m.instances[instanceKey(externalID, name)] {
		if s, ok := inst.Step(step); ok && s.Status == workflow.StepCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockWorkflowEngine) SetStepStatus(ctx context.Context, externalID, name string, version int, step string, status workflow.StepStatus, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst := m.find(externalID, name, version)
	if inst == nil {
		return fmt.Errorf("%w: %s %s v%d", repository.ErrWorkflowNotFound, externalID, name, version)
	}
	return inst.SetStepStatus(step, status, message)
}

// CountInstances returns how many instances of name exist for the object
func (m *MockWorkflowEngine) CountInstances(externalID, name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances[instanceKey(externalID, name)])
}

func (m *MockWorkflowEngine) find(externalID, name string, version int) *workflow.Instance {
	for _, inst := range m.instances[instanceKey(externalID, name)] {
		if inst.Version == version {
			return inst
		}
	}
	return nil
}

// MockPreservationRegistry is an in-memory implementation of PreservationRegistry
type MockPreservationRegistry struct {
	mu       sync.RWMutex
	versions map[string]int
	err      error
}

// NewMockPreservationRegistry creates a new mock preservation registry
func NewMockPreservationRegistry() *MockPreservationRegistry {
	return &MockPreservationRegistry{versions: make(map[string]int)}
}

// SetError makes CurrentVersion fail with err; nil restores normal behaviour
func (m *MockPreservationRegistry) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockPreservationRegistry) SetVersion(ctx context.Context, externalID string, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[externalID] = version
	return nil
}

func (m *MockPreservationRegistry) CurrentVersion(ctx context.Context, externalID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return 0, m.err
	}
	v, exists := m.versions[externalID]
	if !exists {
		return 0, fmt.Errorf("%w: %s", repository.ErrPreservationNotFound, externalID)
	}
	return v, nil
}

// MockEventLog records events in memory
type MockEventLog struct {
	mu     sync.Mutex
	events []repository.Event
}

// NewMockEventLog creates a new mock event log
func NewMockEventLog() *MockEventLog {
	return &MockEventLog{}
}

func (m *MockEventLog) Record(ctx context.Context, externalID, eventType string, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, repository.Event{
		ID:        uuid.NewString(),
		ObjectID:  externalID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
}

// Events returns a copy of the recorded events, optionally filtered by type
func (m *MockEventLog) Events(eventType ...string) []repository.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []repository.Event
	for _, e := range m.events {
		if len(eventType) == 0 || e.EventType == eventType[0] {
			result = append(result, e)
		}
	}
	return result
}
