package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
)

type mockWorkflowEngine struct {
	mock.Mock
}

func (m *mockWorkflowEngine) CreateInstance(ctx context.Context, externalID, name string, version int, wfContext map[string]string) (*workflow.Instance, error) {
	args := m.Called(ctx, externalID, name, version, wfContext)
	inst, _ := args.Get(0).(*workflow.Instance)
	return inst, args.Error(1)
}

func (m *mockWorkflowEngine) CloseInstance(ctx context.Context, externalID, name string, version int, startNext bool) error {
	return m.Called(ctx, externalID, name, version, startNext).Error(0)
}

func (m *mockWorkflowEngine) FetchInstance(ctx context.Context, externalID, name string) (*workflow.Instance, error) {
	args := m.Called(ctx, externalID, name)
	inst, _ := args.Get(0).(*workflow.Instance)
	return inst, args.Error(1)
}

func (m *mockWorkflowEngine) HasCompletedStep(ctx context.Context, externalID, name, step string) (bool, error) {
	args := m.Called(ctx, externalID, name, step)
	return args.Bool(0), args.Error(1)
}

type mockMetadataStore struct {
	mock.Mock
}

func (m *mockMetadataStore) Create(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(lock.Token), args.Error(1)
}

func (m *mockMetadataStore) Load(ctx context.Context, externalID string) (*object.Snapshot, lock.Token, error) {
	args := m.Called(ctx, externalID)
	snap, _ := args.Get(0).(*object.Snapshot)
	return snap, args.Get(1).(lock.Token), args.Error(2)
}

func (m *mockMetadataStore) Store(ctx context.Context, snapshot *object.Snapshot, expected lock.Token) (lock.Token, error) {
	args := m.Called(ctx, snapshot, expected)
	return args.Get(0).(lock.Token), args.Error(1)
}

func (m *mockMetadataStore) StoreWithoutLock(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(lock.Token), args.Error(1)
}
