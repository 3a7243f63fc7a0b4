package version

import (
	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/application/port/output"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/service"
)

// Dependencies are the collaborators the lifecycle service composes
type Dependencies struct {
	Store        repository.MetadataStore
	Records      repository.VersionRecordRepository
	Engine       repository.WorkflowEngine
	Preservation repository.PreservationRegistry
	Events       repository.EventLog
	TxManager    output.TransactionManager
	Logger       *zap.Logger
	Metrics      Metrics
}

// Options are policy switches for the lifecycle
type Options struct {
	// SyncWithPreservation backfills missing version records up to the
	// version preservation reports, instead of trusting the local counter.
	SyncWithPreservation bool
}

// Service is the version lifecycle state machine.
// It holds no locks; concurrent callers are arbitrated by the metadata
// store's compare-and-swap and the transaction manager.
type Service struct {
	store        repository.MetadataStore
	records      repository.VersionRecordRepository
	engine       repository.WorkflowEngine
	preservation repository.PreservationRegistry
	events       repository.EventLog
	txManager    output.TransactionManager
	state        *service.WorkflowStateService
	guard        *service.LockGuard
	logger       *zap.Logger
	metrics      Metrics
	opts         Options
}

// NewService creates a new version lifecycle service
func NewService(deps Dependencies, opts Options) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger = logger.Named("version")

	return &Service{
		store:        deps.Store,
		records:      deps.Records,
		engine:       deps.Engine,
		preservation: deps.Preservation,
		events:       deps.Events,
		txManager:    deps.TxManager,
		state:        service.NewWorkflowStateService(deps.Engine),
		guard: service.NewLockGuard(deps.Store, logger, func(objectID, actor, reason string) {
			metrics.RecordSkipLock(actor)
		}),
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// State exposes the workflow state query engine used by the service
func (s *Service) State() *service.WorkflowStateService {
	return s.state
}
