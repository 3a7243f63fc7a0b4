package di

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	appconfig "github.com/sul-dlss/dor-services-app-sub001/internal/app/config"
	"github.com/sul-dlss/dor-services-app-sub001/internal/application/port/output"
	versionusecase "github.com/sul-dlss/dor-services-app-sub001/internal/application/usecase/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/eventlog"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/external/preservation"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/logging"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/metrics"
	sqliterepo "github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/persistence/sqlite"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/transaction"
)

// ErrRemotePreservation is returned when local preservation writes are
// requested while a remote preservation service is configured.
var ErrRemotePreservation = errors.New("preservation is served remotely; local updates are disabled")

// MetricsFile is written under the home directory when metrics are enabled
const MetricsFile = "versionctl.prom"

// Config holds configuration for the container
type Config struct {
	App    appconfig.Config
	Logger *zap.Logger // overrides the logger built from App
	Fs     afero.Fs    // filesystem for the event file sink; defaults to the OS
}

// Container is the DI container that holds all dependencies.
// This implements manual dependency injection for Clean Architecture.
type Container struct {
	// Infrastructure Layer - Database
	db *sql.DB

	// Infrastructure Layer - Stores (SQLite implementations)
	store         repository.MetadataStore
	records       repository.VersionRecordRepository
	engine        *sqliterepo.WorkflowEngineImpl
	events        *sqliterepo.EventRepositoryImpl
	localRegistry *sqliterepo.PreservationRegistryImpl
	preservation  repository.PreservationRegistry

	// Infrastructure Layer - Transaction Manager
	txManager output.TransactionManager

	// Infrastructure Layer - Observability
	logger   *zap.Logger
	recorder *eventlog.AsyncRecorder
	metrics  *metrics.Recorder

	// Application Layer - Use Cases
	versionService *versionusecase.Service

	config Config
}

// NewContainer creates and initializes the DI container
func NewContainer(config Config) (*Container, error) {
	if config.App == nil {
		return nil, errors.New("application config is required")
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	c := &Container{config: config}

	if err := c.initializeObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if err := c.initializeInfrastructure(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	c.initializeApplication()
	return c, nil
}

func (c *Container) initializeObservability() error {
	app := c.config.App
	c.logger = c.config.Logger
	if c.logger == nil {
		logger, err := logging.New(logging.Options{Level: app.LogLevel(), Format: app.LogFormat()})
		if err != nil {
			return err
		}
		c.logger = logger
	}
	if app.MetricsEnabled() {
		c.metrics = metrics.NewRecorder()
	}
	return nil
}

// initializeInfrastructure initializes infrastructure layer components
func (c *Container) initializeInfrastructure() error {
	app := c.config.App

	// 1. Open SQLite database and run migrations
	db, err := sqliterepo.Open(app.DatabasePath())
	if err != nil {
		return err
	}
	c.db = db

	// 2. Transaction manager shared by every store
	c.txManager = transaction.NewSQLiteTransactionManager(db)

	// 3. Stores
	c.store = sqliterepo.NewMetadataStore(db, c.txManager)
	c.records = sqliterepo.NewVersionRecordRepository(db)
	c.engine = sqliterepo.NewWorkflowEngine(db, c.txManager)
	c.events = sqliterepo.NewEventRepository(db)

	// 4. Preservation registry: remote client or local table
	if url := app.PreservationURL(); url != "" {
		client, err := preservation.NewClient(preservation.Config{
			BaseURL:         url,
			Timeout:         app.PreservationTimeout(),
			BreakerFailures: uint32(app.BreakerFailures()),
			BreakerTimeout:  app.BreakerTimeout(),
		}, c.logger)
		if err != nil {
			return err
		}
		c.preservation = client
	} else {
		c.localRegistry = sqliterepo.NewPreservationRegistry(db)
		c.preservation = c.localRegistry
	}

	// 5. Event log: database always, JSON lines file when configured
	sinks := []repository.EventSink{c.events}
	if path := app.EventLogPath(); path != "" {
		sinks = append(sinks, eventlog.NewFileSink(c.config.Fs, path))
	}
	c.recorder = eventlog.NewAsyncRecorder(c.logger, app.EventBuffer(), sinks...)

	return nil
}

// initializeApplication initializes application layer components
func (c *Container) initializeApplication() {
	deps := versionusecase.Dependencies{
		Store:        c.store,
		Records:      c.records,
		Engine:       c.engine,
		Preservation: c.preservation,
		Events:       c.recorder,
		TxManager:    c.txManager,
		Logger:       c.logger,
	}
	if c.metrics != nil {
		deps.Metrics = c.metrics
	}
	c.versionService = versionusecase.NewService(deps, versionusecase.Options{
		SyncWithPreservation: c.config.App.SyncWithPreservation(),
	})
}

// GetVersionService returns the version lifecycle service
func (c *Container) GetVersionService() *versionusecase.Service {
	return c.versionService
}

// GetStepUpdater returns the workflow step updater
func (c *Container) GetStepUpdater() repository.WorkflowStepUpdater {
	return c.engine
}

// GetEventReader returns the event history reader
func (c *Container) GetEventReader() repository.EventReader {
	return c.events
}

// GetPreservationRecorder returns the local preservation registry.
// It fails when preservation is served remotely.
func (c *Container) GetPreservationRecorder() (repository.PreservationRecorder, error) {
	if c.localRegistry == nil {
		return nil, ErrRemotePreservation
	}
	return c.localRegistry, nil
}

// GetMetricsGatherer returns the metrics registry, or nil when metrics are disabled
func (c *Container) GetMetricsGatherer() prometheus.Gatherer {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.Registry()
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *zap.Logger {
	return c.logger
}

// Close flushes events and metrics and closes the database
func (c *Container) Close() error {
	var errs []error

	// Drain events before the database goes away
	if c.recorder != nil {
		errs = append(errs, c.recorder.Close())
	}

	if c.metrics != nil {
		home := c.config.App.Home()
		if err := os.MkdirAll(home, 0o755); err != nil {
			errs = append(errs, fmt.Errorf("failed to create %s: %w", home, err))
		} else if err := prometheus.WriteToTextfile(filepath.Join(home, MetricsFile), c.metrics.Registry()); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}

	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return errors.Join(errs...)
}
