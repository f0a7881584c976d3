package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/hbomb79/Siphon/internal/api/gateway"
	"github.com/hbomb79/Siphon/internal/database"
	"github.com/hbomb79/Siphon/internal/download"
	"github.com/hbomb79/Siphon/internal/event"
	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/hbomb79/Siphon/internal/ffmpeg"
	"github.com/hbomb79/Siphon/internal/tools"
	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Core")

type (
	// RunnableService is any long-lived service whose lifecycle is owned
	// by the core: it blocks until its context is cancelled.
	RunnableService interface {
		Run(context.Context) error
	}

	// ToolVerifier confirms the external tools Siphon depends on are
	// runnable. Verification happens before any listener is opened.
	ToolVerifier interface {
		Verify(context.Context) error
	}
)

// Siphon represents the top-level object for the server, and is responsible
// for initialising the tool checker, the database, event handling and the
// REST gateway.
type siphonImpl struct {
	eventBus event.EventCoordinator
	config   SiphonConfig

	checker     ToolVerifier
	db          database.Manager
	store       *download.Store
	recorder    *download.Recorder
	restGateway RunnableService
}

func New(config SiphonConfig) *siphonImpl {
	log.Emit(logger.DEBUG, "Bootstrapping Siphon services using config: %#v\n", config)
	siphon := &siphonImpl{
		eventBus: event.New(),
		config:   config,
		db:       database.New(),
		store:    download.NewStore(),
	}

	exec := executor.New()
	checker := tools.NewChecker(config.Tools, exec)
	metadataService := youtube.NewMetadataService(config.Download, exec)
	thumbnailService := youtube.NewThumbnailService(config.Download, metadataService)

	downloadService, err := youtube.NewDownloadService(config.Download, exec, metadataService, ffmpeg.NewProber(config.Probe), siphon.eventBus)
	if err != nil {
		panic(fmt.Sprintf("failed to construct download service due to error: %s", err.Error()))
	}

	siphon.checker = checker
	siphon.recorder = download.NewRecorder(siphon.db, siphon.store)
	siphon.restGateway = gateway.NewRestGateway(&config.API, checker, metadataService, thumbnailService, downloadService, siphon.db, siphon.store)

	return siphon
}

// Run will start all of Siphon by bringing up all required services and
// connections, such as:
// - Tool verification
// - Database connection
// - Download history recording
// - REST gateway
//
// This function will not return until Siphon is stopped. To stop Siphon, the
// provided context must be cancelled. Errors from which Siphon cannot recover
// will also cause Siphon to stop.
func (siphon *siphonImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		crashErr  error
		crashOnce sync.Once
	)
	crashHandler := func(label string, err error) {
		crashOnce.Do(func() { crashErr = err })
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel()
	}

	// The tools are checked before the HTTP listener opens so a
	// misconfigured host fails loudly instead of serving errors.
	log.Emit(logger.NEW, "Verifying required external tools...\n")
	if err := siphon.checker.Verify(ctx); err != nil {
		return err
	}

	log.Emit(logger.NEW, "Connecting to database...\n")
	if err := siphon.db.Connect(siphon.config.Database); err != nil {
		return err
	}
	defer func() {
		if err := siphon.db.Close(); err != nil {
			log.Warnf("Failed to close database cleanly: %v\n", err)
		}
	}()

	siphon.recorder.RegisterWith(siphon.eventBus)

	wg := &sync.WaitGroup{}
	siphon.spawnAsyncService(ctx, wg, siphon.restGateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Siphon services spawned!\n")

	wg.Wait()
	return crashErr
}

// spawnAsyncService will run the provided function/service as it's own
// go-routine, ensuring that the Siphon service waitgroup is updated correctly
func (siphon *siphonImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}
