package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	grpcserver "meet-lab/infrastructure/grpc/server"
	httpserver "meet-lab/infrastructure/http/server"
	"meet-lab/internal"
	"meet-lab/repositories"
	"meet-lab/runtime"
	"meet-lab/runtime/workers"
	"meet-lab/search"
	"meet-lab/sink"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Meeting service terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires storage, the event pipeline and both servers, then blocks until a
// signal or a server failure. Returning instead of exiting lets every defer run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB & Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, MeetingMapper)
	}

	blugeWriter, err := bluge.OpenWriter(buildBlugeConfig(config))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Supervision & Orchestration
	subscriptions := runtime.NewSubscriptionRegistry()
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(logger, sup, subscriptions, config.BufferSize, config.SinkTimeout)

	repository := repositories.NewMeetingRepository(db, logger)
	index := search.NewTranscriptIndex(blugeWriter, logger)
	indexSink := sink.NewIndexSink(index, logger, config.IndexBatchSize, config.IndexBufferTimeout)
	orchestrator.Add(sink.NewDiskSink(repository, logger), indexSink)

	filter, err := runtime.NewCaptionFilter(logger, config.ModerationEnabled, charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	coordinator := runtime.NewCoordinator(logger, runtime.NewMeetingRegistry(nil), runtime.NewRandomIDGenerator(),
		orchestrator, runtime.CoordinatorConfig{
			SystemCaptions:   config.SystemCaptions,
			MaxCaptionLength: config.MaxCaptionLength,
			Filter:           filter,
			Index:            index,
			Repository:       repository,
			Subscriptions:    subscriptions,
		})

	restored, err := coordinator.Restore(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("restore failed: %w", err)
	}
	logger.Info(fmt.Sprintf("%d meetings restored", restored))

	if config.MeetingIdleTimeout > 0 {
		orchestrator.AddWorkers(workers.NewMeetingReaper(logger, coordinator, config.MeetingIdleTimeout, config.ReaperInterval))
	}
	if config.StatsInterval > 0 {
		orchestrator.AddWorkers(workers.NewStatsReporter(logger, coordinator, subscriptions.Count, config.StatsInterval))
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	// 5. Start the pipeline (fanout and supervised workers)
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		orchestrator.Start(ctx)
	}()

	// 6. HTTP API
	meetingServer := httpserver.NewMeetingServer(logger, coordinator, config.StreamPollInterval).
		WithConnectionBufferSize(config.ConnectionBufferSize)
	httpServer := &http.Server{
		Addr:              config.HTTPAddress(),
		Handler:           meetingServer.Handler(config.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. gRPC health
	listener, err := net.Listen("tcp", config.GrpcAddress())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.GrpcAddress(), err)
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	healthServer := grpcserver.NewHealthServer(logger)
	healthServer.Register(s)
	go func() {
		logger.Info("Starting gRPC server", "address", config.GrpcAddress())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	healthServer.Serving()

	// 8. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 9. Graceful shutdown: stop accepting requests, then drain the pipeline
	// so every accepted event reaches the disk and the index.
	logger.Info("Shutting down gracefully...")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	s.GracefulStop()
	orchestrator.Stop()
	<-pipelineDone
	if err := indexSink.Flush(); err != nil {
		logger.Error("Final index flush failed", "error", err)
	}
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if config.BadgerFilepath == "" {
		options = badger.DefaultOptions("").WithInMemory(true)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}

func buildBlugeConfig(config internal.Config) bluge.Config {
	if config.BlugeFilepath == "" {
		return bluge.InMemoryOnlyConfig()
	}
	return bluge.DefaultConfig(config.BlugeFilepath)
}

// MeetingMapper renders meeting records in the badger debug inspector.
func MeetingMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	record, err := repositories.Describe(key, val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = record.Type
	row.Detail = record.Detail
	return row
}
