/*
Package main is the entry point for the Meeting Assistant backend.

It is responsible for loading configuration, initializing the global logging system,
loading the store snapshot, wiring the Jira client and the meeting services into the
HTTP server, and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetassist/internal/app/gateway"
	"meetassist/internal/app/meeting"
	"meetassist/internal/app/storage"
	"meetassist/internal/app/store"
	"meetassist/internal/app/tracker/jira"
	"meetassist/internal/configs"
	"meetassist/internal/handler"
	"meetassist/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(logx.Options{
		Development: cfg.IsDevelopment(),
		File:        cfg.LogFile,
	})
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("jira_base_url", cfg.JiraBaseURL).
		Bool("s3_snapshot", cfg.UsesS3Snapshot()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := snapshotSink(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize snapshot sink")
	}

	s, err := store.Load(ctx, sink)
	if err != nil {
		logx.Fatal(err, "Failed to load store snapshot")
	}

	jiraClient, err := jira.NewClient(jira.Config{
		BaseURL:   cfg.JiraBaseURL,
		Email:     cfg.JiraEmail,
		APIToken:  cfg.JiraAPIToken,
		IssueType: cfg.JiraIssueType,
		Timeout:   cfg.JiraTimeout,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize Jira client")
	}

	meetings := meeting.NewService(s)
	deps := &handler.AppDeps{
		Config:   cfg,
		Store:    s,
		Meetings: meetings,
		Gateway:  gateway.New(meetings, jiraClient, s.ProjectKey()),
	}

	// Setup HTTP server and routes
	router := handler.Router(ctx, deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// Tracker calls may take up to JiraTimeout before the handler can answer.
		WriteTimeout: cfg.JiraTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("Meeting Assistant starting", "addr", fmt.Sprintf("http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	if cfg.SaveOnShutdown {
		if err := s.Save(shutdownCtx); err != nil {
			logx.Error(err, "Failed to save store snapshot on shutdown")
		} else {
			logx.Info("Store snapshot saved", "sink", sink.String())
		}
	}

	logx.Info("Server gracefully stopped.")
}

// snapshotSink picks the S3 object when a bucket is configured and the local file otherwise.
func snapshotSink(ctx context.Context, cfg *configs.AppConfig) (store.Sink, error) {
	if !cfg.UsesS3Snapshot() {
		return store.NewFileSink(cfg.SnapshotPath), nil
	}

	return storage.NewS3Sink(ctx, storage.ServiceConfig{
		S3BucketName:      cfg.SnapshotS3Bucket,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	}, cfg.SnapshotS3Key)
}
