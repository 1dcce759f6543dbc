package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xx7Ahmed7xx/videobooth/capture"
	"github.com/xx7Ahmed7xx/videobooth/common"
	"github.com/xx7Ahmed7xx/videobooth/config"
	"github.com/xx7Ahmed7xx/videobooth/control"
	"github.com/xx7Ahmed7xx/videobooth/encoding"
	"github.com/xx7Ahmed7xx/videobooth/inspect"
	"github.com/xx7Ahmed7xx/videobooth/journal"
	"github.com/xx7Ahmed7xx/videobooth/recording"
	"github.com/xx7Ahmed7xx/videobooth/review"
	"github.com/xx7Ahmed7xx/videobooth/session"
)

func main() {
	// Config override flags
	enginePath := flag.String("engine-path", "", "Path to the ffmpeg binary (overrides config)")
	cameraDevice := flag.String("camera-device", "", "Camera device (overrides config, e.g., '/dev/video0' or '0')")
	microphoneDevice := flag.String("microphone-device", "", "Microphone device (overrides config)")
	outputDirectory := flag.String("output-dir", "", "Output directory for recordings (overrides config)")
	resolutionPreset := flag.String("resolution-preset", "", "Resolution preset (overrides config, e.g., 'sd', 'hd', 'full-hd', 'any')")
	preferHardware := flag.Bool("prefer-hardware", true, "Probe hardware encoders before software fallback (overrides config)")
	maxSeconds := flag.Int("max-seconds", 0, "Maximum recording duration in seconds (overrides config)")
	countdownSeconds := flag.Int("countdown-seconds", -1, "Countdown before recording starts (overrides config)")
	listenAddress := flag.String("listen", "", "Control API listen address (overrides config)")
	journalPath := flag.String("journal-path", "", "Session journal database path (overrides config)")

	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The boolean override only applies when the flag was given explicitly.
	var preferHardwareOverride *bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "prefer-hardware" {
			preferHardwareOverride = preferHardware
		}
	})

	// Apply CLI overrides if provided
	cfg.Override(config.ConfigOverrides{
		EnginePath:            enginePath,
		CameraDevice:          cameraDevice,
		MicrophoneDevice:      microphoneDevice,
		OutputDirectory:       outputDirectory,
		ResolutionPreset:      resolutionPreset,
		PreferHardwareEncoder: preferHardwareOverride,
		MaxRecordingSeconds:   maxSeconds,
		CountdownSeconds:      countdownSeconds,
		ListenAddress:         listenAddress,
		JournalPath:           journalPath,
	})

	// Initialize logger
	logger := common.NewLogger(common.LogLevel(cfg.LogLevel), cfg.LogPath, "videobooth")
	logger.Info("Starting video booth", "camera", cfg.CameraDevice, "engine", cfg.EnginePath)

	// Initialize the session journal
	var sessionJournal journal.Journal
	if cfg.JournalPath != "" {
		var db *sql.DB
		db, err = common.OpenDB(cfg.JournalPath)
		if err != nil {
			log.Fatalf("Failed to open journal database: %v", err)
		}
		defer db.Close()

		sessionJournal, err = journal.NewSQLiteJournal(db)
		if err != nil {
			log.Fatalf("Failed to create session journal: %v", err)
		}
	} else {
		logger.Warn("Session journal disabled, no journal path configured")
	}

	// Wire up the capture and recording pipeline
	devices := capture.NewWebcamManager(logger)
	preview := capture.NewCameraPreview(logger, devices)
	selector := encoding.NewFFmpegSelector(logger, cfg.EnginePath)
	supervisor := recording.NewEngineSupervisor(logger)
	inspector := inspect.NewFFmpegInspector(logger)
	gate := review.NewAutoKeepGate(logger)

	orchestrator := session.NewOrchestrator(logger, cfg, session.Dependencies{
		Devices:    devices,
		Preview:    preview,
		Selector:   selector,
		Supervisor: supervisor,
		Inspector:  inspector,
		Gate:       gate,
		Journal:    sessionJournal,
	})

	// Set up the control API
	router := initializeGin()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	sessionHandler := control.NewSessionHandler(logger, orchestrator)
	setupRoutes(router, sessionHandler, logger, sessionJournal)

	server := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: router,
	}

	go func() {
		logger.Info("Control API listening", "address", cfg.ListenAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Control API failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")

	// Settle any in-flight session before the process exits.
	if orchestrator.State() == session.StateRecording {
		if err := orchestrator.StopRecording(); err != nil {
			logger.Error("Failed to stop recording on shutdown", "error", err)
		}
	}
	if err := orchestrator.StopPreview(); err != nil {
		logger.Error("Failed to stop preview on shutdown", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Control API shutdown failed", "error", err)
	}

	logger.Info("Shutdown complete")
}

// setupRoutes configures the HTTP routes
func setupRoutes(router *gin.Engine, sessionHandler *control.SessionHandler, logger common.Logger, sessionJournal journal.Journal) {
	api := router.Group("/api")

	api.GET("/status", sessionHandler.GetStatus)
	api.GET("/devices", sessionHandler.ListDevices)
	api.GET("/snapshot", sessionHandler.GetSnapshot)

	api.POST("/preview/start", sessionHandler.StartPreview)
	api.POST("/preview/stop", sessionHandler.StopPreview)
	api.POST("/recording/start", sessionHandler.StartRecording)
	api.POST("/recording/stop", sessionHandler.StopRecording)

	if sessionJournal != nil {
		journalHandler := control.NewJournalHandler(logger, sessionJournal)
		api.GET("/sessions", journalHandler.ListSessions)
		api.GET("/sessions/:id", journalHandler.GetSession)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "videobooth",
		})
	})
}
