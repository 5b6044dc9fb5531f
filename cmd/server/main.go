package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/video-dubbing/internal/asr"
	"github.com/codebuildervaibhav/video-dubbing/internal/cleanup"
	"github.com/codebuildervaibhav/video-dubbing/internal/dub"
	"github.com/codebuildervaibhav/video-dubbing/internal/handlers"
	"github.com/codebuildervaibhav/video-dubbing/internal/media"
	"github.com/codebuildervaibhav/video-dubbing/internal/queue"
	"github.com/codebuildervaibhav/video-dubbing/internal/storage"
	"github.com/codebuildervaibhav/video-dubbing/internal/translate"
	"github.com/codebuildervaibhav/video-dubbing/internal/tts"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Whisper struct {
		Model string `yaml:"model"`
	} `yaml:"whisper"`

	Translate struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"translate"`

	TTS struct {
		Model      string `yaml:"model"`
		SpeakerWAV string `yaml:"speaker_wav"`
		Language   string `yaml:"language"`
	} `yaml:"tts"`

	Dubbing struct {
		SampleRate           int     `yaml:"sample_rate"`
		ToleranceBand        float64 `yaml:"tolerance_band"`
		MaxCompressionRatio  float64 `yaml:"max_compression_ratio"`
		MaxStretchRatio      float64 `yaml:"max_stretch_ratio"`
		PerSegmentTimeoutSec int     `yaml:"per_segment_timeout_sec"`
		DriftLookahead       int     `yaml:"drift_lookahead"`
		TTSWorkers           int     `yaml:"tts_workers"`
		OnInvalidClip        string  `yaml:"on_invalid_clip"`
	} `yaml:"dubbing"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
		Database  string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func main() {
	// Load configuration
	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure directories exist
	if err := cleanup.EnsureTempDirExists(config.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	if err := os.MkdirAll(config.Storage.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	// Initialize components
	log.Println("Initializing components...")

	ffmpeg := media.New(config.Storage.TempDir)
	transcriber := asr.NewWhisperTranscriber(config.Whisper.Model, config.Storage.TempDir)
	translator := translate.New(config.Translate.Endpoint)

	ttsClient, err := tts.NewCoquiClient(
		config.TTS.Model,
		config.TTS.SpeakerWAV,
		config.TTS.Language,
		config.Storage.TempDir,
		ffmpeg,
	)
	if err != nil {
		log.Fatalf("Failed to initialize TTS: %v", err)
	}

	dubConfig := dub.Config{
		SampleRate:          config.Dubbing.SampleRate,
		ToleranceBand:       config.Dubbing.ToleranceBand,
		MaxCompressionRatio: config.Dubbing.MaxCompressionRatio,
		MaxStretchRatio:     config.Dubbing.MaxStretchRatio,
		PerSegmentTimeout:   time.Duration(config.Dubbing.PerSegmentTimeoutSec) * time.Second,
		DriftLookahead:      config.Dubbing.DriftLookahead,
		TTSWorkers:          config.Dubbing.TTSWorkers,
		OnInvalidClip:       config.Dubbing.OnInvalidClip,
	}

	// Local storage
	localStorage := storage.NewLocalStorage(config.Storage.OutputDir)

	// Google Drive client (optional - may fail if credentials not set up)
	var driveClient *storage.DriveClient
	if _, err := os.Stat(config.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err = storage.NewDriveClient(
			config.GoogleDrive.CredentialsFile,
			config.GoogleDrive.TokenFile,
			config.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Dubbed videos will only be saved locally")
			driveClient = nil
		} else {
			log.Println("Google Drive integration enabled")
		}
	} else {
		log.Println("Google Drive credentials not found - saving locally only")
	}

	// Database
	db, err := storage.NewMetadataDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Worker pool
	workerPool := queue.NewWorkerPool(
		config.Workers.Count,
		ffmpeg,
		transcriber,
		translator,
		ttsClient,
		dubConfig,
		localStorage,
		driveClient,
		db,
		config.Storage.TempDir,
	)
	workerPool.Start()

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		config.Storage.TempDir,
		config.Cleanup.IntervalMinutes,
		config.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(workerPool, config.Limits.MaxFileSizeMB, config.Storage.TempDir)
	youtubeHandler := handlers.NewYouTubeHandler(workerPool, config.Storage.TempDir)
	jobsHandler := handlers.NewJobsHandler(workerPool, db)
	progressHandler := handlers.NewProgressHandler(workerPool)

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/dub", uploadHandler.Handle)
	app.Post("/youtube", youtubeHandler.Handle)
	app.Get("/jobs", jobsHandler.List)
	app.Get("/jobs/:id", jobsHandler.Get)
	app.Get("/jobs/:id/download", jobsHandler.Download)
	app.Delete("/jobs/:id", jobsHandler.Cancel)

	// WebSocket route
	app.Get("/ws/jobs/:id", websocket.New(progressHandler.Handle))

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST   /dub               - Upload video for dubbing")
	log.Println("   POST   /youtube           - Dub a YouTube video")
	log.Println("   GET    /jobs              - List completed jobs")
	log.Println("   GET    /jobs/:id          - Job status and result")
	log.Println("   GET    /jobs/:id/download - Download dubbed video")
	log.Println("   DELETE /jobs/:id          - Cancel a job")
	log.Println("   GET    /ws/jobs/:id       - WebSocket progress stream")
	log.Println("   GET    /logs              - View server logs")
	log.Println("   GET    /health            - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	// Append new line
	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	// Return copy of slice
	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
