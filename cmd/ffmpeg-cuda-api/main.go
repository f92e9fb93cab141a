package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ffmpeg-cuda-api/internal/database"
	"ffmpeg-cuda-api/internal/filesystem"
	"ffmpeg-cuda-api/internal/handlers"
	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/metrics"
	"ffmpeg-cuda-api/internal/middleware"
	"ffmpeg-cuda-api/internal/startup"
	"ffmpeg-cuda-api/internal/stats"
	"ffmpeg-cuda-api/internal/sysprobe"
	"ffmpeg-cuda-api/internal/transcoder"
	"ffmpeg-cuda-api/internal/workers"
	"ffmpeg-cuda-api/internal/workspace"

	"github.com/gorilla/mux"
)

const (
	metricsInterval  = time.Minute
	statsQueryBudget = 5 * time.Second
	shutdownTimeout  = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize metrics
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.ServiceStartTime.Set(float64(startTime.Unix()))
	metrics.InitializeMetrics()

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"workspace": config.WorkspaceDir,
		"scratch":   config.ScratchDir,
		"database":  config.DatabaseDir,
	}))

	// Job history is optional; the API keeps serving encodes without it
	db := openHistory(config)

	// Initialize encoder
	ws := workspace.New(config.WorkspaceDir)
	trans := transcoder.New(ws, transcoder.Config{
		Binary:     config.EncoderBinary,
		ScratchDir: config.ScratchDir,
		Timeout:    config.EncodeTimeout,
		MaxCapture: config.MaxCaptureBytes,
	})

	limiter := workers.NewLimiter(workers.Count(config.EncodeWorkers, 0))
	limiter.OnWait = func(delta float64) {
		metrics.EncodeJobsQueued.Add(delta)
	}
	startup.LogEncoderInit(config.EncoderBinary, limiter.Capacity(), trans.Timeout())

	prober := sysprobe.New(config.EncoderBinary, config.GPUQueryBinary)

	// Initialize handlers
	deps := handlers.Dependencies{
		Encoder:   trans,
		Workspace: ws,
		Limiter:   limiter,
		Stats:     stats.New(),
		Prober:    prober,
	}
	var counter jobCounter
	if db != nil {
		deps.Jobs = db
		counter = db
	}
	h := handlers.New(deps)

	// Start metrics collector
	collector := metrics.NewCollector(newStatsProvider(ws, counter, prober), metricsInterval)
	collector.Start()

	// Setup router
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           buildHandler(router, config),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Encodes run up to the job timeout before the response is written.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = startMetricsServer(config.MetricsPort, h)
	}

	done := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, collector, trans, db)
		close(done)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// openHistory opens the job history database, or returns nil when history
// is disabled or the database cannot be opened.
func openHistory(config *startup.Config) *database.Database {
	if !config.HistoryEnabled {
		startup.LogDatabaseInit(0, errors.New("history disabled"))
		return nil
	}

	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	startup.LogDatabaseInit(time.Since(dbStart), err)
	if err != nil {
		return nil
	}
	return db
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	metricsMiddleware := middleware.Metrics(middleware.DefaultMetricsConfig())
	r.Use(metricsMiddleware)

	// Documentation
	r.HandleFunc("/", h.Docs).Methods("GET")

	// Health checks
	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// System
	r.HandleFunc("/files", h.ListFiles).Methods("GET")
	r.HandleFunc("/info", h.GetInfo).Methods("GET")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")

	// Encoding
	r.HandleFunc("/encode", h.Encode).Methods("POST")

	// Job history
	r.HandleFunc("/jobs", h.ListJobs).Methods("GET")
	r.HandleFunc("/jobs/{id}", h.GetJob).Methods("GET")

	// Route-level middleware only runs on a match
	r.NotFoundHandler = metricsMiddleware(http.HandlerFunc(h.NotFound))
	r.MethodNotAllowedHandler = metricsMiddleware(http.HandlerFunc(h.MethodNotAllowed))

	return r
}

// buildHandler wraps the router in the server-wide middleware chain.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	compressionConfig := middleware.DefaultCompressionConfig()
	handler := middleware.Compression(compressionConfig)(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	handler = middleware.Recover()(handler)
	return middleware.RequestID()(handler)
}

func startMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	return srv
}

type workspaceLister interface {
	List() (*workspace.Listing, error)
}

type jobCounter interface {
	CountByStatus(ctx context.Context) (database.StatusCounts, error)
	UpdateDBMetrics()
}

type gpuProber interface {
	GPUAvailable(ctx context.Context) bool
}

// newStatsProvider gathers the gauges refreshed by the metrics collector.
// jobs may be nil when history is disabled.
func newStatsProvider(ws workspaceLister, jobs jobCounter, gpu gpuProber) metrics.StatsProvider {
	return metrics.StatsProviderFunc(func() metrics.Stats {
		var s metrics.Stats

		if listing, err := ws.List(); err == nil {
			s.WorkspaceFiles = listing.Total
			s.WorkspaceBytes = listing.TotalBytes
		} else {
			logging.Debug("Workspace listing for metrics failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), statsQueryBudget)
		defer cancel()

		if jobs != nil {
			if counts, err := jobs.CountByStatus(ctx); err == nil {
				s.JobRecords = counts.Total()
			} else {
				logging.Warn("Failed to count job records: %v", err)
			}
			jobs.UpdateDBMetrics()
		}

		s.GPUAvailable = gpu.GPUAvailable(ctx)
		return s
	})
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, trans *transcoder.Transcoder, db *database.Database) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v (%d encodes still running)", err, trans.Running())
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	// Encodes that outlived the grace period are killed.
	startup.LogShutdownStep("Stopping running encodes")
	trans.Cleanup()
	startup.LogShutdownStepComplete("Encoder cleanup complete")

	if db != nil {
		startup.LogShutdownStep("Closing database")
		if err := db.Close(); err != nil {
			logging.Warn("Database close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Database closed")
		}
	}

	startup.LogShutdownComplete()
}
