package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"ffmpeg-cuda-api/internal/logging"

	"github.com/gorilla/mux"
	"github.com/pelletier/go-toml/v2"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// APIVersion is the version of the HTTP API contract.
const APIVersion = "1.0"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	Commit     string `json:"commit"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:    Version,
		APIVersion: APIVersion,
		Commit:     Commit,
		BuildTime:  BuildTime,
		GoVersion:  GoVersion,
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Defaults for values not set in the config file or environment.
const (
	DefaultWorkspaceDir    = "/workspace"
	DefaultDatabaseDir     = "/database"
	DefaultPort            = "5000"
	DefaultMetricsPort     = "9090"
	DefaultEncoderBinary   = "ffmpeg"
	DefaultGPUQueryBinary  = "nvidia-smi"
	DefaultEncodeTimeout   = time.Hour
	DefaultEncodeWorkers   = 2
	DefaultMaxCaptureBytes = 4 << 20
)

// Config holds all application configuration
type Config struct {
	WorkspaceDir    string
	ScratchDir      string
	DatabaseDir     string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	EncoderBinary   string
	GPUQueryBinary  string
	EncodeTimeout   time.Duration
	EncodeWorkers   int
	MaxCaptureBytes int
	LogHealthChecks bool

	// HistoryEnabled is false when disabled by configuration or when the
	// database directory is not writable.
	HistoryEnabled bool

	// Derived paths
	DatabasePath string
}

// fileConfig mirrors the TOML config file. Durations are Go duration strings.
type fileConfig struct {
	WorkspaceDir    string `toml:"workspace_dir"`
	ScratchDir      string `toml:"scratch_dir"`
	DatabaseDir     string `toml:"database_dir"`
	Port            string `toml:"port"`
	MetricsPort     string `toml:"metrics_port"`
	MetricsEnabled  bool   `toml:"metrics_enabled"`
	EncoderBinary   string `toml:"encoder_binary"`
	GPUQueryBinary  string `toml:"gpu_query_binary"`
	EncodeTimeout   string `toml:"encode_timeout"`
	EncodeWorkers   int    `toml:"encode_workers"`
	MaxCaptureBytes int    `toml:"max_capture_bytes"`
	HistoryEnabled  bool   `toml:"history_enabled"`
	LogHealthChecks bool   `toml:"log_health_checks"`
	LogLevel        string `toml:"log_level"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		WorkspaceDir:    DefaultWorkspaceDir,
		ScratchDir:      filepath.Join(os.TempDir(), "ffmpeg-cuda-api"),
		DatabaseDir:     DefaultDatabaseDir,
		Port:            DefaultPort,
		MetricsPort:     DefaultMetricsPort,
		MetricsEnabled:  true,
		EncoderBinary:   DefaultEncoderBinary,
		GPUQueryBinary:  DefaultGPUQueryBinary,
		EncodeTimeout:   DefaultEncodeTimeout.String(),
		EncodeWorkers:   DefaultEncodeWorkers,
		MaxCaptureBytes: DefaultMaxCaptureBytes,
		HistoryEnabled:  true,
		LogHealthChecks: true,
	}
}

// readConfigFile decodes path over the defaults. Keys missing from the file
// keep their default values.
func readConfigFile(path string) (fileConfig, error) {
	fc := defaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// applyEnv overrides file values with environment variables.
func applyEnv(fc fileConfig) fileConfig {
	fc.WorkspaceDir = getEnv("WORKSPACE_DIR", fc.WorkspaceDir)
	fc.ScratchDir = getEnv("SCRATCH_DIR", fc.ScratchDir)
	fc.DatabaseDir = getEnv("DATABASE_DIR", fc.DatabaseDir)
	fc.Port = getEnv("PORT", fc.Port)
	fc.MetricsPort = getEnv("METRICS_PORT", fc.MetricsPort)
	fc.MetricsEnabled = getEnvBool("METRICS_ENABLED", fc.MetricsEnabled)
	fc.EncoderBinary = getEnv("ENCODER_BINARY", fc.EncoderBinary)
	fc.GPUQueryBinary = getEnv("GPU_QUERY_BINARY", fc.GPUQueryBinary)
	fc.EncodeTimeout = getEnv("ENCODE_TIMEOUT", fc.EncodeTimeout)
	fc.EncodeWorkers = getEnvInt("ENCODE_WORKERS", fc.EncodeWorkers)
	fc.MaxCaptureBytes = getEnvInt("MAX_CAPTURE_BYTES", fc.MaxCaptureBytes)
	fc.HistoryEnabled = getEnvBool("HISTORY_ENABLED", fc.HistoryEnabled)
	fc.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", fc.LogHealthChecks)
	fc.LogLevel = getEnv("LOG_LEVEL", fc.LogLevel)
	return fc
}

// resolve converts raw values into a Config, falling back to defaults for
// anything unparseable.
func resolve(fc fileConfig) *Config {
	timeout, err := time.ParseDuration(fc.EncodeTimeout)
	if err != nil || timeout <= 0 {
		logging.Warn("  Invalid ENCODE_TIMEOUT %q, using default: %s", fc.EncodeTimeout, DefaultEncodeTimeout)
		timeout = DefaultEncodeTimeout
	}

	workers := fc.EncodeWorkers
	if workers < 1 {
		logging.Warn("  Invalid ENCODE_WORKERS %d, using default: %d", workers, DefaultEncodeWorkers)
		workers = DefaultEncodeWorkers
	}

	maxCapture := fc.MaxCaptureBytes
	if maxCapture < 1 {
		logging.Warn("  Invalid MAX_CAPTURE_BYTES %d, using default: %d", maxCapture, DefaultMaxCaptureBytes)
		maxCapture = DefaultMaxCaptureBytes
	}

	return &Config{
		WorkspaceDir:    fc.WorkspaceDir,
		ScratchDir:      fc.ScratchDir,
		DatabaseDir:     fc.DatabaseDir,
		Port:            fc.Port,
		MetricsPort:     fc.MetricsPort,
		MetricsEnabled:  fc.MetricsEnabled,
		EncoderBinary:   fc.EncoderBinary,
		GPUQueryBinary:  fc.GPUQueryBinary,
		EncodeTimeout:   timeout,
		EncodeWorkers:   workers,
		MaxCaptureBytes: maxCapture,
		HistoryEnabled:  fc.HistoryEnabled,
		LogHealthChecks: fc.LogHealthChecks,
	}
}

// LoadConfig loads and validates configuration from the optional TOML file
// named by CONFIG_FILE and from environment variables, which take precedence.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	fc := defaultFileConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		fc, err = readConfigFile(path)
		if err != nil {
			return nil, err
		}
		logging.Info("  CONFIG_FILE:         %s", path)
	}
	fc = applyEnv(fc)

	if fc.LogLevel != "" {
		logging.SetLevel(logging.ParseLevel(fc.LogLevel))
	}

	config := resolve(fc)

	logging.Info("  WORKSPACE_DIR:       %s", config.WorkspaceDir)
	logging.Info("  SCRATCH_DIR:         %s", config.ScratchDir)
	logging.Info("  DATABASE_DIR:        %s", config.DatabaseDir)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  ENCODER_BINARY:      %s", config.EncoderBinary)
	logging.Info("  GPU_QUERY_BINARY:    %s", config.GPUQueryBinary)
	logging.Info("  ENCODE_TIMEOUT:      %s", config.EncodeTimeout)
	logging.Info("  ENCODE_WORKERS:      %d", config.EncodeWorkers)
	logging.Info("  MAX_CAPTURE_BYTES:   %s", formatBytes(int64(config.MaxCaptureBytes)))
	logging.Info("  HISTORY_ENABLED:     %v", config.HistoryEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := config.setupDirectories(); err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Job history: %s", enabledString(config.HistoryEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// setupDirectories makes every directory path absolute and prepares the
// scratch and database directories. The workspace is checked but never
// created; it is expected to be a mounted volume.
func (c *Config) setupDirectories() error {
	var err error

	if c.WorkspaceDir, err = filepath.Abs(c.WorkspaceDir); err != nil {
		return fmt.Errorf("failed to resolve workspace directory path: %w", err)
	}
	logging.Info("  Workspace directory (absolute): %s", c.WorkspaceDir)

	if c.ScratchDir, err = filepath.Abs(c.ScratchDir); err != nil {
		return fmt.Errorf("failed to resolve scratch directory path: %w", err)
	}
	logging.Info("  Scratch directory (absolute): %s", c.ScratchDir)

	if c.DatabaseDir, err = filepath.Abs(c.DatabaseDir); err != nil {
		return fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", c.DatabaseDir)
	c.DatabasePath = filepath.Join(c.DatabaseDir, "jobs.db")

	if err := checkDirectory(c.WorkspaceDir, "workspace"); err != nil {
		logging.Warn("  Workspace directory issue: %v", err)
		logging.Warn("  Encode requests will fail with input_not_found until it is mounted")
	}

	if !setupOptionalDir(c.ScratchDir, "scratch") {
		logging.Warn("  Concat inputs will fail with manifest_write errors")
	}

	if c.HistoryEnabled && !setupOptionalDir(c.DatabaseDir, "database") {
		c.HistoryEnabled = false
	}

	return nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("JOB HISTORY INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if err != nil {
		logging.Warn("  Job history unavailable: %v", err)
		logging.Warn("  /jobs endpoints will return 503")
		return
	}
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogEncoderInit logs encoder setup and checks that the binary runs.
func LogEncoderInit(binary string, workers int, timeout time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("ENCODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Worker slots:    %d", workers)
	logging.Info("  Job timeout:     %s", timeout)

	if err := checkEncoder(binary); err != nil {
		logging.Warn("  Encoder check failed: %v", err)
		logging.Warn("  Encode requests will fail until %s is installed", binary)
	} else {
		logging.Info("  [OK] %s is available", binary)
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	first, _, _ := strings.Cut(path, "/")
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s", config.Port)
	logging.Info("    Docs:          http://0.0.0.0:%s/", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   __  __                                       _
  / _|/ _|_ __ ___  _ __   ___  __ _    ___ _  _| |__ _
 |  _|  _| '_ ' _ \| '_ \ / -_)/ _' |  / __| || / _' / _' |
 |_| |_| |_| |_| |_| .__/ \___|\__, |  \___|\_,_\__,_\__,_|
                   |_|         |___/        encode API
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  API:        %s", APIVersion)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies that path is an existing directory without
// creating it.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("    Contents: %d entries (top level)", len(entries))
		}
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkEncoder(binary string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", binary)
	}
	logging.Debug("  Encoder path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get encoder version: %w", err)
	}

	first, _, _ := strings.Cut(string(output), "\n")
	logging.Info("  Encoder version: %s", strings.TrimSpace(first))

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// formatBytes formats bytes into human-readable string
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
