package metrics

import (
	"sync"
	"time"

	"ffmpeg-cuda-api/internal/logging"
)

// StatsProvider supplies point-in-time gauges that are too expensive to
// update on every request.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current gauge values.
type Stats struct {
	WorkspaceFiles int
	WorkspaceBytes int64
	JobRecords     int64
	GPUAvailable   bool
}

// StatsProviderFunc adapts a plain function to StatsProvider.
type StatsProviderFunc func() Stats

// GetStats calls f.
func (f StatsProviderFunc) GetStats() Stats { return f() }

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	WorkspaceFilesTotal.Set(float64(stats.WorkspaceFiles))
	WorkspaceSizeBytes.Set(float64(stats.WorkspaceBytes))
	DBJobRecords.Set(float64(stats.JobRecords))
	if stats.GPUAvailable {
		GPUAvailable.Set(1)
	} else {
		GPUAvailable.Set(0)
	}

	logging.Debug("Metrics collected: workspace_files=%d, workspace_bytes=%d, job_records=%d, gpu=%t",
		stats.WorkspaceFiles, stats.WorkspaceBytes, stats.JobRecords, stats.GPUAvailable)
}
