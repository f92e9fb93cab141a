package sysprobe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"ffmpeg-cuda-api/internal/logging"
)

// Probe timeouts.
const (
	HealthTimeout = 5 * time.Second
	InfoTimeout   = 10 * time.Second
)

// GPUInfo describes the first GPU reported by the query tool.
type GPUInfo struct {
	Name          string `json:"name"`
	MemoryTotalMB int    `json:"memory_total_mb"`
	MemoryUsedMB  int    `json:"memory_used_mb"`
	MemoryFreeMB  int    `json:"memory_free_mb"`
}

// Health is the result of the quick checks behind /health.
type Health struct {
	FFmpegOK bool
	GPUOK    bool
	// GPUName is "Not detected" when the query tool failed.
	GPUName string
}

// Healthy reports whether both the encoder and the GPU responded.
func (h Health) Healthy() bool {
	return h.FFmpegOK && h.GPUOK
}

// Info is the capability report behind /info. Sections whose tool failed are
// left empty.
type Info struct {
	FFmpegVersion        string   `json:"ffmpeg_version,omitempty"`
	HardwareAccelerators []string `json:"hardware_accelerators,omitempty"`
	NVENCEncoders        []string `json:"nvenc_encoders,omitempty"`
	GPU                  *GPUInfo `json:"gpu,omitempty"`
	CUDAAvailable        bool     `json:"cuda_available"`
}

// Prober runs the encoder and GPU query binaries.
type Prober struct {
	ffmpeg   string
	gpuQuery string
}

// New returns a Prober. Empty names select "ffmpeg" and "nvidia-smi".
func New(ffmpeg, gpuQuery string) *Prober {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if gpuQuery == "" {
		gpuQuery = "nvidia-smi"
	}
	return &Prober{ffmpeg: ffmpeg, gpuQuery: gpuQuery}
}

// FFmpegResolvable reports whether the encoder binary can be found.
func (p *Prober) FFmpegResolvable() bool {
	_, err := exec.LookPath(p.ffmpeg)
	return err == nil
}

// Health runs "ffmpeg -version" and a GPU name query.
func (p *Prober) Health(ctx context.Context) Health {
	h := Health{GPUName: "Not detected"}

	if _, err := p.run(ctx, HealthTimeout, p.ffmpeg, "-version"); err == nil {
		h.FFmpegOK = true
	} else {
		logging.Debug("ffmpeg health check failed: %v", err)
	}

	out, err := p.run(ctx, HealthTimeout, p.gpuQuery, "--query-gpu=name", "--format=csv,noheader")
	if err == nil {
		h.GPUOK = true
		h.GPUName = strings.TrimSpace(out)
	} else {
		logging.Debug("GPU health check failed: %v", err)
	}

	return h
}

// GPUAvailable reports whether the GPU query tool answers.
func (p *Prober) GPUAvailable(ctx context.Context) bool {
	_, err := p.run(ctx, HealthTimeout, p.gpuQuery, "--query-gpu=name", "--format=csv,noheader")
	return err == nil
}

// Info gathers the encoder version, hardware accelerators, NVENC encoders
// and GPU memory. Failures of individual tools leave their section empty.
func (p *Prober) Info(ctx context.Context) Info {
	var info Info

	if out, err := p.run(ctx, InfoTimeout, p.ffmpeg, "-version"); err == nil {
		info.FFmpegVersion = firstLine(out)
	} else {
		logging.Warn("ffmpeg -version failed: %v", err)
	}

	if out, err := p.run(ctx, InfoTimeout, p.ffmpeg, "-hide_banner", "-hwaccels"); err == nil {
		info.HardwareAccelerators = ParseHWAccels(out)
	} else {
		logging.Warn("ffmpeg -hwaccels failed: %v", err)
	}

	if out, err := p.run(ctx, InfoTimeout, p.ffmpeg, "-hide_banner", "-encoders"); err == nil {
		info.NVENCEncoders = ParseNVENCEncoders(out)
	} else {
		logging.Warn("ffmpeg -encoders failed: %v", err)
	}

	out, err := p.run(ctx, InfoTimeout, p.gpuQuery,
		"--query-gpu=name,memory.total,memory.used", "--format=csv,noheader,nounits")
	if err == nil {
		gpu, parseErr := ParseGPUInfo(out)
		if parseErr != nil {
			logging.Warn("Unexpected GPU query output: %v", parseErr)
		}
		info.GPU = gpu
	} else {
		logging.Debug("GPU query failed: %v", err)
	}

	for _, a := range info.HardwareAccelerators {
		if a == "cuda" {
			info.CUDAAvailable = true
			break
		}
	}

	return info
}

// run executes name with args and returns stdout. A non-zero exit is an error
// carrying the first line of stderr.
func (p *Prober) run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := firstLine(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w - %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// ParseHWAccels parses "ffmpeg -hwaccels" output: a header line followed by
// one method per line.
func ParseHWAccels(out string) []string {
	lines := strings.Split(out, "\n")
	accels := []string{}
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			accels = append(accels, line)
		}
	}
	return accels
}

// ParseNVENCEncoders returns every "ffmpeg -encoders" line mentioning nvenc,
// trimmed.
func ParseNVENCEncoders(out string) []string {
	encoders := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(strings.ToLower(line), "nvenc") {
			encoders = append(encoders, line)
		}
	}
	return encoders
}

// ParseGPUInfo parses one "name, total, used" CSV line (nounits). Only the
// first GPU is reported.
func ParseGPUInfo(out string) (*GPUInfo, error) {
	line := firstLine(out)
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return nil, fmt.Errorf("expected 3 fields, got %q", line)
	}

	total, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return nil, fmt.Errorf("memory.total: %w", err)
	}
	used, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return nil, fmt.Errorf("memory.used: %w", err)
	}

	return &GPUInfo{
		Name:          strings.TrimSpace(fields[0]),
		MemoryTotalMB: total,
		MemoryUsedMB:  used,
		MemoryFreeMB:  total - used,
	}, nil
}
