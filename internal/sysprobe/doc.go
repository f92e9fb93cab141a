// Package sysprobe queries the encoder and the GPU for the health and info
// endpoints.
//
// It shells out to "ffmpeg -version", "ffmpeg -hwaccels", "ffmpeg -encoders"
// and "nvidia-smi --query-gpu=..." with short timeouts, and parses their
// plain-text output. Nothing here is cached; each call runs the tools again.
package sysprobe
