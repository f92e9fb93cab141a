package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"ffmpeg-cuda-api/internal/logging"
	"ffmpeg-cuda-api/internal/startup"
	"ffmpeg-cuda-api/internal/transcoder"
)

// Endpoint describes one public route.
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

// Endpoints lists the public routes, in the order they are documented.
var Endpoints = []Endpoint{
	{http.MethodGet, "/", "This documentation page"},
	{http.MethodGet, "/health", "Encoder and GPU health check"},
	{http.MethodGet, "/healthz", "Alias for /health"},
	{http.MethodGet, "/livez", "Liveness probe"},
	{http.MethodGet, "/readyz", "Readiness probe (encoder binary present)"},
	{http.MethodGet, "/files", "Media files in the workspace"},
	{http.MethodGet, "/info", "Encoder version, hardware accelerators, NVENC encoders, GPU memory"},
	{http.MethodGet, "/stats", "Encode counters since startup and slot usage"},
	{http.MethodPost, "/encode", "Run an encode job"},
	{http.MethodGet, "/jobs", "Recent encode jobs (?limit=N)"},
	{http.MethodGet, "/jobs/{id}", "One encode job"},
	{http.MethodGet, "/version", "Build information"},
}

// EndpointPaths returns the documented paths.
func EndpointPaths() []string {
	paths := make([]string, len(Endpoints))
	for i, e := range Endpoints {
		paths[i] = e.Path
	}
	return paths
}

type requestField struct {
	Name        string
	Default     string
	Description string
}

var requestFields = []requestField{
	{"input", "required", "Input path relative to the workspace, absolute, or concat:a.mp4|b.mp4"},
	{"output", "required", "Output path relative to the workspace or absolute"},
	{"input2", "", "Second input, e.g. an audio track"},
	{"audio_only", "false", "Drop video (-vn) and skip CUDA decoding"},
	{"video_only", "false", "Drop audio (-an)"},
	{"video_codec", transcoder.DefaultVideoCodec, "Video encoder"},
	{"audio_codec", transcoder.DefaultAudioCodec, "Audio encoder"},
	{"preset", transcoder.DefaultPreset, "Encoder preset (NVENC codecs only)"},
	{"crf", transcoder.DefaultCRF, "Quality level (NVENC codecs only, ignored when bitrate is set)"},
	{"bitrate", "", "Video bitrate, e.g. 5M"},
	{"scale", "", "GPU scaling, e.g. 1920:1080"},
	{"video_filter", "", "Video filter chain (applied after scale)"},
	{"audio_filter", "", "Audio filter chain"},
	{"complex_filter", "", "Filter graph passed as -filter_complex"},
	{"audio_bitrate", transcoder.DefaultAudioBitrate, "Audio bitrate (ignored for pcm_ codecs)"},
}

type docsData struct {
	Version    string
	APIVersion string
	Workspace  string
	Timeout    string
	Workers    int
	Endpoints  []Endpoint
	Fields     []requestField
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>FFmpeg CUDA API</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; padding: 20px; background: #f4f5f7; color: #333; }
.container { max-width: 1100px; margin: 0 auto; background: #fff; border-radius: 8px; padding: 30px; box-shadow: 0 4px 16px rgba(0,0,0,0.1); }
h1 { margin-top: 0; }
.status { background: #27ae60; color: #fff; padding: 12px; border-radius: 4px; }
table { border-collapse: collapse; width: 100%; margin: 16px 0; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #e1e4e8; }
code, pre { background: #f6f8fa; border-radius: 4px; }
pre { padding: 12px; overflow-x: auto; }
.method { font-weight: bold; font-family: monospace; }
</style>
</head>
<body>
<div class="container">
<h1>FFmpeg CUDA API</h1>
<p class="status">Version {{.Version}} &middot; API {{.APIVersion}} &middot; {{.Workers}} encode slots &middot; {{.Timeout}} job limit</p>

<h2>Endpoints</h2>
<table>
<tr><th>Method</th><th>Path</th><th>Description</th></tr>
{{range .Endpoints}}<tr><td class="method">{{.Method}}</td><td><code>{{.Path}}</code></td><td>{{.Description}}</td></tr>
{{end}}</table>

<h2>Encode request</h2>
<p>Relative paths resolve against <code>{{.Workspace}}</code>.</p>
<table>
<tr><th>Field</th><th>Default</th><th>Description</th></tr>
{{range .Fields}}<tr><td><code>{{.Name}}</code></td><td>{{if .Default}}<code>{{.Default}}</code>{{end}}</td><td>{{.Description}}</td></tr>
{{end}}</table>

<h2>Examples</h2>
<pre>curl -X POST http://localhost:5000/encode \
  -H 'Content-Type: application/json' \
  -d '{"input": "input.mp4", "output": "output.mp4", "scale": "1280:720"}'</pre>
<pre>curl -X POST http://localhost:5000/encode \
  -H 'Content-Type: application/json' \
  -d '{"input": "concat:part1.mp4|part2.mp4", "output": "joined.mp4"}'</pre>
<pre>curl -X POST http://localhost:5000/encode \
  -H 'Content-Type: application/json' \
  -d '{"input": "song.wav", "output": "song.m4a", "audio_only": true, "audio_bitrate": "192k"}'</pre>

<h2>Errors</h2>
<p>Failed requests answer with <code>"status": "error"</code>, an <code>error_type</code>
(<code>validation</code>, <code>input_not_found</code>, <code>manifest_write</code>, <code>timeout</code>,
<code>encode_failed</code> or <code>unexpected</code>) and a <code>message</code>. When the encoder ran,
its output is included as <code>ffmpeg_stdout</code> and <code>ffmpeg_stderr</code>.</p>
</div>
</body>
</html>
`))

// Docs serves the HTML documentation page.
func (h *Handlers) Docs(w http.ResponseWriter, _ *http.Request) {
	data := docsData{
		Version:    startup.Version,
		APIVersion: startup.APIVersion,
		Workers:    h.limiter.Capacity(),
		Endpoints:  Endpoints,
		Fields:     requestFields,
	}
	if h.workspace != nil {
		data.Workspace = h.workspace.Root()
	}
	if h.encoder != nil {
		data.Timeout = h.encoder.Timeout().String()
	}

	var buf bytes.Buffer
	if err := docsTemplate.Execute(&buf, data); err != nil {
		logging.Error("failed to render docs page: %v", err)
		writeJSONError(w, "failed to render documentation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logging.Debug("failed to write docs page: %v", err)
	}
}
