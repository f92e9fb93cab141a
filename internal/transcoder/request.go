package transcoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Defaults applied when a request leaves a field empty.
const (
	DefaultVideoCodec   = "h264_nvenc"
	DefaultAudioCodec   = "aac"
	DefaultPreset       = "fast"
	DefaultCRF          = "23"
	DefaultAudioBitrate = "128k"
)

// maxRequestBytes bounds the JSON body; filter graphs are the only long field.
const maxRequestBytes = 1 << 20

// Request is a parsed encode request. Empty strings mean "not provided".
// Request is treated as read-only once decoded.
type Request struct {
	Input         string `json:"input"`
	Output        string `json:"output"`
	Input2        string `json:"input2,omitempty"`
	AudioOnly     bool   `json:"audio_only,omitempty"`
	VideoOnly     bool   `json:"video_only,omitempty"`
	VideoCodec    string `json:"video_codec,omitempty"`
	AudioCodec    string `json:"audio_codec,omitempty"`
	Preset        string `json:"preset,omitempty"`
	CRF           CRF    `json:"crf,omitempty"`
	Bitrate       string `json:"bitrate,omitempty"`
	VideoFilter   string `json:"video_filter,omitempty"`
	AudioFilter   string `json:"audio_filter,omitempty"`
	ComplexFilter string `json:"complex_filter,omitempty"`
	CustomFilter  string `json:"custom_filter,omitempty"`
	Scale         string `json:"scale,omitempty"`
	AudioBitrate  string `json:"audio_bitrate,omitempty"`
}

// CRF is a constant-rate-factor value that may arrive as a JSON string or
// number. Numbers keep their literal text, so 18.5 stays "18.5".
type CRF string

// UnmarshalJSON implements json.Unmarshaler.
func (c *CRF) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CRF(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("crf must be a string or number, got %s", data)
	}
	*c = CRF(n.String())
	return nil
}

// DecodeRequest reads and validates a JSON request body. Every failure is a
// KindValidation *Error.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request

	body, err := io.ReadAll(io.LimitReader(r, maxRequestBytes+1))
	if err != nil {
		return req, newError(KindValidation, "decode", fmt.Errorf("failed to read request body: %w", err))
	}
	if len(body) > maxRequestBytes {
		return req, newError(KindValidation, "decode", fmt.Errorf("request body exceeds %d bytes", maxRequestBytes))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return req, newError(KindValidation, "decode", ErrNoBody)
	}

	if err := json.Unmarshal(trimmed, &req); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return req, newError(KindValidation, "decode", fmt.Errorf("malformed JSON at offset %d: %w", syntaxErr.Offset, err))
		case errors.As(err, &typeErr):
			return req, newError(KindValidation, "decode", fmt.Errorf("field %q has the wrong type: %w", typeErr.Field, err))
		default:
			return req, newError(KindValidation, "decode", err)
		}
	}

	return req, req.Validate()
}

// Validate checks the required fields.
func (r Request) Validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"input", r.Input},
		{"output", r.Output},
	} {
		if f.value == "" {
			return newError(KindValidation, "validate", fmt.Errorf("%w: %s", ErrMissingField, f.name))
		}
	}
	return nil
}

// EffectiveVideoCodec returns the video codec, applying the default.
func (r Request) EffectiveVideoCodec() string {
	return orDefault(r.VideoCodec, DefaultVideoCodec)
}

// EffectiveAudioCodec returns the audio codec, applying the default.
func (r Request) EffectiveAudioCodec() string {
	return orDefault(r.AudioCodec, DefaultAudioCodec)
}

// EffectivePreset returns the encoder preset, applying the default.
func (r Request) EffectivePreset() string {
	return orDefault(r.Preset, DefaultPreset)
}

// EffectiveCRF returns the quality value, applying the default.
func (r Request) EffectiveCRF() string {
	return orDefault(string(r.CRF), DefaultCRF)
}

// EffectiveAudioBitrate returns the audio bitrate, applying the default.
func (r Request) EffectiveAudioBitrate() string {
	return orDefault(r.AudioBitrate, DefaultAudioBitrate)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
