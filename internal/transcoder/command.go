package transcoder

import "strings"

// hwScaleFilter runs on device memory, so it must come first in a -vf chain.
const hwScaleFilter = "scale_cuda"

// Inputs holds the resolved paths a command is built from.
type Inputs struct {
	// Primary is the resolved input, or the manifest path when Concat is set.
	Primary string
	Concat  bool
	// Secondary is the resolved input2, empty when absent.
	Secondary string
	Output    string
}

// BuildCommand returns the encoder argument vector for req. It has no side
// effects and returns an identical slice for identical arguments.
//
// Flag order matters to ffmpeg: input options precede their -i, the filter
// graph precedes the stream options that consume its labels, and the output
// path comes last.
func BuildCommand(binary string, req Request, in Inputs) []string {
	argv := []string{binary, "-y"}

	if !req.AudioOnly {
		argv = append(argv, "-hwaccel", "cuda")
	}

	if in.Concat {
		argv = append(argv, "-f", "concat", "-safe", "0", "-i", in.Primary)
	} else {
		argv = append(argv, "-i", in.Primary)
	}

	if in.Secondary != "" {
		argv = append(argv, "-i", in.Secondary)
	}

	if req.ComplexFilter != "" {
		argv = append(argv, "-filter_complex", req.ComplexFilter)
	}

	if req.AudioOnly {
		argv = append(argv, "-vn")
	} else {
		argv = appendVideoArgs(argv, req)
	}

	if req.VideoOnly {
		argv = append(argv, "-an")
	} else {
		argv = appendAudioArgs(argv, req)
	}

	return append(argv, in.Output)
}

func appendVideoArgs(argv []string, req Request) []string {
	codec := req.EffectiveVideoCodec()
	family := ClassifyVideoCodec(codec)

	argv = append(argv, "-c:v", codec)

	if family == FamilyNVENC {
		argv = append(argv, "-preset", req.EffectivePreset())
	}

	switch {
	case req.Bitrate != "":
		argv = append(argv, "-b:v", req.Bitrate)
	case family == FamilyNVENC:
		argv = append(argv, "-crf", req.EffectiveCRF())
	}

	if vf := videoFilterChain(req.Scale, req.VideoFilter); vf != "" {
		argv = append(argv, "-vf", vf)
	}

	return argv
}

// videoFilterChain composes the -vf value: the hardware scaler first, then
// the caller's filter verbatim.
func videoFilterChain(scale, filter string) string {
	switch {
	case scale != "" && filter != "":
		return hwScaleFilter + "=" + scale + "," + filter
	case scale != "":
		return hwScaleFilter + "=" + scale
	default:
		return filter
	}
}

func appendAudioArgs(argv []string, req Request) []string {
	codec := req.EffectiveAudioCodec()
	argv = append(argv, "-c:a", codec)

	if !IsPCMAudioCodec(codec) {
		argv = append(argv, "-b:a", req.EffectiveAudioBitrate())
	}

	if req.AudioFilter != "" {
		argv = append(argv, "-af", req.AudioFilter)
	}

	return argv
}

// FormatCommand joins argv with single spaces for logs and responses. The
// result is not shell-quoted.
func FormatCommand(argv []string) string {
	return strings.Join(argv, " ")
}
