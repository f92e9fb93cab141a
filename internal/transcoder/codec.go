package transcoder

import "strings"

// CodecFamily groups video encoders by the option set they accept.
type CodecFamily int

const (
	// FamilySoftware covers CPU encoders (libx264, libx265, libvpx-vp9, copy...).
	// They take neither the NVENC presets nor the -crf value emitted here.
	FamilySoftware CodecFamily = iota
	// FamilyNVENC covers NVIDIA hardware encoders (h264_nvenc, hevc_nvenc, av1_nvenc).
	FamilyNVENC
)

// nvencMarker identifies NVENC encoders. Classification is a substring test on
// the encoder name; ffmpeg has no richer metadata to go on without probing.
const nvencMarker = "nvenc"

// pcmPrefix identifies uncompressed PCM audio encoders (pcm_s16le, pcm_f32le...).
const pcmPrefix = "pcm_"

func (f CodecFamily) String() string {
	switch f {
	case FamilyNVENC:
		return "nvenc"
	default:
		return "software"
	}
}

// ClassifyVideoCodec returns FamilyNVENC when the encoder name contains
// "nvenc", FamilySoftware otherwise.
func ClassifyVideoCodec(name string) CodecFamily {
	if strings.Contains(name, nvencMarker) {
		return FamilyNVENC
	}
	return FamilySoftware
}

// IsPCMAudioCodec reports whether name is an uncompressed PCM encoder, for
// which a bitrate is meaningless.
func IsPCMAudioCodec(name string) bool {
	return strings.HasPrefix(name, pcmPrefix)
}
