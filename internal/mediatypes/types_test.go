package mediatypes

import (
	"testing"
)

func TestGetFileType(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want FileType
	}{
		{"MP4 video", ".mp4", FileTypeVideo},
		{"MKV video", ".mkv", FileTypeVideo},
		{"WebM video", ".webm", FileTypeVideo},
		{"3GP video", ".3gp", FileTypeVideo},
		{"WAV audio", ".wav", FileTypeAudio},
		{"FLAC audio", ".flac", FileTypeAudio},
		{"AAC audio", ".aac", FileTypeAudio},
		{"image is not media", ".jpg", FileTypeOther},
		{"manifest is not media", ".txt", FileTypeOther},
		{"uppercase is not normalised", ".MP4", FileTypeOther},
		{"empty extension", "", FileTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetFileType(tt.ext); got != tt.want {
				t.Errorf("GetFileType(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestIsMediaFile(t *testing.T) {
	for ext := range VideoExtensions {
		if !IsMediaFile(ext) {
			t.Errorf("IsMediaFile(%q) = false, want true", ext)
		}
	}
	for ext := range AudioExtensions {
		if !IsMediaFile(ext) {
			t.Errorf("IsMediaFile(%q) = false, want true", ext)
		}
	}
	if IsMediaFile(".srt") {
		t.Error("IsMediaFile(.srt) = true, want false")
	}
}

func TestExtensionSetsDisjoint(t *testing.T) {
	for ext := range VideoExtensions {
		if AudioExtensions[ext] {
			t.Errorf("extension %q is both video and audio", ext)
		}
	}
}
