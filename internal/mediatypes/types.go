package mediatypes

// FileType represents the type of a media file.
type FileType string

const (
	// FileTypeVideo represents a video container.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents an audio-only file.
	FileTypeAudio FileType = "audio"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// VideoExtensions maps file extensions to whether they are listed video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".flv":  true,
	".m4v":  true,
	".wmv":  true,
	".3gp":  true,
}

// AudioExtensions maps file extensions to whether they are listed audio formats.
var AudioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".aac":  true,
	".flac": true,
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp4").
func GetFileType(ext string) FileType {
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	if AudioExtensions[ext] {
		return FileTypeAudio
	}
	return FileTypeOther
}

// IsMediaFile returns true if the extension represents a listed media file.
func IsMediaFile(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}
