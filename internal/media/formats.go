// Package media validates uploaded media names and maps them to content types.
package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	TypeVideo = "video"
	TypeAudio = "audio"
	TypeText  = "text"
)

var videoExtensions = map[string]bool{
	"mp4": true, "webm": true, "mov": true, "avi": true, "mkv": true,
	"flv": true, "wmv": true, "m4v": true, "3gp": true, "ogv": true,
	"asf": true, "ts": true, "rm": true, "rmvb": true, "mpg": true,
}

var audioExtensions = map[string]bool{
	"mp3": true, "wav": true, "ogg": true, "aac": true, "flac": true,
	"m4a": true, "wma": true, "opus": true, "mka": true,
}

var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
	".ogv":  "video/ogg",
	".asf":  "video/x-ms-asf",
	".ts":   "video/mp2t",
	".rm":   "application/vnd.rn-realmedia",
	".rmvb": "application/vnd.rn-realmedia-vbr",
	".mpg":  "video/mpeg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".wma":  "audio/x-ms-wma",
	".opus": "audio/opus",
	".mka":  "audio/x-matroska",
}

// IsSupported reports whether ext (without the dot, any case) is an accepted upload format.
func IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	return videoExtensions[ext] || audioExtensions[ext]
}

// FormatError explains why an upload name was rejected. Reason is shown to
// the user as is.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return e.Reason }

// ValidateFileFormat checks an uploaded file name against the supported formats.
func ValidateFileFormat(filename string) error {
	if filename == "" {
		return &FormatError{Reason: "No filename provided"}
	}
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return &FormatError{Reason: "File has no extension"}
	}
	ext := strings.ToLower(filename[i+1:])
	if !IsSupported(ext) {
		return &FormatError{Reason: fmt.Sprintf("Unsupported format: .%s", ext)}
	}
	return nil
}

// MediaTypeFromExtension returns TypeVideo or TypeAudio. Names without a known
// video extension are treated as audio; an empty name is a YouTube download and
// therefore video.
func MediaTypeFromExtension(filename string) string {
	if filename == "" {
		return TypeVideo
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if videoExtensions[ext] {
		return TypeVideo
	}
	return TypeAudio
}

// MIMEType returns the Content-Type to serve filename with.
func MIMEType(filename string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return "application/octet-stream"
}
