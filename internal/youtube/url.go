// Package youtube validates watch URLs and downloads videos with yt-dlp.
package youtube

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned for anything but a full https://www.youtube.com/watch?v=ID URL.
var ErrInvalidURL = errors.New("invalid YouTube URL format: only full URLs like https://www.youtube.com/watch?v=VIDEO_ID are supported")

var watchURL = regexp.MustCompile(`^https://www\.youtube\.com/watch\?v=([\w-]{11})$`)

// ValidateURL returns the trimmed URL and its video ID. Short links, mobile
// hosts and extra query parameters are rejected.
func ValidateURL(raw string) (url, videoID string, ok bool) {
	url = strings.TrimSpace(raw)
	m := watchURL.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return url, m[1], true
}
