package media

import (
	"path/filepath"
	"regexp"
)

const (
	maxFilenameRunes = 100
	fallbackFilename = "unnamed_file"
)

var (
	reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	unsafeChars   = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\-.]`)
	spaceRuns     = regexp.MustCompile(`[\s_]+`)
)

// SanitizeFilename makes name safe to use as a file in the upload directory.
// Letters and digits in any script survive; emoji, punctuation and path
// separators do not.
func SanitizeFilename(name string) string {
	if name == "" {
		return fallbackFilename
	}

	name = reservedChars.ReplaceAllString(name, "")
	name = unsafeChars.ReplaceAllString(name, "")
	name = spaceRuns.ReplaceAllString(name, "_")

	if r := []rune(name); len(r) > maxFilenameRunes {
		ext := filepath.Ext(name)
		stem := []rune(name[:len(name)-len(ext)])
		if len(stem) > maxFilenameRunes-4 {
			stem = stem[:maxFilenameRunes-4]
		}
		name = string(stem) + "..." + ext
	}

	if name == "" || name == "." || name == ".." {
		return fallbackFilename
	}
	return name
}
