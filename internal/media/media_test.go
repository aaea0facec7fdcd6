package media

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateFileFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  string
	}{
		{name: "video", filename: "lecture.mp4"},
		{name: "audio upper case", filename: "Podcast.MP3"},
		{name: "multiple dots", filename: "my.talk.final.webm"},
		{name: "empty", filename: "", wantErr: "No filename provided"},
		{name: "no extension", filename: "recording", wantErr: "File has no extension"},
		{name: "unsupported", filename: "notes.PDF", wantErr: "Unsupported format: .pdf"},
		{name: "trailing dot", filename: "clip.", wantErr: "Unsupported format: ."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileFormat(tt.filename)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateFileFormat(%q) error = %v, want nil", tt.filename, err)
				}
				return
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("ValidateFileFormat(%q) error = %v, want *FormatError", tt.filename, err)
			}
			if fe.Reason != tt.wantErr {
				t.Errorf("ValidateFileFormat(%q) reason = %q, want %q", tt.filename, fe.Reason, tt.wantErr)
			}
		})
	}
}

func TestMediaTypeFromExtension(t *testing.T) {
	tests := map[string]string{
		"":          TypeVideo,
		"a.mp4":     TypeVideo,
		"a.MKV":     TypeVideo,
		"a.ts":      TypeVideo,
		"a.mp3":     TypeAudio,
		"a.opus":    TypeAudio,
		"README":    TypeAudio,
		"video.txt": TypeAudio,
	}
	for in, want := range tests {
		if got := MediaTypeFromExtension(in); got != want {
			t.Errorf("MediaTypeFromExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"clip.mov":     "video/quicktime",
		"clip.M4A":     "audio/mp4",
		"clip.rmvb":    "application/vnd.rn-realmedia-vbr",
		"clip.ts":      "video/mp2t",
		"clip.xyz":     "application/octet-stream",
		"no_extension": "application/octet-stream",
	}
	for in, want := range tests {
		if got := MIMEType(in); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "unnamed_file"},
		{name: "plain", in: "lecture.mp4", want: "lecture.mp4"},
		{name: "spaces", in: "my   great  talk.mp4", want: "my_great_talk.mp4"},
		{name: "reserved chars", in: `a<b>c:d"e/f\g|h?i*j.mp3`, want: "abcdefghij.mp3"},
		{name: "emoji and punctuation", in: "🔥 Hot take! (live).mp4", want: "_Hot_take_live.mp4"},
		{name: "underscore runs", in: "a__ _b.wav", want: "a_b.wav"},
		{name: "kannada title", in: "ಕನ್ನಡ ಹಾಡು.mp4", want: "ಕನ್ನಡ_ಹಾಡು.mp4"},
		{name: "only symbols", in: "!!!", want: "unnamed_file"},
		{name: "traversal", in: "../../etc/passwd", want: "....etcpasswd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("ab", 80) + ".mp4"

	got := SanitizeFilename(long)

	if !strings.HasSuffix(got, "....mp4") {
		t.Errorf("truncated name %q should end with ....mp4", got)
	}
	if n := utf8.RuneCountInString(got); n != 96+3+4 {
		t.Errorf("truncated name has %d runes, want %d", n, 96+3+4)
	}
}
