package transcription

import (
	"testing"
	"time"
)

func TestParseVTT(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     int
		wantText string
		wantErr  bool
	}{
		{
			name: "basic vtt",
			content: `WEBVTT

00:00:01.000 --> 00:00:04.000
Hello, this is the first subtitle

00:00:04.100 --> 00:00:08.000
This is the second subtitle`,
			want:     2,
			wantText: "Hello, this is the first subtitle This is the second subtitle",
		},
		{
			name: "multi-line subtitle",
			content: `WEBVTT

00:00:01.000 --> 00:00:04.000
Hello, this is
a multi-line subtitle

00:00:04.100 --> 00:00:08.000
Second entry`,
			want:     2,
			wantText: "Hello, this is a multi-line subtitle Second entry",
		},
		{
			name:    "invalid header",
			content: "NOT A VTT FILE",
			wantErr: true,
		},
		{
			name: "empty lines between entries",
			content: `WEBVTT


00:00:01.000 --> 00:00:04.000
First entry


00:00:04.100 --> 00:00:08.000
Second entry`,
			want:     2,
			wantText: "First entry Second entry",
		},
		{
			name:     "escaped newlines and cue identifiers",
			content:  `"WEBVTT\n\n1\n00:01.000 --> 00:02.500 align:start\nShort form\n\nNOTE ignored\n\n2\n00:02.500 --> 00:03.000\nDone"`,
			want:     2,
			wantText: "Short form Done",
		},
		{
			name:    "bad timestamp",
			content: "WEBVTT\n\n00:00:xx.000 --> 00:00:01.000\nBroken",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cues, err := ParseVTT(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVTT() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(cues) != tt.want {
				t.Errorf("ParseVTT() got %d cues, want %d", len(cues), tt.want)
			}
			if got := PlainText(cues); got != tt.wantText {
				t.Errorf("PlainText() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestParseVTTTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      time.Duration
		wantErr   bool
	}{
		{name: "zero timestamp", timestamp: "00:00:00.000", want: 0},
		{name: "one second", timestamp: "00:00:01.000", want: time.Second},
		{name: "with hours", timestamp: "01:00:00.000", want: time.Hour},
		{name: "with milliseconds", timestamp: "00:00:00.500", want: 500 * time.Millisecond},
		{
			name:      "complex time",
			timestamp: "01:23:45.678",
			want:      1*time.Hour + 23*time.Minute + 45*time.Second + 678*time.Millisecond,
		},
		{name: "short form", timestamp: "02:03.450", want: 2*time.Minute + 3*time.Second + 450*time.Millisecond},
		{name: "invalid format", timestamp: "1:23:45.678", wantErr: true},
		{name: "missing milliseconds", timestamp: "00:00:01", wantErr: true},
		{name: "too many parts", timestamp: "00:00:00:01.000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVTTTimestamp(tt.timestamp)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseVTTTimestamp() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseVTTTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDurationLabel(t *testing.T) {
	tests := []struct {
		in   *Result
		want string
	}{
		{in: nil, want: UnknownDuration},
		{in: &Result{}, want: UnknownDuration},
		{in: &Result{Duration: 59*time.Second + 600*time.Millisecond}, want: "01:00"},
		{in: &Result{Duration: 4*time.Minute + 5*time.Second}, want: "04:05"},
		{in: &Result{Duration: time.Hour + 2*time.Minute + 3*time.Second}, want: "1:02:03"},
	}
	for _, tt := range tests {
		if got := tt.in.DurationLabel(); got != tt.want {
			t.Errorf("DurationLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
