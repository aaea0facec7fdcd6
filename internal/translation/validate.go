package translation

import (
	"strings"
	"unicode/utf8"
)

type Validation struct {
	Valid             bool    `json:"valid"`
	Reason            string  `json:"reason,omitempty"`
	LengthRatio       float64 `json:"length_ratio,omitempty"`
	TranslationLength int     `json:"translation_length,omitempty"`
	SourceLength      int     `json:"source_length,omitempty"`
}

// ValidateTranslation is a rough sanity check on a translation's size
// relative to its source.
func ValidateTranslation(translation, source string) Validation {
	if translation == "" || source == "" {
		return Validation{Reason: "Empty content"}
	}

	srcLen := utf8.RuneCountInString(source)
	trLen := utf8.RuneCountInString(translation)
	ratio := float64(trLen) / float64(srcLen)
	if ratio < 0.5 || ratio > 3 {
		return Validation{Reason: "Unusual length ratio"}
	}
	if utf8.RuneCountInString(strings.TrimSpace(translation)) < 5 {
		return Validation{Reason: "Translation too short"}
	}

	return Validation{Valid: true, LengthRatio: ratio, TranslationLength: trLen, SourceLength: srcLen}
}

type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

func SupportedLanguages() []Language {
	return []Language{
		{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
		{Code: "en-kn", Name: "Kanglish", NativeName: "Kanglish (ಕಂಗ್ಲಿಷ್)"},
		{Code: "en", Name: "English", NativeName: "English"},
	}
}
