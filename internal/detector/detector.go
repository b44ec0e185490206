package detector

import (
	"strings"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/glosstran/internal/language"
)

// minLetters is the smallest sample the detector is asked about.
const minLetters = 2

var fromLingua = map[lingua.Language]language.Language{
	lingua.Korean:   language.Korean,
	lingua.Japanese: language.Japanese,
	lingua.English:  language.English,
}

// Detector identifies which of the supported languages a text is written in.
// Building the underlying model is expensive; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Korean, lingua.Japanese, lingua.English).
		Build()

	return &Detector{detector: detector}
}

// Detect returns the most likely language of text. ok is false for blank or
// very short samples and when the detector cannot decide.
func (d *Detector) Detect(text string) (language.Language, bool) {
	sample := strings.TrimSpace(text)
	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minLetters {
		return language.Auto, false
	}

	lang, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return language.Auto, false
	}
	l, ok := fromLingua[lang]
	return l, ok
}
