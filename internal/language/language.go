// Package language defines the closed sets of languages and translation
// styles the workbench understands.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is one of the supported languages. Auto is only meaningful as a
// source language.
type Language string

const (
	Auto     Language = "auto"
	Korean   Language = "ko"
	Japanese Language = "ja"
	English  Language = "en"
)

// All lists every language in display order.
var All = []Language{Auto, Korean, Japanese, English}

// Targets lists the languages that may be used as a translation target.
var Targets = []Language{Korean, Japanese, English}

var labels = map[Language]string{
	Auto:     "언어 감지",
	Korean:   "한국어",
	Japanese: "일본어",
	English:  "영어",
}

var names = map[Language]string{
	Korean:   "Korean",
	Japanese: "Japanese",
	English:  "English",
}

var tags = map[Language]language.Tag{
	Korean:   language.Korean,
	Japanese: language.Japanese,
	English:  language.English,
}

// Parse accepts a language code ("ko"), an English name ("korean") or the
// display label ("한국어").
func Parse(s string) (Language, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, l := range All {
		if v == string(l) || v == strings.ToLower(names[l]) || v == labels[l] {
			return l, nil
		}
	}
	if v == "detect" || v == "" {
		return Auto, nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// ParseTarget is Parse restricted to valid target languages.
func ParseTarget(s string) (Language, error) {
	l, err := Parse(s)
	if err != nil {
		return "", err
	}
	if !l.IsTarget() {
		return "", fmt.Errorf("%q cannot be used as a target language", s)
	}
	return l, nil
}

func (l Language) Valid() bool {
	_, ok := labels[l]
	return ok
}

// IsTarget reports whether l may be used as a target language.
func (l Language) IsTarget() bool {
	_, ok := tags[l]
	return ok
}

// Label is the user-facing name shown in selectors.
func (l Language) Label() string { return labels[l] }

// Name is the English language name used in provider instructions.
func (l Language) Name() string { return names[l] }

// Tag returns the BCP 47 tag; Auto maps to language.Und.
func (l Language) Tag() language.Tag {
	if t, ok := tags[l]; ok {
		return t
	}
	return language.Und
}

func (l Language) String() string { return string(l) }

// Style selects the phrasing instructions sent to the translator.
type Style string

const (
	Literal Style = "literal"
	Natural Style = "natural"
)

// Styles lists every style in display order.
var Styles = []Style{Literal, Natural}

// ParseStyle accepts "literal"/"natural" or the Korean labels 직역/의역.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "literal", "직역":
		return Literal, nil
	case "natural", "의역":
		return Natural, nil
	}
	return "", fmt.Errorf("unknown style %q", s)
}

func (s Style) Valid() bool { return s == Literal || s == Natural }

// Label is the short badge text used in the history panel.
func (s Style) Label() string {
	if s == Literal {
		return "직역"
	}
	return "의역"
}

func (s Style) String() string { return string(s) }
