// Package validator checks that translator output is written in the requested
// target language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/glosstran/internal/detector"
	"github.com/valpere/glosstran/internal/language"
)

// minValidationLength is the minimum rune count required to attempt detection.
const minValidationLength = 12

var ErrEmpty = errors.New("translation is empty")

// Validator is backed by the shared lingua detector; build it once.
type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// Check returns nil when text looks like it is written in target. Short or
// ambiguous texts pass. A mismatch error names both languages.
func (v *Validator) Check(text string, target language.Language) error {
	if !target.IsTarget() {
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmpty
	}
	if len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.Detect(text)
	if !ok {
		return nil
	}
	if detected != target {
		return fmt.Errorf("expected %s but detected %s", target.Name(), detected.Name())
	}
	return nil
}
