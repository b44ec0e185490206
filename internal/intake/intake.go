// Package intake holds the one staged image of the OCR flow and the text
// extracted from it while the user reviews it.
package intake

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/valpere/glosstran/internal/translator"
)

type State string

const (
	StateEmpty      State = "empty"
	StateStaged     State = "staged"
	StateExtracting State = "extracting"
	StateVerify     State = "verify"
)

var (
	ErrNoImage      = errors.New("no image staged")
	ErrExtracting   = errors.New("extraction already in progress")
	ErrNotVerifying = errors.New("no extracted text to review")
)

// Snapshot is a copy of the intake state without the image bytes.
type Snapshot struct {
	State    State  `json:"state"`
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Size     int    `json:"size,omitempty"`
	Text     string `json:"text"`
}

type Intake struct {
	mu    sync.Mutex
	state State
	image translator.Image
	text  string
}

func New() *Intake {
	return &Intake{state: StateEmpty}
}

// Stage replaces the staged image. Uploads, drops and pastes all land here.
// Payloads that are not images, and any image arriving mid-extraction, are
// ignored and false is returned.
func (in *Intake) Stage(name string, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return false
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state == StateExtracting {
		return false
	}
	in.image = translator.Image{Name: name, MIMEType: mimeType, Data: append([]byte(nil), data...)}
	in.text = ""
	in.state = StateStaged
	return true
}

// BeginExtract moves a staged image into extraction and returns it.
func (in *Intake) BeginExtract() (translator.Image, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	switch in.state {
	case StateExtracting:
		return translator.Image{}, ErrExtracting
	case StateEmpty, StateVerify:
		return translator.Image{}, ErrNoImage
	}
	in.state = StateExtracting
	return in.image, nil
}

// Finish stores the extracted text for review.
func (in *Intake) Finish(text string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state != StateExtracting {
		return
	}
	in.text = text
	in.state = StateVerify
}

// Abort returns an extraction to the staged image, after a stop or a failure.
func (in *Intake) Abort() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state == StateExtracting {
		in.state = StateStaged
	}
}

// EditText replaces the extracted text under review.
func (in *Intake) EditText(text string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state != StateVerify {
		return ErrNotVerifying
	}
	in.text = text
	return nil
}

// Confirm hands the reviewed text over and empties the intake.
func (in *Intake) Confirm() (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state != StateVerify {
		return "", ErrNotVerifying
	}
	text := in.text
	in.resetLocked()
	return text, nil
}

// Clear discards the image and any extracted text.
func (in *Intake) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.resetLocked()
}

func (in *Intake) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return Snapshot{
		State:    in.state,
		Name:     in.image.Name,
		MIMEType: in.image.MIMEType,
		Size:     len(in.image.Data),
		Text:     in.text,
	}
}

func (in *Intake) resetLocked() {
	in.state = StateEmpty
	in.image = translator.Image{}
	in.text = ""
}
