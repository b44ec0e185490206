// Package controller owns the translation session: it turns edits to the
// input, languages, style and staged image into at most one live provider
// call per slot, and decides which results reach the screen and the history.
//
// Two slots exist, text and ocr. Each carries a phase (idle, debouncing,
// in flight) and a generation counter. Every new attempt, stop or qualifying
// edit bumps the slot's generation; a completion whose captured generation
// no longer matches is discarded without touching state or history.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/glosstran/internal/debounce"
	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/history"
	"github.com/valpere/glosstran/internal/intake"
	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
	"github.com/valpere/glosstran/internal/translator"
)

const (
	// FailureMessage is displayed in place of a translation when the provider fails.
	FailureMessage = "번역 중 오류가 발생했습니다."

	// ExtractFailureAlert is raised when text extraction fails.
	ExtractFailureAlert = "이미지에서 텍스트를 추출하지 못했습니다. 다른 이미지를 시도해 주세요."
)

var (
	ErrSwapAutoSource  = errors.New("cannot swap while the source language is auto-detect")
	ErrSameLanguage    = errors.New("source and target languages must differ")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidStyle    = errors.New("invalid style")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrImageMode       = errors.New("not available in image mode")
	ErrTextMode        = errors.New("not available in text mode")
	ErrHistoryNotFound = errors.New("history entry not found")
	ErrClosed          = errors.New("controller closed")
)

type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

func (m Mode) Valid() bool { return m == ModeText || m == ModeImage }

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseInFlight
)

func (p Phase) String() string {
	switch p {
	case PhaseDebouncing:
		return "debouncing"
	case PhaseInFlight:
		return "in_flight"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*p = PhaseIdle
	case "debouncing":
		*p = PhaseDebouncing
	case "in_flight":
		*p = PhaseInFlight
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// Loading is the user-visible busy indicator, derived from mode and phases.
type Loading string

const (
	LoadingIdle        Loading = "idle"
	LoadingTranslating Loading = "translating"
	LoadingExtracting  Loading = "extracting_text"
)

// Translator is the remote side. *translator.Client satisfies it.
type Translator interface {
	Translate(ctx context.Context, req prompt.Request) (string, error)
	ExtractText(ctx context.Context, img translator.Image) (string, error)
}

// History receives completed translations. *history.Store satisfies it.
type History interface {
	Append(ctx context.Context, e history.Entry) history.Entry
	Get(ctx context.Context, id string) (history.Entry, bool)
}

// Options configures a Controller. Zero values are usable.
type Options struct {
	Debounce  time.Duration
	Scheduler debounce.Scheduler
	Glossary  *glossary.Glossary
	History   History
	Intake    *intake.Intake
	Logger    zerolog.Logger
	Source    language.Language
	Target    language.Language
	Style     language.Style
}

// Snapshot is a consistent copy of the session state. Version grows with
// every change so observers can drop out-of-order deliveries.
type Snapshot struct {
	Version        uint64            `json:"version"`
	Mode           Mode              `json:"mode"`
	Source         language.Language `json:"source"`
	Target         language.Language `json:"target"`
	Style          language.Style    `json:"style"`
	InputText      string            `json:"input_text"`
	TranslatedText string            `json:"translated_text"`
	Loading        Loading           `json:"loading"`
	TextPhase      Phase             `json:"text_phase"`
	OCRPhase       Phase             `json:"ocr_phase"`
	Alert          string            `json:"alert,omitempty"`
	Intake         intake.Snapshot   `json:"intake"`
	Glossary       []glossary.Term   `json:"glossary"`
}

type slot struct {
	phase  Phase
	gen    uint64
	cancel context.CancelFunc
}

// supersede invalidates whatever the slot was doing.
func (s *slot) supersede() uint64 {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.phase = PhaseIdle
	return s.gen
}

type Controller struct {
	mu        sync.Mutex
	client    Translator
	history   History
	glossary  *glossary.Glossary
	intake    *intake.Intake
	debouncer *debounce.Debouncer
	logger    zerolog.Logger

	mode   Mode
	source language.Language
	target language.Language
	style  language.Style
	input  string
	output string
	alert  string

	text slot
	ocr  slot

	version uint64
	subs    map[int]func(Snapshot)
	nextSub int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New starts a session in text mode with source auto-detect, target Korean
// and literal style unless opts say otherwise.
func New(client Translator, opts Options) *Controller {
	if opts.Glossary == nil {
		opts.Glossary = glossary.New(glossary.DefaultPlaceholders)
	}
	if opts.History == nil {
		opts.History = history.New(nil, opts.Logger)
	}
	if opts.Intake == nil {
		opts.Intake = intake.New()
	}
	if !opts.Source.Valid() {
		opts.Source = language.Auto
	}
	if !opts.Target.IsTarget() {
		opts.Target = language.Korean
	}
	if opts.Source == opts.Target {
		opts.Source = language.Auto
	}
	if !opts.Style.Valid() {
		opts.Style = language.Literal
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		client:    client,
		history:   opts.History,
		glossary:  opts.Glossary,
		intake:    opts.Intake,
		debouncer: debounce.New(opts.Debounce, opts.Scheduler),
		logger:    opts.Logger.With().Str("component", "controller").Logger(),
		mode:      ModeText,
		source:    opts.Source,
		target:    opts.Target,
		style:     opts.Style,
		subs:      make(map[int]func(Snapshot)),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// loadingLocked derives the busy indicator. A slot only shows as busy in its
// own mode, and mode switches supersede the other slot, so extracting in
// text mode cannot be observed.
func (c *Controller) loadingLocked() Loading {
	switch {
	case c.mode == ModeText && c.text.phase == PhaseInFlight:
		return LoadingTranslating
	case c.mode == ModeImage && c.ocr.phase == PhaseInFlight:
		return LoadingExtracting
	default:
		return LoadingIdle
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:        c.version,
		Mode:           c.mode,
		Source:         c.source,
		Target:         c.target,
		Style:          c.style,
		InputText:      c.input,
		TranslatedText: c.output,
		Loading:        c.loadingLocked(),
		TextPhase:      c.text.phase,
		OCRPhase:       c.ocr.phase,
		Alert:          c.alert,
		Intake:         c.intake.Snapshot(),
		Glossary:       c.glossary.Terms(),
	}
}

// DebounceDelay is the quiet period applied after a qualifying edit.
func (c *Controller) DebounceDelay() time.Duration { return c.debouncer.Delay() }

// Subscribe registers fn for every state change and returns a function that
// removes it. fn runs outside the controller lock, possibly concurrently
// with other deliveries; compare Snapshot.Version to order them.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// changedLocked bumps the version and returns what unlockAndNotify delivers.
func (c *Controller) changedLocked() (Snapshot, []func(Snapshot)) {
	c.version++
	snap := c.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return snap, subs
}

// unlockAndNotify releases the lock and then tells subscribers.
func (c *Controller) unlockAndNotify() {
	snap, subs := c.changedLocked()
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// Close supersedes both slots, cancels outstanding calls and waits for their
// goroutines to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.debouncer.Cancel()
	c.text.supersede()
	c.ocr.supersede()
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
}
