package controller

import (
	"context"
	"strings"

	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/history"
	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
	"github.com/valpere/glosstran/internal/translator"
)

// SetInput replaces the text to translate and restarts the debounce window.
func (c *Controller) SetInput(text string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if text == c.input {
		c.mu.Unlock()
		return nil
	}
	c.input = text
	c.textChangedLocked()
	c.unlockAndNotify()
	return nil
}

// SetSource selects the source language. Auto-detect is allowed.
func (c *Controller) SetSource(l language.Language) error {
	if !l.Valid() {
		return ErrInvalidLanguage
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if l == c.source {
		c.mu.Unlock()
		return nil
	}
	if l == c.target {
		c.mu.Unlock()
		return ErrSameLanguage
	}
	c.source = l
	c.textChangedLocked()
	c.unlockAndNotify()
	return nil
}

// SetTarget selects the target language. Auto-detect is rejected.
func (c *Controller) SetTarget(l language.Language) error {
	if !l.IsTarget() {
		return ErrInvalidLanguage
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if l == c.target {
		c.mu.Unlock()
		return nil
	}
	if l == c.source {
		c.mu.Unlock()
		return ErrSameLanguage
	}
	c.target = l
	c.textChangedLocked()
	c.unlockAndNotify()
	return nil
}

func (c *Controller) SetStyle(s language.Style) error {
	if !s.Valid() {
		return ErrInvalidStyle
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if s == c.style {
		c.mu.Unlock()
		return nil
	}
	c.style = s
	c.textChangedLocked()
	c.unlockAndNotify()
	return nil
}

// Swap exchanges the languages and the two texts, so the last translation
// becomes the new input. It is refused while the source is auto-detect.
func (c *Controller) Swap() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.source == language.Auto {
		c.mu.Unlock()
		return ErrSwapAutoSource
	}
	c.source, c.target = c.target, c.source
	c.input, c.output = c.output, c.input
	c.textChangedLocked()
	c.unlockAndNotify()
	return nil
}

// SetMode switches between typed text and image input. Entering image mode
// drops any pending or running text attempt; returning to text mode drops a
// running extraction and schedules a translation of the current input.
func (c *Controller) SetMode(m Mode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if m == c.mode {
		c.mu.Unlock()
		return nil
	}
	c.mode = m
	if m == ModeImage {
		c.debouncer.Cancel()
		c.text.supersede()
	} else {
		c.stopExtractionLocked()
		c.textChangedLocked()
	}
	c.unlockAndNotify()
	return nil
}

// TranslateNow translates the current input immediately, superseding any
// pending or running attempt. The glossary editor's re-translate action uses
// it too.
func (c *Controller) TranslateNow() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.mode == ModeImage {
		c.mu.Unlock()
		return ErrImageMode
	}
	c.debouncer.Cancel()
	gen := c.text.supersede()
	c.startTextLocked(gen)
	c.unlockAndNotify()
	return nil
}

// Stop abandons the pending or running text attempt. The displayed
// translation stays as it is.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debouncer.Cancel()
	c.text.supersede()
	c.unlockAndNotify()
}

// Reset clears both texts at once.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debouncer.Cancel()
	c.text.supersede()
	c.input = ""
	c.output = ""
	c.unlockAndNotify()
}

// SelectHistory restores a past translation into text mode without calling
// the provider again.
func (c *Controller) SelectHistory(ctx context.Context, id string) error {
	e, ok := c.history.Get(ctx, id)
	if !ok {
		return ErrHistoryNotFound
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.debouncer.Cancel()
	c.text.supersede()
	c.stopExtractionLocked()
	c.mode = ModeText
	if e.SourceLang.Valid() && e.TargetLang.IsTarget() && e.SourceLang != e.TargetLang {
		c.source, c.target = e.SourceLang, e.TargetLang
	}
	if e.Style.Valid() {
		c.style = e.Style
	}
	c.input = e.OriginalText
	c.output = e.TranslatedText
	c.unlockAndNotify()
	return nil
}

// AddTerm appends an empty glossary row. Glossary edits never schedule a
// translation by themselves; TranslateNow applies them.
func (c *Controller) AddTerm() glossary.Term {
	c.mu.Lock()
	t := c.glossary.Add()
	c.unlockAndNotify()
	return t
}

func (c *Controller) UpdateTerm(id string, field glossary.Field, value string) error {
	c.mu.Lock()
	if err := c.glossary.Update(id, field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.unlockAndNotify()
	return nil
}

func (c *Controller) RemoveTerm(id string) error {
	c.mu.Lock()
	if err := c.glossary.Remove(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.unlockAndNotify()
	return nil
}

func (c *Controller) ReplaceGlossary(terms []glossary.Term) {
	c.mu.Lock()
	c.glossary.Replace(terms)
	c.unlockAndNotify()
}

// textChangedLocked handles a qualifying edit: the current attempt is
// superseded and, in text mode, a new debounce window opens.
func (c *Controller) textChangedLocked() {
	c.debouncer.Cancel()
	gen := c.text.supersede()
	if c.mode != ModeText {
		return
	}
	c.text.phase = PhaseDebouncing
	c.debouncer.Schedule(func() { c.debounceElapsed(gen) })
}

func (c *Controller) debounceElapsed(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.text.gen || c.text.phase != PhaseDebouncing {
		c.mu.Unlock()
		return
	}
	c.startTextLocked(gen)
	c.unlockAndNotify()
}

// startTextLocked issues the request for generation gen, which the caller
// has just made current.
func (c *Controller) startTextLocked(gen uint64) {
	if strings.TrimSpace(c.input) == "" {
		c.logger.Debug().Msg("input is empty, clearing translation")
		c.output = ""
		c.text.phase = PhaseIdle
		return
	}

	req, err := prompt.Build(c.input, c.source, c.target, c.style, c.glossary.Terms())
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to build translation request")
		c.output = FailureMessage
		c.text.phase = PhaseIdle
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.text.phase = PhaseInFlight
	c.text.cancel = cancel
	c.wg.Add(1)
	go c.translate(ctx, gen, req)
}

func (c *Controller) translate(ctx context.Context, gen uint64, req prompt.Request) {
	defer c.wg.Done()

	result, err := c.client.Translate(ctx, req)

	c.mu.Lock()
	if gen != c.text.gen {
		c.mu.Unlock()
		c.logger.Debug().Uint64("generation", gen).Msg("discarding superseded translation")
		return
	}

	c.text.cancel()
	c.text.cancel = nil
	c.text.phase = PhaseIdle

	if err != nil {
		c.logger.Warn().Err(err).Msg("translation failed")
		c.output = FailureMessage
		c.unlockAndNotify()
		return
	}

	c.output = result
	if strings.TrimSpace(result) != "" && result != translator.EmptyResultMessage {
		c.history.Append(c.ctx, history.Entry{
			SourceLang:     req.Source,
			TargetLang:     req.Target,
			OriginalText:   req.Text,
			TranslatedText: result,
			Style:          req.Style,
		})
	}
	c.unlockAndNotify()
}
