package controller

import (
	"context"

	"github.com/valpere/glosstran/internal/translator"
)

// StageImage offers an image to the intake. Non-image payloads are ignored
// and false is returned.
func (c *Controller) StageImage(name string, data []byte) bool {
	c.mu.Lock()
	if c.closed || !c.intake.Stage(name, data) {
		c.mu.Unlock()
		return false
	}
	c.unlockAndNotify()
	return true
}

// ClearImage discards the staged image, abandoning a running extraction.
func (c *Controller) ClearImage() {
	c.mu.Lock()
	if c.ocr.phase == PhaseInFlight {
		c.ocr.supersede()
	}
	c.intake.Clear()
	c.unlockAndNotify()
}

// ExtractText starts reading the staged image. Only one extraction runs at
// a time; a second call while one is running fails with intake.ErrExtracting.
func (c *Controller) ExtractText() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.mode != ModeImage {
		c.mu.Unlock()
		return ErrTextMode
	}
	img, err := c.intake.BeginExtract()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	gen := c.ocr.supersede()
	ctx, cancel := context.WithCancel(c.ctx)
	c.ocr.phase = PhaseInFlight
	c.ocr.cancel = cancel
	c.alert = ""
	c.wg.Add(1)
	go c.extract(ctx, gen, img)

	c.unlockAndNotify()
	return nil
}

func (c *Controller) extract(ctx context.Context, gen uint64, img translator.Image) {
	defer c.wg.Done()

	text, err := c.client.ExtractText(ctx, img)

	c.mu.Lock()
	if gen != c.ocr.gen {
		c.mu.Unlock()
		c.logger.Debug().Uint64("generation", gen).Msg("discarding superseded extraction")
		return
	}

	c.ocr.cancel()
	c.ocr.cancel = nil
	c.ocr.phase = PhaseIdle

	if err != nil {
		c.logger.Warn().Err(err).Str("image", img.Name).Msg("text extraction failed")
		c.intake.Abort()
		c.alert = ExtractFailureAlert
	} else {
		c.intake.Finish(text)
	}
	c.unlockAndNotify()
}

// StopExtraction abandons a running extraction and returns to the staged
// image.
func (c *Controller) StopExtraction() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopExtractionLocked()
	c.unlockAndNotify()
}

func (c *Controller) stopExtractionLocked() {
	c.ocr.supersede()
	c.intake.Abort()
}

// EditExtractedText changes the extracted text under review.
func (c *Controller) EditExtractedText(text string) error {
	c.mu.Lock()
	if err := c.intake.EditText(text); err != nil {
		c.mu.Unlock()
		return err
	}
	c.unlockAndNotify()
	return nil
}

// ConfirmExtractedText moves the reviewed text into the input, switches to
// text mode and translates it right away.
func (c *Controller) ConfirmExtractedText() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	text, err := c.intake.Confirm()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.ocr.supersede()
	c.mode = ModeText
	c.input = text
	c.debouncer.Cancel()
	gen := c.text.supersede()
	c.startTextLocked(gen)
	c.unlockAndNotify()
	return nil
}

// DismissAlert clears a blocking alert.
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	if c.alert == "" {
		c.mu.Unlock()
		return
	}
	c.alert = ""
	c.unlockAndNotify()
}
