// Package translator wraps the generative text service behind a uniform
// contract: a typed ProviderError on failure, no timeout and no retry.
package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"

	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/postprocess"
	"github.com/valpere/glosstran/internal/prompt"
	"github.com/valpere/glosstran/internal/validator"
)

// Client is the single entry point the controller and the CLI use.
type Client struct {
	provider  Provider
	memory    Memory
	validator *validator.Validator
	logger    zerolog.Logger
}

type Option func(*Client)

// WithMemory enables the translation-memory cache.
func WithMemory(m Memory) Option {
	return func(c *Client) { c.memory = m }
}

// WithValidator logs a warning when output is not in the target language.
func WithValidator(v *validator.Validator) Option {
	return func(c *Client) { c.validator = v }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(p Provider, opts ...Option) *Client {
	c := &Client{provider: p, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("provider", p.Name()).Logger()
	return c
}

func (c *Client) Name() string { return c.provider.Name() }

// Translate returns the cleaned translation of req. An empty answer to a
// non-empty request yields EmptyResultMessage rather than an error.
func (c *Client) Translate(ctx context.Context, req prompt.Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	key := cacheKey(req)
	if c.memory != nil {
		if cached, found, err := c.memory.LookupTranslation(ctx, key); err != nil {
			c.logger.Warn().Err(err).Msg("translation memory lookup failed")
		} else if found {
			c.logger.Debug().Msg("using cached translation")
			return cached, nil
		}
	}

	raw, err := c.provider.Translate(ctx, req)
	if err != nil {
		return "", &ProviderError{Provider: c.provider.Name(), Op: "translate", Err: err}
	}

	text := postprocess.Clean(raw)
	if text == "" {
		c.logger.Warn().Msg("provider returned an empty translation")
		return EmptyResultMessage, nil
	}

	if c.validator != nil {
		if err := c.validator.Check(text, req.Target); err != nil {
			c.logger.Warn().Err(err).Str("target", req.Target.String()).Msg("translation language mismatch")
		}
	}

	if c.memory != nil {
		if err := c.memory.RememberTranslation(ctx, key, text, c.provider.Name()); err != nil {
			c.logger.Warn().Err(err).Msg("failed to store translation memory")
		}
	}
	return text, nil
}

// ExtractText reads the text in img. No detected text is "", not an error.
func (c *Client) ExtractText(ctx context.Context, img Image) (string, error) {
	raw, err := c.provider.ExtractText(ctx, img)
	if err != nil {
		return "", &ProviderError{Provider: c.provider.Name(), Op: "extract text", Err: err}
	}
	return postprocess.CleanTranscript(raw), nil
}

func cacheKey(req prompt.Request) CacheKey {
	return CacheKey{
		Text:       req.Text,
		SourceLang: req.Source.String(),
		TargetLang: req.Target.String(),
		Style:      req.Style.String(),
		Glossary:   GlossaryDigest(req.Glossary),
	}
}

// GlossaryDigest fingerprints the active terms in order; "" when there are none.
func GlossaryDigest(terms []glossary.Term) string {
	active := glossary.ActiveTerms(terms)
	if len(active) == 0 {
		return ""
	}
	h := sha256.New()
	for _, t := range active {
		h.Write([]byte(t.Source))
		h.Write([]byte{0})
		h.Write([]byte(t.Target))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
