package translator

import (
	"context"
	"errors"
	"fmt"

	"github.com/valpere/glosstran/internal/prompt"
)

const (
	// EmptyResultMessage replaces an empty provider answer to a non-empty request.
	EmptyResultMessage = "번역에 실패했습니다."

	defaultTemperature = 0.3
)

// ErrUnsupported is returned by providers that lack a capability, e.g. OCR
// on a translate-only backend.
var ErrUnsupported = errors.New("operation not supported by provider")

// Image is an encoded picture submitted for text extraction.
type Image struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Provider is one generative backend able to translate and, usually, read
// text from images.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req prompt.Request) (string, error)
	ExtractText(ctx context.Context, img Image) (string, error)
}

// ProviderError is the typed failure of a remote translate or OCR call.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CacheKey identifies a translation in the translation memory. Glossary is a
// digest of the active terms, so edited glossaries miss the cache.
type CacheKey struct {
	Text       string
	SourceLang string
	TargetLang string
	Style      string
	Glossary   string
}

// Memory is a translation-memory cache consulted before calling the provider.
type Memory interface {
	LookupTranslation(ctx context.Context, key CacheKey) (string, bool, error)
	RememberTranslation(ctx context.Context, key CacheKey, text, provider string) error
}
