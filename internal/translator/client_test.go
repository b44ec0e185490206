package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
)

type mockProvider struct {
	translateFunc func(ctx context.Context, req prompt.Request) (string, error)
	extractFunc   func(ctx context.Context, img Image) (string, error)
	calls         int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Translate(ctx context.Context, req prompt.Request) (string, error) {
	m.calls++
	if m.translateFunc != nil {
		return m.translateFunc(ctx, req)
	}
	return "번역", nil
}

func (m *mockProvider) ExtractText(ctx context.Context, img Image) (string, error) {
	if m.extractFunc != nil {
		return m.extractFunc(ctx, img)
	}
	return "", nil
}

type mapMemory struct {
	entries map[CacheKey]string
	lookups int
}

func (m *mapMemory) LookupTranslation(ctx context.Context, key CacheKey) (string, bool, error) {
	m.lookups++
	text, ok := m.entries[key]
	return text, ok, nil
}

func (m *mapMemory) RememberTranslation(ctx context.Context, key CacheKey, text, provider string) error {
	m.entries[key] = text
	return nil
}

func mustBuild(t *testing.T, text string, terms []glossary.Term) prompt.Request {
	t.Helper()
	req, err := prompt.Build(text, language.Auto, language.Korean, language.Literal, terms)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return req
}

func TestClient_Translate_Success(t *testing.T) {
	p := &mockProvider{translateFunc: func(ctx context.Context, req prompt.Request) (string, error) {
		return `"안녕하세요 세계"`, nil
	}}
	c := NewClient(p)

	got, err := c.Translate(context.Background(), mustBuild(t, "Hello world", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "안녕하세요 세계" {
		t.Errorf("expected cleaned text, got %q", got)
	}
}

func TestClient_Translate_ProviderError(t *testing.T) {
	cause := errors.New("quota exceeded")
	p := &mockProvider{translateFunc: func(ctx context.Context, req prompt.Request) (string, error) {
		return "", cause
	}}
	c := NewClient(p)

	_, err := c.Translate(context.Background(), mustBuild(t, "Hello", nil))

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %T (%v)", err, err)
	}
	if perr.Op != "translate" || perr.Provider != "mock" {
		t.Errorf("unexpected error fields: %+v", perr)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause")
	}
}

func TestClient_Translate_EmptyResultFallback(t *testing.T) {
	p := &mockProvider{translateFunc: func(ctx context.Context, req prompt.Request) (string, error) {
		return "  ", nil
	}}
	c := NewClient(p)

	got, err := c.Translate(context.Background(), mustBuild(t, "Hello", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != EmptyResultMessage {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestClient_Translate_Memory(t *testing.T) {
	p := &mockProvider{}
	mem := &mapMemory{entries: map[CacheKey]string{}}
	c := NewClient(p, WithMemory(mem))

	req := mustBuild(t, "Hello", nil)
	if _, err := c.Translate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Translate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected provider called once, got %d", p.calls)
	}

	withTerm := mustBuild(t, "Hello", []glossary.Term{{Source: "Hello", Target: "안녕"}})
	if _, err := c.Translate(context.Background(), withTerm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("expected glossary change to miss the cache, provider calls = %d", p.calls)
	}
}

func TestClient_Translate_BlankText(t *testing.T) {
	p := &mockProvider{}
	c := NewClient(p)

	got, err := c.Translate(context.Background(), prompt.Request{Text: "  "})
	if err != nil || got != "" {
		t.Errorf("expected empty result, got %q, %v", got, err)
	}
	if p.calls != 0 {
		t.Error("provider must not be called for blank text")
	}
}

func TestClient_ExtractText(t *testing.T) {
	p := &mockProvider{extractFunc: func(ctx context.Context, img Image) (string, error) {
		return "<think>reading</think>\nSALE 50%", nil
	}}
	c := NewClient(p)

	got, err := c.ExtractText(context.Background(), Image{Data: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SALE 50%" {
		t.Errorf("got %q", got)
	}
}

func TestClient_ExtractText_NoTextIsNotError(t *testing.T) {
	c := NewClient(&mockProvider{})

	got, err := c.ExtractText(context.Background(), Image{Data: []byte{1}})
	if err != nil || got != "" {
		t.Errorf("expected empty text without error, got %q, %v", got, err)
	}
}

func TestClient_ExtractText_Unsupported(t *testing.T) {
	c := NewClient(NewGoogleService(""))

	_, err := c.ExtractText(context.Background(), Image{Data: []byte{1}})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestGlossaryDigest(t *testing.T) {
	if GlossaryDigest(nil) != "" {
		t.Error("expected empty digest without terms")
	}
	a := GlossaryDigest([]glossary.Term{{Source: "a", Target: "b"}, {Source: "c", Target: "d"}})
	b := GlossaryDigest([]glossary.Term{{Source: "c", Target: "d"}, {Source: "a", Target: "b"}})
	if a == b {
		t.Error("expected order to change the digest")
	}
	withPlaceholder := GlossaryDigest([]glossary.Term{{Source: "a", Target: "b"}, {}, {Source: "c", Target: "d"}})
	if a != withPlaceholder {
		t.Error("expected placeholders to be ignored")
	}
}
