package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/translator"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || string(got) != "v" {
		t.Errorf("expected persisted value, got %q found=%v err=%v", got, found, err)
	}
}

func TestStore_KV(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "missing"); err != nil || found {
		t.Errorf("expected miss, got found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, "glosstran.history", []byte(`[1]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, "glosstran.history", []byte(`[2]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := s.Get(ctx, "glosstran.history")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if string(got) != `[2]` {
		t.Errorf("expected overwritten value, got %s", got)
	}

	if err := s.Delete(ctx, "glosstran.history"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found, _ := s.Get(ctx, "glosstran.history"); found {
		t.Error("expected key to be deleted")
	}
}

func cacheKey(text string) translator.CacheKey {
	return translator.CacheKey{Text: text, SourceLang: "en", TargetLang: "ko", Style: "literal"}
}

func TestStore_LookupTranslation_Miss(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.LookupTranslation(context.Background(), cacheKey("Hello"))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected cache miss")
	}
}

func TestStore_LookupTranslation_Hit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RememberTranslation(ctx, cacheKey("Hello"), "안녕하세요", "gemini"); err != nil {
		t.Fatalf("RememberTranslation failed: %v", err)
	}

	got, found, err := s.LookupTranslation(ctx, cacheKey("  Hello\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || got != "안녕하세요" {
		t.Errorf("expected hit with '안녕하세요', got %q found=%v", got, found)
	}
}

func TestStore_LookupTranslation_KeyParts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RememberTranslation(ctx, cacheKey("Hello"), "안녕하세요", "gemini"); err != nil {
		t.Fatalf("RememberTranslation failed: %v", err)
	}

	variants := map[string]translator.CacheKey{
		"style":    {Text: "Hello", SourceLang: "en", TargetLang: "ko", Style: "natural"},
		"target":   {Text: "Hello", SourceLang: "en", TargetLang: "ja", Style: "literal"},
		"source":   {Text: "Hello", SourceLang: "auto", TargetLang: "ko", Style: "literal"},
		"glossary": {Text: "Hello", SourceLang: "en", TargetLang: "ko", Style: "literal", Glossary: "abc"},
	}
	for name, key := range variants {
		t.Run(name, func(t *testing.T) {
			if _, found, _ := s.LookupTranslation(ctx, key); found {
				t.Errorf("expected miss when %s differs", name)
			}
		})
	}
}

func TestStore_LookupTranslation_NFC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Decomposed jamo for 한 must match the precomposed syllable.
	decomposed := "\u1112\u1161\u11ab"
	if err := s.RememberTranslation(ctx, cacheKey("\ud55c"), "han", "gemini"); err != nil {
		t.Fatalf("RememberTranslation failed: %v", err)
	}
	if _, found, _ := s.LookupTranslation(ctx, cacheKey(decomposed)); !found {
		t.Error("expected NFC-normalized hit")
	}
}

func TestStore_InvalidateMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.RememberTranslation(ctx, cacheKey("Hello"), "안녕하세요", "gemini")
	entries, err := s.ListMemory(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d (%v)", len(entries), err)
	}

	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory failed: %v", err)
	}
	if _, found, _ := s.LookupTranslation(ctx, cacheKey("Hello")); found {
		t.Error("expected invalidated entry to miss")
	}

	if err := s.InvalidateMemory(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.RememberTranslation(ctx, cacheKey("Hello"), "안녕하세요", "gemini")
	s.RememberTranslation(ctx, cacheKey("World"), "세계", "gemini")
	s.LookupTranslation(ctx, cacheKey("Hello"))

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 2 || stats.ActiveEntries != 2 || stats.InvalidEntries != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TotalUsage != 3 {
		t.Errorf("expected total usage 3, got %d", stats.TotalUsage)
	}
}

func TestStore_DeleteAndClearMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.RememberTranslation(ctx, cacheKey("Hello"), "안녕하세요", "gemini")
	s.RememberTranslation(ctx, cacheKey("World"), "세계", "gemini")

	entries, _ := s.ListMemory(ctx)
	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	if err := s.DeleteMemory(ctx, entries[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 cleared row, got %d", n)
	}
}

func TestStore_Glossary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	terms, err := s.LoadGlossary(ctx)
	if err != nil || len(terms) != 0 {
		t.Fatalf("expected empty glossary, got %v (%v)", terms, err)
	}

	saved := []glossary.Term{
		{ID: "a", Source: "SanC", Target: "이성 판정"},
		{ID: "b"},
		{Source: "HP", Target: "체력"},
	}
	if err := s.SaveGlossary(ctx, saved); err != nil {
		t.Fatalf("SaveGlossary failed: %v", err)
	}

	added, err := s.AddGlossaryTerm(ctx, "MP", "마나")
	if err != nil {
		t.Fatalf("AddGlossaryTerm failed: %v", err)
	}

	terms, err = s.LoadGlossary(ctx)
	if err != nil {
		t.Fatalf("LoadGlossary failed: %v", err)
	}
	if len(terms) != 4 {
		t.Fatalf("expected 4 terms, got %d", len(terms))
	}
	if terms[0].ID != "a" || terms[1].ID != "b" || terms[2].Source != "HP" || terms[3].ID != added.ID {
		t.Errorf("unexpected order: %+v", terms)
	}
	if terms[2].ID == "" {
		t.Error("expected generated ID for term without one")
	}

	if err := s.DeleteGlossaryTerm(ctx, "a"); err != nil {
		t.Fatalf("DeleteGlossaryTerm failed: %v", err)
	}
	if err := s.DeleteGlossaryTerm(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.SaveGlossary(ctx, nil); err != nil {
		t.Fatalf("SaveGlossary failed: %v", err)
	}
	terms, _ = s.LoadGlossary(ctx)
	if len(terms) != 0 {
		t.Errorf("expected saved glossary to be replaced, got %d terms", len(terms))
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"  hello  ", "hello"},
		{"\thello\n", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeText(tt.input); got != tt.expected {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
