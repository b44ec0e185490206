package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/valpere/glosstran/internal/kv"
	"github.com/valpere/glosstran/internal/language"
)

type failingBlob struct {
	getErr, setErr error
	sets           int
}

func (b *failingBlob) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, b.getErr
}

func (b *failingBlob) Set(ctx context.Context, key string, value []byte) error {
	b.sets++
	return b.setErr
}

func entry(n int) Entry {
	return Entry{
		SourceLang:     language.English,
		TargetLang:     language.Korean,
		OriginalText:   fmt.Sprintf("text %d", n),
		TranslatedText: fmt.Sprintf("번역 %d", n),
		Style:          language.Literal,
	}
}

func TestStore_AppendNewestFirst(t *testing.T) {
	s := New(kv.NewMemory(), zerolog.Nop())
	ctx := context.Background()

	first := s.Append(ctx, entry(1))
	second := s.Append(ctx, entry(2))

	if first.ID == "" || first.Timestamp.IsZero() {
		t.Error("expected ID and timestamp to be assigned")
	}
	all := s.LoadAll(ctx)
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", all)
	}
}

func TestStore_Capacity(t *testing.T) {
	s := New(kv.NewMemory(), zerolog.Nop())
	ctx := context.Background()

	for i := 1; i <= Capacity+1; i++ {
		s.Append(ctx, entry(i))
	}

	all := s.LoadAll(ctx)
	if len(all) != Capacity {
		t.Fatalf("expected %d entries, got %d", Capacity, len(all))
	}
	if all[0].OriginalText != "text 51" {
		t.Errorf("expected newest entry first, got %q", all[0].OriginalText)
	}
	if all[len(all)-1].OriginalText != "text 2" {
		t.Errorf("expected only the oldest entry evicted, last is %q", all[len(all)-1].OriginalText)
	}
}

func TestStore_PersistsAcrossSessions(t *testing.T) {
	blob := kv.NewMemory()
	ctx := context.Background()

	s := New(blob, zerolog.Nop())
	e := s.Append(ctx, entry(1))

	reloaded := New(blob, zerolog.Nop())
	got, ok := reloaded.Get(ctx, e.ID)
	if !ok {
		t.Fatal("expected entry to be persisted")
	}
	if got.OriginalText != "text 1" || got.TargetLang != language.Korean || got.Style != language.Literal {
		t.Errorf("unexpected entry: %+v", got)
	}

	raw, _, _ := blob.Get(ctx, Key)
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored blob is not a JSON list: %v", err)
	}
	if decoded[0]["originalText"] != "text 1" {
		t.Errorf("unexpected blob: %s", raw)
	}
}

func TestStore_CorruptDataReadsEmpty(t *testing.T) {
	blob := kv.NewMemory()
	ctx := context.Background()
	blob.Set(ctx, Key, []byte("{not json"))

	s := New(blob, zerolog.Nop())
	if all := s.LoadAll(ctx); len(all) != 0 {
		t.Errorf("expected empty history, got %d entries", len(all))
	}

	s.Append(ctx, entry(1))
	reloaded := New(blob, zerolog.Nop())
	if all := reloaded.LoadAll(ctx); len(all) != 1 {
		t.Errorf("expected corrupt blob to be overwritten, got %d entries", len(all))
	}
}

func TestStore_UnavailableStorageDegrades(t *testing.T) {
	blob := &failingBlob{getErr: errors.New("connection refused")}
	s := New(blob, zerolog.Nop())
	ctx := context.Background()

	s.Append(ctx, entry(1))
	s.Append(ctx, entry(2))

	if !s.Degraded() {
		t.Error("expected degraded store")
	}
	if blob.sets != 0 {
		t.Errorf("expected no writes after a failed read, got %d", blob.sets)
	}
	if all := s.LoadAll(ctx); len(all) != 2 {
		t.Errorf("expected in-memory history, got %d entries", len(all))
	}
}

func TestStore_FailedWriteDegrades(t *testing.T) {
	blob := &failingBlob{setErr: errors.New("disk full")}
	s := New(blob, zerolog.Nop())
	ctx := context.Background()

	s.Append(ctx, entry(1))
	s.Append(ctx, entry(2))

	if blob.sets != 1 {
		t.Errorf("expected a single write attempt, got %d", blob.sets)
	}
	if all := s.LoadAll(ctx); len(all) != 2 {
		t.Errorf("expected in-memory history, got %d entries", len(all))
	}
}

func TestStore_Clear(t *testing.T) {
	blob := kv.NewMemory()
	ctx := context.Background()

	s := New(blob, zerolog.Nop())
	s.Append(ctx, entry(1))
	s.Clear(ctx)

	if all := New(blob, zerolog.Nop()).LoadAll(ctx); len(all) != 0 {
		t.Errorf("expected cleared history, got %d entries", len(all))
	}
}

func TestStore_NilBlob(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	s.Append(ctx, entry(1))
	if all := s.LoadAll(ctx); len(all) != 1 {
		t.Errorf("expected 1 entry, got %d", len(all))
	}
	if s.Degraded() {
		t.Error("memory-only store is not degraded")
	}
}
