package detector

import (
	"testing"

	"github.com/valpere/glosstran/internal/language"
)

func TestDetector_Detect(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang language.Language
		wantOK   bool
	}{
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:   "punctuation only",
			text:   "?!",
			wantOK: false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: language.English,
			wantOK:   true,
		},
		{
			name:     "korean text",
			text:     "안녕하세요, 이것은 한국어 테스트입니다.",
			wantLang: language.Korean,
			wantOK:   true,
		},
		{
			name:     "japanese text",
			text:     "彼女はコーヒーを飲みながら本を読んでいます。",
			wantLang: language.Japanese,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}
