package postprocess

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain", input: "안녕하세요 세계", expected: "안녕하세요 세계"},
		{name: "think block", input: "<think>user wants Korean</think>안녕하세요", expected: "안녕하세요"},
		{name: "truncated reasoning", input: "<reasoning>cut off mid", expected: ""},
		{name: "english label", input: "Translation: 안녕하세요", expected: "안녕하세요"},
		{name: "here is label", input: "Here is the translation: Hello", expected: "Hello"},
		{name: "korean label", input: "번역 결과: Hello", expected: "Hello"},
		{name: "japanese label fullwidth colon", input: "翻訳：こんにちは", expected: "こんにちは"},
		{name: "double quotes", input: `"안녕하세요 세계"`, expected: "안녕하세요 세계"},
		{name: "curly quotes", input: "“Hello”", expected: "Hello"},
		{name: "corner brackets", input: "「こんにちは」", expected: "こんにちは"},
		{name: "inner quotes kept", input: `"He said "hi" to me"`, expected: `"He said "hi" to me"`},
		{name: "label mid text kept", input: "Our translation: of words", expected: "Our translation: of words"},
		{name: "whitespace", input: "  \n Hello \n", expected: "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanTranscript_KeepsQuotes(t *testing.T) {
	in := `Extracted text: "SALE"`
	if got := CleanTranscript(in); got != `"SALE"` {
		t.Errorf("CleanTranscript(%q) = %q", in, got)
	}
}
