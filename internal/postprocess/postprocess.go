// Package postprocess strips the wrapping that generative models add around a
// translation or an OCR transcript even when told to return only the text.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes reasoning blocks, a leading "Translation:" style label and one
// pair of outer quotes, then trims the result. Inner text is never rewritten.
func Clean(text string) string {
	text = stripReasoning(text)
	text = stripLeadingLabel(text)
	text = stripOuterQuotes(text)
	return strings.TrimSpace(text)
}

// CleanTranscript is the OCR variant: reasoning blocks and labels go, quotes
// stay because they may be part of the pictured text.
func CleanTranscript(text string) string {
	text = stripReasoning(text)
	text = stripLeadingLabel(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so each tag pair is spelled out.
var (
	reasoningRe = regexp.MustCompile(
		`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
	)
	openReasoningRe = regexp.MustCompile(`(?is)(?:<think>|<thinking>|<reasoning>|<reflection>).*$`)
)

func stripReasoning(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// labelRe matches a short label at the very start followed by a colon, in any
// of the three working languages.
var labelRe = regexp.MustCompile(
	`(?i)^(?:(?:here(?:'s| is) )?(?:the )?(?:translated text|translation|extracted text|result)|번역(?: 결과)?|추출된 텍스트|翻訳(?:結果)?|抽出されたテキスト)\s*[:：]`,
)

func stripLeadingLabel(text string) string {
	if loc := labelRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:])
	}
	return text
}

var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'},
	{'‘', '’'},
	{'「', '」'},
	{'『', '』'},
	{'«', '»'},
}

// stripOuterQuotes removes one matching pair of quotes wrapping the whole
// text, as long as the opening quote does not reappear inside.
func stripOuterQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	for _, p := range quotePairs {
		if runes[0] != p[0] || runes[n-1] != p[1] {
			continue
		}
		inner := string(runes[1 : n-1])
		if strings.ContainsRune(inner, p[0]) || strings.ContainsRune(inner, p[1]) {
			return text
		}
		return strings.TrimSpace(inner)
	}
	return text
}
