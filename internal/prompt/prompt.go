// Package prompt composes the instruction text sent to the generative
// translator. Build is pure: the same inputs always produce the same request.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/language"
)

var (
	ErrBlankText  = errors.New("text to translate is blank")
	ErrAutoTarget = errors.New("auto-detect cannot be a target language")
)

// SystemInstruction is sent with every translation call.
const SystemInstruction = `You are an advanced translation engine specialised in translating between Korean, Japanese and English.
Apply either the literal or the natural style according to the user's selection.

Core rules:
1. Mixed-language text (highest priority): when the user specifies a source language and the text contains English fragments (for example "A/B Test", "Delicious"), keep those English fragments untranslated in the final result.`

// OCRInstruction accompanies the image on text extraction calls.
const OCRInstruction = "Extract all text in this image verbatim. Return only the extracted text."

// Request is the immutable snapshot handed to the translation client for one
// attempt.
type Request struct {
	Text              string            `json:"text"`
	Source            language.Language `json:"source_lang"`
	Target            language.Language `json:"target_lang"`
	Style             language.Style    `json:"style"`
	Glossary          []glossary.Term   `json:"glossary,omitempty"`
	Prompt            string            `json:"prompt"`
	SystemInstruction string            `json:"system_instruction"`
}

// Build combines the inputs into a Request. Only active glossary terms are
// kept, in the order given.
func Build(text string, source, target language.Language, style language.Style, terms []glossary.Term) (Request, error) {
	if strings.TrimSpace(text) == "" {
		return Request{}, ErrBlankText
	}
	if !target.IsTarget() {
		return Request{}, ErrAutoTarget
	}
	if !source.Valid() {
		return Request{}, fmt.Errorf("invalid source language %q", source)
	}
	if !style.Valid() {
		return Request{}, fmt.Errorf("invalid style %q", style)
	}

	active := glossary.ActiveTerms(terms)

	var sb strings.Builder
	sb.WriteString(sourceInstruction(source))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Target language: %s.\n", target.Name())

	if block := glossaryBlock(active); block != "" {
		sb.WriteString("\n")
		sb.WriteString(block)
	}

	sb.WriteString("\n")
	sb.WriteString(styleInstruction(style))
	sb.WriteString("\n\nText to translate:\n")
	fmt.Fprintf(&sb, "\"%s\"\n", text)
	sb.WriteString("\nOutput only the translated text. Do not add explanations or notes.")

	return Request{
		Text:              text,
		Source:            source,
		Target:            target,
		Style:             style,
		Glossary:          active,
		Prompt:            sb.String(),
		SystemInstruction: SystemInstruction,
	}, nil
}

func sourceInstruction(source language.Language) string {
	if source == language.Auto {
		return "Detect the source language automatically."
	}
	return fmt.Sprintf("Source language: %s.", source.Name())
}

func styleInstruction(style language.Style) string {
	if style == language.Literal {
		return `Style: literal.
You are a translator who does not distort the structure of the source text or the meaning of its words.
Keep the word order and expressions as close to the source as the target language grammar allows.
Keep technical terms and proper nouns as they are and minimise sentence-level restructuring.`
	}
	return `Style: natural.
You are a translator whose output reads naturally to native speakers of the target language.
Render the text fluently using idiomatic expressions, a natural tone and the right cultural context.
Avoid needless literal renderings and choose vocabulary that fits the context.`
}

// glossaryBlock renders the numbered override list, or "" when there are no
// active terms.
func glossaryBlock(terms []glossary.Term) string {
	if len(terms) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("### User glossary rules ###\n")
	sb.WriteString("The list below is the user's glossary. These rules take precedence over every style instruction and must be followed throughout the whole translation.\n\n")
	sb.WriteString("[Glossary start]\n")
	for i, t := range terms {
		fmt.Fprintf(&sb, "%d. %s -> %s\n", i+1, t.Source, t.Target)
	}
	sb.WriteString("[Glossary end]\n")
	return sb.String()
}
