/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/glosstran/internal/detector"
	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/history"
	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
	"github.com/valpere/glosstran/internal/translator"
)

var (
	inputFile     string
	outputFile    string
	sourceLang    string
	targetLang    string
	styleName     string
	useGlossary   bool
	extraTerms    []string
	skipHistory   bool
	detectVerbose bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text once",
	Long: `Translate text between Korean, Japanese and English.

The text is taken from the arguments, from --input, or from stdin.

Styles:
  - literal   keep structure and word order where the target grammar allows
  - natural   idiomatic phrasing for a native reader

Glossary terms always win over the style:
  --glossary             apply the glossary saved with "glosstran glossary"
  --term "SanC=이성 판정" add a term for this run (repeatable)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to translate")
		}

		source, err := language.Parse(sourceLang)
		if err != nil {
			return err
		}
		target, err := language.ParseTarget(targetLang)
		if err != nil {
			return err
		}
		if source == target {
			return fmt.Errorf("source and target languages must differ")
		}
		style, err := language.ParseStyle(styleName)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		if source == language.Auto && detectVerbose {
			if detected, ok := detector.New().Detect(text); ok {
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", detected.Label())
			}
		}

		sess, err := openSession(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer sess.Close()

		var terms []glossary.Term
		if useGlossary {
			if sess.db == nil {
				return fmt.Errorf("--glossary needs a database")
			}
			terms, err = sess.db.LoadGlossary(ctx)
			if err != nil {
				return fmt.Errorf("failed to load glossary: %w", err)
			}
		}
		parsed, err := parseTerms(extraTerms)
		if err != nil {
			return err
		}
		terms = append(terms, parsed...)

		req, err := prompt.Build(text, source, target, style, terms)
		if err != nil {
			return err
		}

		result, err := sess.client.Translate(ctx, req)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		if !skipHistory {
			recordTranslation(ctx, sess.history, req, result)
		}

		return writeOutput(outputFile, result)
	},
}

// historyAppender is the part of the history store the commands write to.
type historyAppender interface {
	Append(ctx context.Context, e history.Entry) history.Entry
}

// recordTranslation stores a successful result. Blank results and the
// empty-result fallback are not history.
func recordTranslation(ctx context.Context, h historyAppender, req prompt.Request, result string) bool {
	if strings.TrimSpace(result) == "" || result == translator.EmptyResultMessage {
		return false
	}
	h.Append(ctx, history.Entry{
		SourceLang:     req.Source,
		TargetLang:     req.Target,
		OriginalText:   req.Text,
		TranslatedText: result,
		Style:          req.Style,
	})
	return true
}

// readInput prefers arguments, then --input, then stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if inputFile != "" {
		b, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(b), nil
}

func writeOutput(path, text string) error {
	if path == "" {
		fmt.Println(text)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// parseTerms reads "source=target" pairs.
func parseTerms(raw []string) ([]glossary.Term, error) {
	var terms []glossary.Term
	for _, r := range raw {
		src, tgt, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(src) == "" || strings.TrimSpace(tgt) == "" {
			return nil, fmt.Errorf("invalid --term %q, expected source=target", r)
		}
		terms = append(terms, glossary.Term{Source: strings.TrimSpace(src), Target: strings.TrimSpace(tgt)})
	}
	return terms, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (stdout if empty)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language (auto, ko, ja, en)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "ko", "Target language (ko, ja, en)")
	translateCmd.Flags().StringVar(&styleName, "style", "literal", "Translation style (literal, natural)")
	translateCmd.Flags().BoolVar(&useGlossary, "glossary", false, "Apply the saved glossary")
	translateCmd.Flags().StringArrayVar(&extraTerms, "term", nil, "Glossary term source=target (repeatable)")
	translateCmd.Flags().BoolVar(&skipHistory, "no-history", false, "Do not record the translation in history")
	translateCmd.Flags().BoolVar(&detectVerbose, "detect", false, "Report the detected source language when source is auto")
}
