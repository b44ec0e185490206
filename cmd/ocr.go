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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/intake"
	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/prompt"
)

var (
	ocrTranslate   bool
	ocrSource      string
	ocrTarget      string
	ocrStyle       string
	ocrGlossary    bool
	ocrSkipHistory bool
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Extract text from an image",
	Long: `Read all text in an image verbatim with the configured provider.

With --translate the extracted text is translated right away, as if it
had been confirmed in the session, and the result is recorded in history
unless --no-history is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		in := intake.New()
		if !in.Stage(filepath.Base(args[0]), data) {
			return fmt.Errorf("%s is not an image", args[0])
		}
		img, err := in.BeginExtract()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		sess, err := openSession(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer sess.Close()

		text, err := sess.client.ExtractText(ctx, img)
		if err != nil {
			in.Abort()
			return fmt.Errorf("text extraction failed: %w", err)
		}
		in.Finish(text)

		extracted, err := in.Confirm()
		if err != nil {
			return err
		}
		if strings.TrimSpace(extracted) == "" {
			fmt.Fprintln(os.Stderr, "No text found in image.")
			return nil
		}
		if !ocrTranslate {
			fmt.Println(extracted)
			return nil
		}

		source, err := language.Parse(ocrSource)
		if err != nil {
			return err
		}
		target, err := language.ParseTarget(ocrTarget)
		if err != nil {
			return err
		}
		if source == target {
			return fmt.Errorf("source and target languages must differ")
		}
		style, err := language.ParseStyle(ocrStyle)
		if err != nil {
			return err
		}

		var terms []glossary.Term
		if ocrGlossary {
			if sess.db == nil {
				return fmt.Errorf("--glossary needs a database")
			}
			if terms, err = sess.db.LoadGlossary(ctx); err != nil {
				return fmt.Errorf("failed to load glossary: %w", err)
			}
		}

		req, err := prompt.Build(extracted, source, target, style, terms)
		if err != nil {
			return err
		}
		result, err := sess.client.Translate(ctx, req)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		if !ocrSkipHistory {
			recordTranslation(ctx, sess.history, req, result)
		}
		fmt.Fprintln(os.Stderr, extracted)
		fmt.Println(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().BoolVar(&ocrTranslate, "translate", false, "Translate the extracted text")
	ocrCmd.Flags().StringVarP(&ocrSource, "source", "s", "auto", "Source language for --translate (auto, ko, ja, en)")
	ocrCmd.Flags().StringVarP(&ocrTarget, "target", "t", "ko", "Target language for --translate")
	ocrCmd.Flags().StringVar(&ocrStyle, "style", "literal", "Style for --translate")
	ocrCmd.Flags().BoolVar(&ocrGlossary, "glossary", false, "Apply the saved glossary for --translate")
	ocrCmd.Flags().BoolVar(&ocrSkipHistory, "no-history", false, "Do not record the translation in history")
}
