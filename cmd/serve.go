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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/glosstran/internal/controller"
	"github.com/valpere/glosstran/internal/glossary"
	"github.com/valpere/glosstran/internal/httpapi"
	"github.com/valpere/glosstran/internal/language"
)

var (
	serveSource       string
	serveTarget       string
	serveStyle        string
	serveLoadGlossary bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive translation session API",
	Long: `Start an HTTP server that owns one translation session.

Every user action (typing, language and style changes, swap, glossary
edits, image upload and text extraction) is an endpoint under /api/v1.
Typing is debounced; only the latest request's result is ever shown.
Connect to /api/v1/events with a websocket to receive state snapshots.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		source, err := language.Parse(serveSource)
		if err != nil {
			return err
		}
		target, err := language.ParseTarget(serveTarget)
		if err != nil {
			return err
		}
		style, err := language.ParseStyle(serveStyle)
		if err != nil {
			return err
		}

		sess, err := openSession(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer sess.Close()

		gl := glossary.New(glossary.DefaultPlaceholders)
		if serveLoadGlossary && sess.db != nil {
			terms, err := sess.db.LoadGlossary(ctx)
			if err != nil {
				return fmt.Errorf("failed to load glossary: %w", err)
			}
			if len(terms) > 0 {
				gl.Replace(terms)
			}
		}

		ctl := controller.New(sess.client, controller.Options{
			Debounce: cfg.Debounce,
			Glossary: gl,
			History:  sess.history,
			Logger:   logger,
			Source:   source,
			Target:   target,
			Style:    style,
		})
		defer ctl.Close()

		var glossaries httpapi.GlossaryStore
		if sess.db != nil {
			glossaries = sess.db
		}

		srv := httpapi.NewServer(ctl, sess.history, glossaries, logger, httpapi.Options{
			Listen:          cfg.Listen,
			ShutdownTimeout: 10 * time.Second,
		})
		logger.Info().
			Str("provider", sess.client.Name()).
			Str("history", cfg.HistoryBackend).
			Dur("debounce", ctl.DebounceDelay()).
			Int("glossary_terms", gl.ActiveCount()).
			Msg("session ready")
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "127.0.0.1:8080", "Address to listen on")
	serveCmd.Flags().Duration("debounce", 800*time.Millisecond, "Quiet period after typing before a translation is requested")
	serveCmd.Flags().StringVarP(&serveSource, "source", "s", "auto", "Initial source language (auto, ko, ja, en)")
	serveCmd.Flags().StringVarP(&serveTarget, "target", "t", "ko", "Initial target language (ko, ja, en)")
	serveCmd.Flags().StringVar(&serveStyle, "style", "literal", "Initial style (literal, natural)")
	serveCmd.Flags().BoolVar(&serveLoadGlossary, "load-glossary", true, "Start with the glossary saved in the database")

	for _, name := range []string{"listen", "debounce"} {
		if err := v.BindPFlag(name, serveCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}
