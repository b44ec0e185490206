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
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/glosstran/internal/config"
	"github.com/valpere/glosstran/internal/logging"
)

var version = "0.1.0"

var (
	v          = viper.New()
	configFile string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "glosstran",
	Short: "Glossary-aware Korean, Japanese and English translator",
	Long: `A translation workbench for Korean, Japanese and English backed by a
generative model, with literal and natural styles, a terminology glossary,
text extraction from images and a local translation history.

Run "glosstran serve" for the interactive session API, or use the
translate and ocr commands for one-shot work.

Settings come from flags, GLOSSTRAN_* environment variables, .env and an
optional glosstran.yaml.`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		l, err := logging.New(loaded.Environment, loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default ./glosstran.yaml if present)")
	pf.String("environment", "local", "Runtime environment; local enables console logging")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("provider", "gemini", "Translation provider: gemini, openrouter, ollama, google, mymemory")
	pf.String("model", "", "Model name for the provider (provider default if empty)")
	pf.String("gemini-api-key", "", "Gemini API key")
	pf.String("openrouter-api-key", "", "OpenRouter API key")
	pf.String("ollama-url", "http://localhost:11434", "Ollama base URL")
	pf.String("google-credentials", "", "Path to Google Cloud credentials")
	pf.String("mymemory-email", "", "MyMemory email (for higher limits)")
	pf.String("db", "./data/glosstran.db", "SQLite database path")
	pf.Bool("cache", true, "Use the translation memory cache")
	pf.String("history-backend", "sqlite", "History storage: sqlite, redis, memory")
	pf.String("redis-url", "", "Redis address or redis:// URL for the redis history backend")

	for _, name := range []string{
		"environment", "log-level", "provider", "model", "gemini-api-key",
		"openrouter-api-key", "ollama-url", "google-credentials", "mymemory-email",
		"db", "cache", "history-backend", "redis-url",
	} {
		// Keys use underscores; flags use dashes.
		if err := v.BindPFlag(flagKey(name), pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
