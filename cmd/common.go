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

	"github.com/valpere/glosstran/internal/config"
	"github.com/valpere/glosstran/internal/history"
	"github.com/valpere/glosstran/internal/kv"
	"github.com/valpere/glosstran/internal/store"
	"github.com/valpere/glosstran/internal/translator"
	"github.com/valpere/glosstran/internal/validator"
)

// session bundles what the commands share: the provider client, the SQLite
// store and the history. Close releases all of it.
type session struct {
	client  *translator.Client
	db      *store.Store
	history *history.Store
	closers []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release resource")
		}
	}
}

// openSession builds a session from the loaded configuration. withProvider
// is false for commands that only touch local storage.
func openSession(ctx context.Context, c *config.Config, withProvider bool) (*session, error) {
	s := &session{}

	if c.DB != "" && (c.Cache || c.HistoryBackend == "sqlite") {
		db, err := openStore(c.DB)
		if err != nil {
			return nil, err
		}
		s.db = db
		s.closers = append(s.closers, db)
	}

	blob, err := historyBlob(ctx, c, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.history = history.New(blob, logger)

	if withProvider {
		provider, err := buildProvider(ctx, c)
		if err != nil {
			s.Close()
			return nil, err
		}
		if closer, ok := provider.(io.Closer); ok {
			s.closers = append(s.closers, closer)
		}

		opts := []translator.Option{
			translator.WithLogger(logger),
			translator.WithValidator(validator.New()),
		}
		if c.Cache && s.db != nil {
			opts = append(opts, translator.WithMemory(s.db))
		}
		s.client = translator.NewClient(provider, opts...)
	}
	return s, nil
}

func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// historyBlob picks the history backend. A redis backend that cannot be
// reached still returns a blob; the history store degrades to memory and
// logs a warning on first use.
func historyBlob(ctx context.Context, c *config.Config, s *session) (kv.Blob, error) {
	switch c.HistoryBackend {
	case "memory":
		return kv.NewMemory(), nil
	case "redis":
		r, err := kv.NewRedis(c.RedisURL, "")
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, r)
		if err := r.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("redis", c.RedisURL).Msg("redis unreachable, history may not persist")
		}
		return r, nil
	default:
		if s.db == nil {
			return nil, fmt.Errorf("history backend sqlite needs a database path")
		}
		return s.db, nil
	}
}

// buildProvider constructs the configured translation backend.
func buildProvider(ctx context.Context, c *config.Config) (translator.Provider, error) {
	switch c.Provider {
	case "gemini":
		g, err := translator.NewGeminiService(ctx, c.GeminiAPIKey, c.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openrouter":
		return translator.NewOpenRouterService(c.OpenRouterAPIKey, c.OpenRouterURL, c.Model), nil
	case "ollama":
		return translator.NewOllamaService(c.OllamaURL, c.Model), nil
	case "google":
		return translator.NewGoogleService(c.GoogleCredentials), nil
	case "mymemory":
		return translator.NewMyMemoryService(c.MyMemoryEmail, ""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", c.Provider)
	}
}

// requireDB opens the SQLite store for the storage-only commands.
func requireDB() (*store.Store, error) {
	if cfg.DB == "" {
		return nil, fmt.Errorf("--db is required")
	}
	return openStore(cfg.DB)
}
