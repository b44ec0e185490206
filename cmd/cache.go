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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/glosstran/internal/language"
	"github.com/valpere/glosstran/internal/store"
)

var (
	cacheStyle       string
	cacheTarget      string
	cacheInvalidOnly bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the translation memory cache",
	Long: `Inspect and prune the SQLite translation memory.

Entries are keyed by the normalized text, both languages, the style and
the active glossary, so editing the glossary never returns a stale
rendering. An invalidated entry stays listed but is translated again on
its next use.`,
}

// storeCmd opens the database for a subcommand and closes it afterwards.
func storeCmd(run func(ctx context.Context, db *store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := requireDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return run(cmd.Context(), db, args)
	}
}

// memoryFilter narrows a listing. Empty fields match everything.
type memoryFilter struct {
	style       string
	target      string
	invalidOnly bool
}

func (f memoryFilter) apply(entries []store.MemoryEntry) []store.MemoryEntry {
	var out []store.MemoryEntry
	for _, e := range entries {
		if f.style != "" && e.Style != f.style {
			continue
		}
		if f.target != "" && e.TargetLang != f.target {
			continue
		}
		if f.invalidOnly && !e.Invalidated {
			continue
		}
		out = append(out, e)
	}
	return out
}

// langPair renders "en→ko", or "auto→ko" for detected sources.
func langPair(source, target string) string {
	return source + "→" + target
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List translation memory entries, most recently used first",
	RunE: storeCmd(func(ctx context.Context, db *store.Store, _ []string) error {
		filter := memoryFilter{invalidOnly: cacheInvalidOnly}
		if cacheStyle != "" {
			style, err := language.ParseStyle(cacheStyle)
			if err != nil {
				return err
			}
			filter.style = string(style)
		}
		if cacheTarget != "" {
			target, err := language.ParseTarget(cacheTarget)
			if err != nil {
				return err
			}
			filter.target = string(target)
		}

		entries, err := db.ListMemory(ctx)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		entries = filter.apply(entries)
		if len(entries) == 0 {
			fmt.Println("No matching entries in translation memory.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPAIR\tSTYLE\tUSED\tLAST USED\tORIGINAL\tTRANSLATION")
		for _, e := range entries {
			id := e.ID
			if e.Invalidated {
				id += " (invalid)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				id, langPair(e.SourceLang, e.TargetLang), e.Style, e.UsageCount,
				e.LastUsed.Local().Format("2006-01-02 15:04"),
				snippet(e.SourceText, 30), snippet(e.FinalText, 30))
		}
		return w.Flush()
	}),
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation memory statistics",
	RunE: storeCmd(func(ctx context.Context, db *store.Store, _ []string) error {
		stats, err := db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Entries:\t%d\n", stats.TotalEntries)
		fmt.Fprintf(w, "  served from cache:\t%d\n", stats.ActiveEntries)
		fmt.Fprintf(w, "  awaiting retranslation:\t%d\n", stats.InvalidEntries)
		fmt.Fprintf(w, "Cache hits:\t%d\n", stats.TotalUsage)
		return w.Flush()
	}),
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <id>",
	Short: "Mark a rendering as wrong so it is translated again",
	Args:  cobra.ExactArgs(1),
	RunE: storeCmd(func(ctx context.Context, db *store.Store, args []string) error {
		if err := db.InvalidateMemory(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", args[0], err)
		}
		fmt.Printf("%s will be translated again on next use.\n", args[0])
		return nil
	}),
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Forget a translation memory entry",
	Args:  cobra.ExactArgs(1),
	RunE: storeCmd(func(ctx context.Context, db *store.Store, args []string) error {
		if err := db.DeleteMemory(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete %s: %w", args[0], err)
		}
		fmt.Printf("Forgot %s.\n", args[0])
		return nil
	}),
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every translation memory entry",
	RunE: storeCmd(func(ctx context.Context, db *store.Store, _ []string) error {
		n, err := db.ClearMemory(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear translation memory: %w", err)
		}
		fmt.Printf("Forgot %d cached translations.\n", n)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheListCmd.Flags().StringVar(&cacheStyle, "style", "", "Only entries with this style (literal, natural)")
	cacheListCmd.Flags().StringVarP(&cacheTarget, "target", "t", "", "Only entries into this language (ko, ja, en)")
	cacheListCmd.Flags().BoolVar(&cacheInvalidOnly, "invalid", false, "Only invalidated entries")

	cacheCmd.AddCommand(cacheListCmd, cacheStatsCmd, cacheInvalidateCmd, cacheDeleteCmd, cacheClearCmd)
}
