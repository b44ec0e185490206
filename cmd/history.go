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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the translation history",
	Long: `The history keeps the 50 most recent successful translations, newest
first, in the configured history backend.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer sess.Close()

		entries := sess.history.LoadAll(ctx)
		if len(entries) == 0 {
			fmt.Println("History is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tFROM\tTO\tSTYLE\tORIGINAL\tTRANSLATION")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				e.SourceLang.Label(), e.TargetLang.Label(), e.Style.Label(),
				snippet(e.OriginalText, 30), snippet(e.TranslatedText, 30))
		}
		return w.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer sess.Close()

		sess.history.Clear(ctx)
		if sess.history.Degraded() {
			return fmt.Errorf("history storage is unavailable")
		}
		fmt.Println("History cleared.")
		return nil
	},
}

// snippet shortens s to at most n runes for table output.
func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}
