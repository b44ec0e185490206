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

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the saved glossary",
	Long: `Add, list, and delete the saved glossary terms.

Glossary terms force a source term to be rendered exactly as given,
regardless of the translation style. The saved list is loaded by
"glosstran serve" and by "glosstran translate --glossary".`,
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved glossary terms in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireDB()
		if err != nil {
			return err
		}
		defer db.Close()

		terms, err := db.LoadGlossary(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(terms) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tSOURCE TERM\tTARGET TERM")
		for i, t := range terms {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, t.ID, t.Source, t.Target)
		}
		return w.Flush()
	},
}

var glossaryAddCmd = &cobra.Command{
	Use:   "add <source-term> <target-term>",
	Short: "Append a glossary term",
	Long: `Append a term mapping a source-language term to its exact rendering.

Example:
  glosstran glossary add "SanC" "이성 판정"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireDB()
		if err != nil {
			return err
		}
		defer db.Close()

		term, err := db.AddGlossaryTerm(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add glossary term: %w", err)
		}
		fmt.Printf("Added %s: %q -> %q\n", term.ID, term.Source, term.Target)
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary term by ID",
	Long: `Delete a glossary term by its ID (shown in "glosstran glossary list").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteGlossaryTerm(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary term: %w", err)
		}
		fmt.Printf("Deleted glossary term: %s\n", args[0])
		return nil
	},
}

var glossaryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every saved glossary term",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SaveGlossary(cmd.Context(), nil); err != nil {
			return fmt.Errorf("failed to clear glossary: %w", err)
		}
		fmt.Println("Glossary cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
	glossaryCmd.AddCommand(glossaryClearCmd)
}
