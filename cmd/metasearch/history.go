// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/metasearch/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived searches",
	Long: `History lists searches archived with --save, newest first. Use
"history show <id>" to print the stored results of one search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No saved searches.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tINTENT\tMODE\tRESULTS\tQUERY")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Intent, r.Mode, r.ResultCount, r.Query)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the stored results of one archived search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		// Re-indent the stored JSON for readability.
		var results any
		if err := json.Unmarshal([]byte(rec.ResultsJSON), &results); err != nil {
			return fmt.Errorf("decoding stored results: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
