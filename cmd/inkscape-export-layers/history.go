package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmitry-t/inkscape-export-layers/internal/history"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

var errNoHistory = errors.New("no history database configured: set history_db or pass --db")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past export runs from the ledger",
	Long: `History lists the export runs recorded in the SQLite ledger, newest
first, with the files each run wrote. Runs are recorded when export is given
--history-db or history_db is set in the config file.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("history_db")
	}
	if path == "" {
		return errNoHistory
	}
	path, err := types.ExpandHome(path)
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if keep, _ := cmd.Flags().GetInt("prune"); keep > 0 {
		n, err := store.Prune(ctx, keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Pruned %d run(s)\n", n)
		return nil
	}

	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(ctx, history.QueryOptions{Source: source, Limit: limit})
	if err != nil {
		return err
	}
	if handled, err := writeStructured(cmd, os.Stdout, runs); handled {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-20s  %-8s  %-5s  %-30s  %s\n",
		"ID", "Started", "Status", "Type", "Source", "Files")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 85))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-5d  %-20s  %-8s  %-5s  %-30s  %d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.Format,
			truncate(r.Source, 30), len(r.Files))
		if r.Error != "" {
			fmt.Fprintf(os.Stdout, "       error: %s\n", r.Error)
		}
	}
	return nil
}

func init() {
	historyCmd.Flags().String("db", "", "ledger path (default: history_db from config)")
	historyCmd.Flags().String("source", "", "only runs of this drawing")
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().Int("prune", 0, "delete all but the newest N runs")
	historyCmd.Flags().Bool("yaml", false, "output as YAML")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.MarkFlagsMutuallyExclusive("yaml", "json")

	rootCmd.AddCommand(historyCmd)
}
