package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show or import weekly pair analyses",
	Long: `Weekly analyses are keyed by the Monday of their week (YYYY-MM-DD).

Examples:
  tradejournal weekly weeks
  tradejournal weekly show --week 2024-03-11
  tradejournal weekly import week.json`,
}

var weeklyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print one week's analysis as JSON",
	Args:  cobra.NoArgs,
	RunE:  runWeeklyShow,
}

var weeklyImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Save a week's analysis from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeeklyImport,
}

var weeklyWeeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List recent week keys",
	Args:  cobra.NoArgs,
	RunE:  runWeeklyWeeks,
}

var (
	weekKey   string
	weekCount int
)

func init() {
	rootCmd.AddCommand(weeklyCmd)
	weeklyCmd.AddCommand(weeklyShowCmd, weeklyImportCmd, weeklyWeeksCmd)

	weeklyShowCmd.Flags().StringVar(&weekKey, "week", "", "week key (default this week)")
	weeklyWeeksCmd.Flags().IntVarP(&weekCount, "count", "n", 8, "number of weeks")
}

func runWeeklyShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	key := weekKey
	if key == "" {
		key = journal.WeekKey(time.Now())
	}
	wk, err := j.GetWeekly(cmd.Context(), cfg.Journal.Owner, key)
	if err != nil {
		return fmt.Errorf("get week %s: %w", key, err)
	}
	if wk == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No analysis for week %s.\n", key)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(wk)
}

func runWeeklyImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var wk journal.Weekly
	if err := json.Unmarshal(data, &wk); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	saved, err := j.SaveWeekly(cmd.Context(), cfg.Journal.Owner, wk)
	if err != nil {
		return fmt.Errorf("save week: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved week %s (%d pairs)\n", saved.WeekKey, len(saved.Pairs))
	return nil
}

func runWeeklyWeeks(cmd *cobra.Command, args []string) error {
	for _, k := range journal.RecentWeekKeys(time.Now(), weekCount) {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}
