package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "Manage the strategy playbook",
}

var strategiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List strategies and their checklist sizes",
	Args:  cobra.NoArgs,
	RunE:  runStrategiesList,
}

var strategiesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace every strategy with the built-in playbook",
	Args:  cobra.NoArgs,
	RunE:  runStrategiesSeed,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
	strategiesCmd.AddCommand(strategiesListCmd, strategiesSeedCmd)
}

func runStrategiesList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	list, err := j.ListStrategies(cmd.Context())
	if err != nil {
		return fmt.Errorf("list strategies: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No strategies. Run `tradejournal strategies seed` to load the defaults.")
		return nil
	}
	for _, s := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-28s %-16s %d sections, %d checklist items\n",
			s.ID, s.Name, s.Category, len(s.Sections), len(s.Checklist()))
	}
	return nil
}

func runStrategiesSeed(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	n, err := j.SeedStrategies(cmd.Context(), journal.DefaultStrategies())
	if err != nil {
		return fmt.Errorf("seed strategies: %w", err)
	}
	log.Info().Int("count", n).Msg("strategies seeded")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d strategies\n", n)
	return nil
}
