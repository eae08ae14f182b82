package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/grid"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/storeclient"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List, inspect and edit logged trades",
	Long: `Query and edit the trade journal.

Subcommands:
  list    - Table of trades with derived pips, RR and P&L
  show    - One trade as an Org-mode block
  edit    - Change one grid column of a trade
  close   - Attach a review and mark a trade closed
  delete  - Remove a trade
  export  - Write trades as CSV
  stats   - Win rate and best/worst trade
  owners  - Users with trades in the database

Examples:
  tradejournal trades list --date 2024-03-15
  tradejournal trades edit 01HS... exitPrice 1.1050
  tradejournal trades edit 01HS... result Win --remote http://localhost:8080 --user demo --password demo123`,
}

var tradesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades as a table",
	Args:  cobra.NoArgs,
	RunE:  runTradesList,
}

var tradesShowCmd = &cobra.Command{
	Use:   "show <trade-id>...",
	Short: "Show trades as Org-mode blocks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTradesShow,
}

var tradesEditCmd = &cobra.Command{
	Use:   "edit <trade-id> <column> <value>",
	Short: "Edit one grid column of a trade",
	Long: `Edit one column the way the grid does. Numeric columns keep their old
value when the new one is not a non-zero number.

Columns: ` + strings.Join(grid.EditableColumns(), ", "),
	Args: cobra.ExactArgs(3),
	RunE: runTradesEdit,
}

var tradesCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Attach a review and mark a trade closed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesClose,
}

var tradesDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesDelete,
}

var tradesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV",
	Args:  cobra.NoArgs,
	RunE:  runTradesExport,
}

var tradesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
	Args:  cobra.NoArgs,
	RunE:  runTradesStats,
}

var tradesOwnersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List users that have trades",
	Args:  cobra.NoArgs,
	RunE:  runTradesOwners,
}

var (
	listDate   string
	listFrom   string
	listTo     string
	exportOut  string
	closeNotes string
	closeImgs  []string

	remoteURL  string
	remoteUser string
	remotePass string
)

func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.AddCommand(tradesListCmd, tradesShowCmd, tradesEditCmd, tradesCloseCmd,
		tradesDeleteCmd, tradesExportCmd, tradesStatsCmd, tradesOwnersCmd)

	tradesListCmd.Flags().StringVar(&listDate, "date", "", "only trades on this day (YYYY-MM-DD)")
	tradesListCmd.Flags().StringVar(&listFrom, "from", "", "first day of a range (YYYY-MM-DD)")
	tradesListCmd.Flags().StringVar(&listTo, "to", "", "last day of a range, inclusive (YYYY-MM-DD)")

	tradesExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	tradesCloseCmd.Flags().StringVar(&closeNotes, "notes", "", "review notes")
	tradesCloseCmd.Flags().StringSliceVar(&closeImgs, "image", nil, "review screenshot URL (repeatable)")

	for _, c := range []*cobra.Command{tradesEditCmd, tradesCloseCmd, tradesDeleteCmd} {
		c.Flags().StringVar(&remoteURL, "remote", "", "journal server URL; edits go through its API")
		c.Flags().StringVar(&remoteUser, "user", "", "username for --remote")
		c.Flags().StringVar(&remotePass, "password", "", "password for --remote")
	}
}

// openGrid returns a loaded grid controller over the local database, or over
// a journal server when --remote is set.
func openGrid(ctx context.Context) (*grid.Controller, func(), error) {
	var (
		store   grid.Store
		cleanup func()
	)

	if remoteURL != "" {
		client := storeclient.New(remoteURL)
		u, err := client.Login(ctx, remoteUser, remotePass)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("owner", u.ID).Str("remote", remoteURL).Msg("signed in")
		store = client
		cleanup = func() { _ = client.Logout(context.Background()) }
	} else {
		j, err := openJournal()
		if err != nil {
			return nil, nil, err
		}
		store = grid.Local{Trades: j, Owner: cfg.Journal.Owner}
		cleanup = func() { _ = j.Close() }
	}

	g := grid.New(store)
	if err := g.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load trades: %w", err)
	}
	return g, cleanup, nil
}

func parseDay(flag, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return t, nil
}

func runTradesList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	var trades []journal.Trade
	if listFrom != "" || listTo != "" {
		start, end := time.Time{}, time.Now().AddDate(100, 0, 0)
		if listFrom != "" {
			if start, err = parseDay("from", listFrom); err != nil {
				return err
			}
		}
		if listTo != "" {
			if end, err = parseDay("to", listTo); err != nil {
				return err
			}
			end = end.AddDate(0, 0, 1)
		}
		trades, err = j.ListTradesBetween(ctx, cfg.Journal.Owner, start, end)
	} else {
		trades, err = j.ListTrades(ctx, cfg.Journal.Owner)
	}
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	rows := metrics.FilterByDate(metrics.ProjectAll(trades), listDate)
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No trades.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderRows(rows))
	return nil
}

func runTradesShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs := make([]journal.Trade, 0, len(args))
	for _, tradeID := range args {
		rec, err := j.GetTrade(cmd.Context(), cfg.Journal.Owner, tradeID)
		if err != nil {
			return fmt.Errorf("get trade %s: %w", tradeID, err)
		}
		recs = append(recs, rec)
	}
	fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runTradesEdit(cmd *cobra.Command, args []string) error {
	g, cleanup, err := openGrid(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	tradeID, column, value := args[0], args[1], args[2]
	if err := g.EditCell(cmd.Context(), tradeID, column, value); err != nil {
		return fmt.Errorf("edit %s: %w", column, err)
	}
	for _, r := range g.Rows() {
		if r.ID == tradeID {
			fmt.Fprintln(cmd.OutOrStdout(), renderRows([]metrics.DisplayRow{r}))
		}
	}
	return nil
}

func runTradesClose(cmd *cobra.Command, args []string) error {
	g, cleanup, err := openGrid(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := g.Select(args[0]); err != nil {
		return err
	}
	review := journal.Review{Notes: closeNotes, Images: closeImgs}
	if err := g.SaveReview(cmd.Context(), review, time.Now().UTC()); err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Closed %s\n", args[0])
	return nil
}

func runTradesDelete(cmd *cobra.Command, args []string) error {
	g, cleanup, err := openGrid(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := g.Select(args[0]); err != nil {
		return err
	}
	if err := g.DeleteSelected(cmd.Context()); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s (%d left)\n", args[0], len(g.Trades()))
	return nil
}

func runTradesExport(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTrades(cmd.Context(), cfg.Journal.Owner)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := journal.WriteCSV(w, trades); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d trades to %s\n", len(trades), exportOut)
	}
	return nil
}

func runTradesStats(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTrades(cmd.Context(), cfg.Journal.Owner)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(metrics.Summarize(trades)))
	return nil
}

func runTradesOwners(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	owners, err := j.Owners(cmd.Context())
	if err != nil {
		return fmt.Errorf("query owners: %w", err)
	}
	for _, o := range owners {
		fmt.Fprintln(cmd.OutOrStdout(), o)
	}
	return nil
}
