package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/oanda"
)

var oandaCmd = &cobra.Command{
	Use:   "oanda",
	Short: "Read account history from OANDA",
	Long: `Query the configured OANDA account. Set OANDA_API_TOKEN and
OANDA_ACCOUNT_ID in the environment or a .env file.

Examples:
  tradejournal oanda accounts
  tradejournal oanda transactions --from 1 --to 200`,
}

var oandaAccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts the token can see",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oandaRun(cmd, func(c *oanda.Client) (any, error) { return c.Accounts(cmd.Context()) })
	},
}

var oandaOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders on the account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oandaRun(cmd, func(c *oanda.Client) (any, error) { return c.Orders(cmd.Context()) })
	},
}

var oandaTransactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List transactions in an id range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oandaRun(cmd, func(c *oanda.Client) (any, error) {
			return c.Transactions(cmd.Context(), txFrom, txTo)
		})
	},
}

var txFrom, txTo int

func init() {
	rootCmd.AddCommand(oandaCmd)
	oandaCmd.AddCommand(oandaAccountsCmd, oandaOrdersCmd, oandaTransactionsCmd)

	oandaTransactionsCmd.Flags().IntVar(&txFrom, "from", 1, "first transaction id")
	oandaTransactionsCmd.Flags().IntVar(&txTo, "to", 1000, "last transaction id")
}

func oandaRun(cmd *cobra.Command, fetch func(*oanda.Client) (any, error)) error {
	if !cfg.Oanda.Enabled() {
		return fmt.Errorf("OANDA_API_TOKEN and OANDA_ACCOUNT_ID must be set")
	}
	c := oanda.NewClient(cfg.Oanda.URL, cfg.Oanda.Token, cfg.Oanda.AccountID)

	v, err := fetch(c)
	if errors.Is(err, oanda.ErrNoData) {
		fmt.Fprintln(cmd.OutOrStdout(), "No data.")
		return nil
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
