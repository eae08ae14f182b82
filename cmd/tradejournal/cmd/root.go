package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "tradejournal",
	Short: "A trading journal for FX and index traders",
	Long: `Tradejournal records trades, derives pips, risk/reward and P&L from the
prices you typed, and keeps weekly pair analyses and a strategy playbook.

It provides:
  - An HTTP API with per-user sessions (serve)
  - Trade listing, editing, statistics and CSV export (trades)
  - Weekly analyses and the strategy playbook (weekly, strategies)
  - Read-only OANDA account history (oanda)`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	cfgFile  string
	envFile  string
	dbPath   string
	ownerID  string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "tradejournal.yaml", "config file (YAML or JSON); missing is fine")
	pf.StringVar(&envFile, "env", ".env", ".env file with secrets")
	pf.StringVarP(&dbPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	pf.StringVarP(&ownerID, "owner", "u", "", "user id to read and write as (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Journal.DBPath = dbPath
	}
	if ownerID != "" {
		c.Journal.Owner = ownerID
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c
	log = logging.New(cfg.Log, os.Stderr)
	cmd.SetContext(logging.WithLogger(cmd.Context(), log))
	return nil
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}
