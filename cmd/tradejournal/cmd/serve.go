package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/imagehost"
	"github.com/rustyeddy/tradejournal/oanda"
	"github.com/rustyeddy/tradejournal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the journal HTTP API",
	Long: `Serve the journal API until interrupted.

The demo accounts (admin, trader1, demo) can sign in. Image uploads and the
OANDA proxy are enabled when their credentials are configured.

Example:
  tradejournal serve --addr :8080 --db ./data/journal.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr   string
	serveSecure bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveSecure, "secure-cookies", false, "mark the session cookie Secure (behind TLS)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	grace, err := cfg.Server.ShutdownGraceDuration()
	if err != nil {
		return err
	}
	cacheTTL, err := cfg.Server.CacheTTLDuration()
	if err != nil {
		return err
	}
	sessionTTL, err := cfg.Auth.SessionTTLDuration()
	if err != nil {
		return err
	}

	generated, err := cfg.Auth.EnsureSecret()
	if err != nil {
		return err
	}
	if generated {
		log.Warn().Msg("auth.jwt_secret not set; using a random secret, sessions end on restart")
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	users, err := auth.DemoDirectory(cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	deps := server.Deps{
		Store:  j,
		Users:  users,
		Tokens: auth.NewTokens(cfg.Auth.JWTSecret, sessionTTL),
		Logger: log,
	}
	if cfg.Images.Configured() {
		deps.Images = imagehost.New(cfg.Images)
	} else {
		log.Warn().Msg("image host not configured; uploads disabled")
	}
	if cfg.Oanda.Enabled() {
		deps.Broker = oanda.NewClient(cfg.Oanda.URL, cfg.Oanda.Token, cfg.Oanda.AccountID)
	} else {
		log.Warn().Msg("OANDA credentials not set; broker proxy disabled")
	}

	srv := server.New(server.Options{
		Addr:           cfg.Server.Addr,
		ShutdownGrace:  grace,
		CacheTTL:       cacheTTL,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		SecureCookies:  serveSecure,
	}, deps)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
