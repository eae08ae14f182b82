// Package server exposes the journal over HTTP: session login, per-owner
// trade CRUD with derived rows and a dashboard, weekly analyses, the strategy
// playbook, screenshot uploads and a read-only broker proxy.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/oanda"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, image, filename string) (string, error)
}

// Broker is the read-only account history source.
type Broker interface {
	Accounts(ctx context.Context) ([]oanda.Account, error)
	Orders(ctx context.Context) ([]oanda.Order, error)
	Transactions(ctx context.Context, from, to int) ([]oanda.Transaction, error)
}

// Options tune the HTTP layer.
type Options struct {
	Addr           string
	ShutdownGrace  time.Duration
	CacheTTL       time.Duration
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string
	// TrustedProxies are CIDRs or addresses whose X-Forwarded-For is
	// believed when keying the rate limiter.
	TrustedProxies []string
	SecureCookies  bool
}

// Deps are the collaborators the handlers call. Images and Broker may be nil,
// in which case their routes answer 503.
type Deps struct {
	Store  journal.Store
	Users  *auth.Directory
	Tokens *auth.Tokens
	Images Uploader
	Broker Broker
	Logger zerolog.Logger
}

// Server is the journal HTTP API.
type Server struct {
	opts   Options
	deps   Deps
	log    zerolog.Logger
	cache  *cache.Cache
	router chi.Router
	now    func() time.Time

	proxies []netip.Prefix

	httpServer *http.Server
}

// New wires the routes. It does not start listening. Malformed trusted
// proxies are logged and ignored.
func New(opts Options, deps Deps) *Server {
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = 10 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	s := &Server{
		opts:  opts,
		deps:  deps,
		log:   deps.Logger,
		cache: cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		now:   time.Now,
	}
	proxies, err := parseProxies(opts.TrustedProxies)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring trusted proxies")
		proxies = nil
	}
	s.proxies = proxies
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(s.requestLog)
	r.Use(s.cors)
	if s.opts.RateLimit > 0 {
		r.Use(s.rateLimit(newLimiterSet(s.opts.RateLimit, s.opts.RateBurst)))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/session", s.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/trades", s.handleListTrades)
			r.Post("/trades", s.handleCreateTrade)
			r.Get("/trades/rows", s.handleRows)
			r.Get("/trades/export.csv", s.handleExportCSV)
			r.Put("/trades/{id}", s.handleUpdateTrade)
			r.Delete("/trades/{id}", s.handleDeleteTrade)
			r.Get("/dashboard", s.handleDashboard)

			r.Get("/weekly", s.handleGetWeekly)
			r.Post("/weekly", s.handleSaveWeekly)

			r.Get("/strategies", s.handleListStrategies)
			r.Post("/strategies", s.handleCreateStrategy)
			r.Put("/strategies", s.handleUpdateStrategy)
			r.Put("/strategies/{id}", s.handleUpdateStrategy)
			r.Delete("/strategies", s.handleDeleteStrategy)
			r.Delete("/strategies/{id}", s.handleDeleteStrategy)
			r.Post("/strategies/seed", s.handleSeedStrategies)

			r.Get("/rule-cards", s.handleListRuleCards)
			r.Post("/rule-cards", s.handleCreateRuleCard)
			r.Put("/rule-cards", s.handleUpdateRuleCard)
			r.Put("/rule-cards/{id}", s.handleUpdateRuleCard)
			r.Delete("/rule-cards", s.handleDeleteRuleCard)
			r.Delete("/rule-cards/{id}", s.handleDeleteRuleCard)

			r.Post("/upload-image", s.handleUploadImage)

			r.Get("/oanda/accounts", s.handleOandaAccounts)
			r.Get("/oanda/orders", s.handleOandaOrders)
			r.Get("/oanda/transactions", s.handleOandaTransactions)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down within the grace period.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("journal server listening")

	errc := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownGrace)
	defer cancel()
	s.log.Info().Dur("grace", s.opts.ShutdownGrace).Msg("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
