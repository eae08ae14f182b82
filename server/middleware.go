package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/logging"
)

const requestIDHeader = "X-Request-ID"

func logFrom(r *http.Request) *zerolog.Logger {
	l := logging.FromContext(r.Context())
	return &l
}

// assignRequestID gives requests without an id a UUID before chi's
// RequestID middleware records it.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger echoes the request id and stores a logger carrying it in the
// request context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := middleware.GetReqID(r.Context())
		w.Header().Set(requestIDHeader, rid)
		l := logging.WithRequestID(s.log, rid)
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), l)))
	})
}

// recoverer answers a panic with the JSON error envelope and logs the stack
// through the request logger.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logFrom(r).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		ev := logFrom(r).Info()
		if status >= http.StatusInternalServerError {
			ev = logFrom(r).Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// cors allows the configured origins. With none configured every origin is
// echoed back, which keeps local development working.
func (s *Server) cors(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.opts.AllowedOrigins))
	for _, o := range s.opts.AllowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (len(allowed) == 0 || allowed[origin]) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterSet hands out one token bucket per client. Idle buckets expire.
type limiterSet struct {
	limit rate.Limit
	burst int
	cache *cache.Cache
}

func newLimiterSet(perSecond float64, burst int) *limiterSet {
	return &limiterSet{
		limit: rate.Limit(perSecond),
		burst: burst,
		cache: cache.New(10*time.Minute, 20*time.Minute),
	}
}

func (ls *limiterSet) get(key string) *rate.Limiter {
	if v, ok := ls.cache.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(ls.limit, ls.burst)
	if err := ls.cache.Add(key, l, cache.DefaultExpiration); err != nil {
		// lost a race with another request from the same client
		if v, ok := ls.cache.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// parseProxies reads CIDRs or bare addresses of trusted reverse proxies.
func parseProxies(list []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(list))
	for _, p := range list {
		p = strings.TrimSpace(p)
		if !strings.Contains(p, "/") {
			addr, err := netip.ParseAddr(p)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		out = append(out, prefix.Masked())
	}
	return out, nil
}

func trusted(proxies []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientKey is the peer address. X-Forwarded-For is only read when the peer
// is a trusted proxy; the key is then the rightmost hop not in that set.
func clientKey(r *http.Request, proxies []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !trusted(proxies, host) {
		return host
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !trusted(proxies, hop) {
			return hop
		}
	}
	return host
}

func (s *Server) rateLimit(ls *limiterSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ls.get(clientKey(r, s.proxies)).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionUser reads and verifies the session cookie.
func (s *Server) sessionUser(r *http.Request) (auth.User, error) {
	c, err := r.Cookie(auth.SessionCookie)
	if err != nil || c.Value == "" {
		return auth.User{}, http.ErrNoCookie
	}
	return s.deps.Tokens.Verify(c.Value)
}

// requireSession rejects requests without a valid session and scopes the
// rest of the chain to the signed-in owner.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.sessionUser(r)
		switch {
		case errors.Is(err, http.ErrNoCookie):
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		case err != nil:
			logFrom(r).Debug().Err(err).Msg("rejected session")
			writeError(w, http.StatusUnauthorized, "Invalid session")
			return
		}

		ctx := auth.WithUser(r.Context(), u)
		ctx = logging.WithLogger(ctx, logging.WithOwner(*logFrom(r), u.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// owner returns the signed-in user id. Only valid behind requireSession.
func owner(r *http.Request) string {
	u, _ := auth.UserFrom(r.Context())
	return u.ID
}
