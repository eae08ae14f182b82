// Package auth holds the user directory and the signed session tokens that
// scope every journal request to one owner.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "session"
	// SessionTTL is how long a login lasts.
	SessionTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session")
)

// User is a journal owner.
type User struct {
	ID       string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type account struct {
	user User
	hash []byte
}

// Directory authenticates users by username and password.
type Directory struct {
	mu       sync.RWMutex
	cost     int
	accounts map[string]account
}

// NewDirectory returns an empty directory hashing passwords at cost.
func NewDirectory(cost int) *Directory {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Directory{cost: cost, accounts: map[string]account{}}
}

// Add registers u with password. Adding an existing username replaces it.
func (d *Directory) Add(u User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", u.Username, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[u.Username] = account{user: u, hash: hash}
	return nil
}

// Authenticate checks a username and password.
func (d *Directory) Authenticate(username, password string) (User, error) {
	d.mu.RLock()
	acct, ok := d.accounts[username]
	d.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}

// Users lists the registered users.
func (d *Directory) Users() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, a.user)
	}
	return out
}

type demoUser struct {
	User
	password string
}

var demoUsers = []demoUser{
	{User{ID: "user_admin", Username: "admin", Name: "Admin User"}, "admin123"},
	{User{ID: "user_trader1", Username: "trader1", Name: "Trader One"}, "trader123"},
	{User{ID: "user_demo", Username: "demo", Name: "Demo User"}, "demo123"},
}

// DemoDirectory returns a directory holding the built-in demo accounts.
func DemoDirectory(cost int) (*Directory, error) {
	d := NewDirectory(cost)
	for _, u := range demoUsers {
		if err := d.Add(u.User, u.password); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Claims is the session token payload.
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a session token for u.
func (t *Tokens) Issue(u User) (string, error) {
	now := t.now()
	claims := Claims{
		Username: u.Username,
		Name:     u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature and expiry and returns its user.
func (t *Tokens) Verify(token string) (User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return User{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return User{ID: claims.Subject, Username: claims.Username, Name: claims.Name}, nil
}

type ctxKey struct{}

// WithUser returns a context carrying the signed-in user.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the signed-in user, if any.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}
