// Package storeclient talks to the journal server's JSON API on behalf of
// one signed-in user. Every response is an envelope
// {success, data?, error?}; a failed call comes back as a *StoreError.
package storeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/metrics"
)

// ErrNoSession is returned by Login when the server reports no signed-in user.
var ErrNoSession = errors.New("no session cookie")

// StoreError is a failed call: transport failure, non-2xx status or an
// envelope with success=false.
type StoreError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *StoreError) Unwrap() error { return e.Err }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	User    *User           `json:"user,omitempty"`
}

// User is the signed-in account as the server reports it.
type User struct {
	ID       string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Client is safe for use by one user at a time; it carries that user's
// session cookie.
type Client struct {
	http *resty.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// do sends one request and decodes the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) (*envelope, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}

	var env envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return nil, &StoreError{Op: op, Status: resp.StatusCode(), Message: "malformed response", Err: err}
		}
	}
	if resp.IsError() || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return nil, &StoreError{Op: op, Status: resp.StatusCode(), Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &StoreError{Op: op, Status: resp.StatusCode(), Message: "malformed data", Err: err}
		}
	}
	return &env, nil
}

// Login signs in and keeps the session cookie for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	env, err := c.do(ctx, "login", http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, nil)
	if err != nil {
		return User{}, err
	}
	if env.User == nil {
		return User{}, &StoreError{Op: "login", Err: ErrNoSession}
	}
	return *env.User, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, nil)
	return err
}

func (c *Client) ListTrades(ctx context.Context) ([]journal.Trade, error) {
	var trades []journal.Trade
	if _, err := c.do(ctx, "list trades", http.MethodGet, "/api/trades", nil, &trades); err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []journal.Trade{}
	}
	return trades, nil
}

func (c *Client) CreateTrade(ctx context.Context, t journal.Trade) error {
	_, err := c.do(ctx, "create trade", http.MethodPost, "/api/trades", t, nil)
	return err
}

func (c *Client) UpdateTrade(ctx context.Context, tradeID string, p journal.Patch) error {
	_, err := c.do(ctx, "update trade", http.MethodPut, "/api/trades/"+url.PathEscape(tradeID), p, nil)
	return err
}

func (c *Client) DeleteTrade(ctx context.Context, tradeID string) error {
	_, err := c.do(ctx, "delete trade", http.MethodDelete, "/api/trades/"+url.PathEscape(tradeID), nil, nil)
	return err
}

// Rows fetches projected rows, optionally for one day (YYYY-MM-DD).
func (c *Client) Rows(ctx context.Context, day string) ([]metrics.DisplayRow, error) {
	path := "/api/trades/rows"
	if day != "" {
		path += "?date=" + url.QueryEscape(day)
	}
	var rows []metrics.DisplayRow
	if _, err := c.do(ctx, "list rows", http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Dashboard(ctx context.Context) (metrics.Summary, error) {
	var s metrics.Summary
	_, err := c.do(ctx, "dashboard", http.MethodGet, "/api/dashboard", nil, &s)
	return s, err
}

// Weekly returns the analysis for weekKey, or nil when none was saved.
func (c *Client) Weekly(ctx context.Context, weekKey string) (*journal.Weekly, error) {
	var w *journal.Weekly
	if _, err := c.do(ctx, "get weekly", http.MethodGet, "/api/weekly?weekKey="+url.QueryEscape(weekKey), nil, &w); err != nil {
		return nil, err
	}
	return w, nil
}

func (c *Client) SaveWeekly(ctx context.Context, w journal.Weekly) error {
	_, err := c.do(ctx, "save weekly", http.MethodPost, "/api/weekly", w, nil)
	return err
}
