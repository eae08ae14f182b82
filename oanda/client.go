package oanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"
)

// ErrNoData means the request worked but the account has nothing to show.
var ErrNoData = errors.New("oanda: no data")

// APIError is a non-2xx response from the broker.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oanda API error (status %d): %s", e.Status, e.Body)
}

// Client is a read-only OANDA v20 REST client for one account.
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
}

// NewClient creates a client against baseURL. An empty baseURL means the
// practice environment.
func NewClient(baseURL, token, accountID string) *Client {
	if baseURL == "" {
		baseURL = PracticeURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AccountID is the account orders and transactions are read from.
func (c *Client) AccountID() string { return c.accountID }

// Account is one entry of the accounts list.
type Account struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

// Order is a pending or recently filled order. Numbers stay as OANDA's
// decimal strings.
type Order struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	State       string `json:"state"`
	Instrument  string `json:"instrument,omitempty"`
	Units       string `json:"units,omitempty"`
	Price       string `json:"price,omitempty"`
	TimeInForce string `json:"timeInForce,omitempty"`
	CreateTime  string `json:"createTime"`
}

// Transaction is one line of account history.
type Transaction struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Instrument string `json:"instrument,omitempty"`
	Units      string `json:"units,omitempty"`
	Price      string `json:"price,omitempty"`
	PL         string `json:"pl,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Time       string `json:"time"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type ordersResponse struct {
	Orders            []Order `json:"orders"`
	LastTransactionID string  `json:"lastTransactionID"`
}

type transactionsResponse struct {
	Transactions      []Transaction `json:"transactions"`
	LastTransactionID string        `json:"lastTransactionID"`
}

// get performs an authorized GET of path and decodes the JSON body into out.
// A 404 is reported as ErrNoData.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Accounts lists the accounts the token can see.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var r accountsResponse
	if err := c.get(ctx, "/v3/accounts", nil, &r); err != nil {
		return nil, err
	}
	if len(r.Accounts) == 0 {
		return nil, ErrNoData
	}
	return r.Accounts, nil
}

// Orders lists the account's orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	if c.accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}
	var r ordersResponse
	if err := c.get(ctx, "/v3/accounts/"+url.PathEscape(c.accountID)+"/orders", nil, &r); err != nil {
		return nil, err
	}
	if len(r.Orders) == 0 {
		return nil, ErrNoData
	}
	return r.Orders, nil
}

// Transactions lists account history between transaction ids from and to,
// inclusive. Zero values select 1 through 1000.
func (c *Client) Transactions(ctx context.Context, from, to int) ([]Transaction, error) {
	if c.accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}
	if from <= 0 {
		from = 1
	}
	if to <= 0 {
		to = from + 999
	}
	if to < from {
		return nil, fmt.Errorf("transaction range %d-%d is empty", from, to)
	}

	params := url.Values{}
	params.Set("from", strconv.Itoa(from))
	params.Set("to", strconv.Itoa(to))

	var r transactionsResponse
	path := "/v3/accounts/" + url.PathEscape(c.accountID) + "/transactions/idrange"
	if err := c.get(ctx, path, params, &r); err != nil {
		return nil, err
	}
	if len(r.Transactions) == 0 {
		return nil, ErrNoData
	}
	return r.Transactions, nil
}
