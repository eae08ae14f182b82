package oanda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return &Client{
		baseURL:    url,
		token:      "test-token",
		accountID:  "101-001-1234567-001",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNewClient(t *testing.T) {
	t.Run("default practice", func(t *testing.T) {
		client := NewClient("", "test-token", "acct")
		assert.Equal(t, PracticeURL, client.baseURL)
		assert.Equal(t, "test-token", client.token)
		assert.Equal(t, "acct", client.AccountID())
		assert.NotNil(t, client.httpClient)
	})

	t.Run("explicit url", func(t *testing.T) {
		client := NewClient(LiveURL+"/", "test-token", "acct")
		assert.Equal(t, LiveURL, client.baseURL)
	})
}

func TestAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/v3/accounts", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(accountsResponse{Accounts: []Account{{ID: "101-001-1234567-001"}}})
	}))
	defer server.Close()

	accounts, err := testClient(server.URL).Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "101-001-1234567-001", accounts[0].ID)
}

func TestOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/101-001-1234567-001/orders", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ordersResponse{Orders: []Order{
			{ID: "42", Type: "LIMIT", State: "PENDING", Instrument: "EUR_USD", Units: "1000", Price: "1.08500"},
		}})
	}))
	defer server.Close()

	orders, err := testClient(server.URL).Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "EUR_USD", orders[0].Instrument)
	assert.Equal(t, "1.08500", orders[0].Price)
}

func TestTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/101-001-1234567-001/transactions/idrange", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("from"))
		assert.Equal(t, "1000", r.URL.Query().Get("to"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(transactionsResponse{Transactions: []Transaction{
			{ID: "5", Type: "ORDER_FILL", Instrument: "USD_JPY", Units: "-2000", Price: "149.812", PL: "-12.4410"},
		}})
	}))
	defer server.Close()

	txs, err := testClient(server.URL).Transactions(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "ORDER_FILL", txs[0].Type)
	assert.Equal(t, "-12.4410", txs[0].PL)
}

func TestNoDataIsDistinct(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"transactions": [], "lastTransactionID": "0"}`))
		}))
		defer server.Close()

		_, err := testClient(server.URL).Transactions(context.Background(), 1, 50)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := testClient(server.URL).Orders(context.Background())
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestErrors(t *testing.T) {
	t.Run("API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errorMessage": "Invalid access token"}`))
		}))
		defer server.Close()

		_, err := testClient(server.URL).Accounts(context.Background())
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Contains(t, apiErr.Body, "Invalid access token")
		assert.False(t, errors.Is(err, ErrNoData))
	})

	t.Run("missing account", func(t *testing.T) {
		client := NewClient("", "test-token", "")
		_, err := client.Orders(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "account id is required")
	})

	t.Run("reversed range", func(t *testing.T) {
		_, err := testClient("http://unused").Transactions(context.Background(), 10, 5)
		assert.Error(t, err)
	})
}
