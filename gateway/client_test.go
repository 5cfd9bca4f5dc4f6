package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(149900), body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.Equal(t, "rcpt_42", body.Receipt)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_test_001","status":"created"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_test", "secret_test")
	orderID, err := client.CreateOrder(149900, "INR", "rcpt_42")
	require.NoError(t, err)
	assert.Equal(t, "order_test_001", orderID)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_test", "secret_test")
	_, err := client.CreateOrder(100, "INR", "rcpt_1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrderUnreachable(t *testing.T) {
	// Port that nothing listens on
	client := NewClient("http://127.0.0.1:1", "key_test", "secret_test")
	_, err := client.CreateOrder(100, "INR", "rcpt_1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrderEmptyOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"created"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_test", "secret_test")
	_, err := client.CreateOrder(100, "INR", "rcpt_1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrderMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_test", "secret_test")
	_, err := client.CreateOrder(100, "INR", "rcpt_1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
