package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"
)

// ErrGatewayUnavailable is returned when the payment gateway cannot be reached
// or rejects the order-creation call.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Client talks to the payment gateway's Orders API
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *resty.Client
}

// NewClient builds a gateway client with the given credentials
func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      resty.New(),
	}
}

// CreateOrder registers a checkout order with the gateway and returns the
// gateway order ID. Amount is in minor units.
func (g *Client) CreateOrder(amount int64, currency, receiptID string) (string, error) {
	resp, err := g.http.R().
		SetBasicAuth(g.keyID, g.keySecret).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
			"receipt":  receiptID,
		}).
		Post(g.baseURL + "/orders")
	if err != nil {
		log.Printf("Gateway order creation failed: %v", err)
		return "", ErrGatewayUnavailable
	}
	if resp.StatusCode() != 200 {
		log.Printf("Gateway order creation returned %d: %s", resp.StatusCode(), resp.String())
		return "", ErrGatewayUnavailable
	}

	var orderResp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &orderResp); err != nil {
		log.Printf("Failed to parse gateway order response: %v", err)
		return "", ErrGatewayUnavailable
	}
	if orderResp.ID == "" {
		return "", fmt.Errorf("gateway returned empty order id: %w", ErrGatewayUnavailable)
	}

	return orderResp.ID, nil
}
