package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/config"
)

// GatewayOrder is the order the payment gateway hands back for checkout.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates orders with the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (GatewayOrder, error)
}

// Client talks to a Razorpay-compatible orders API using basic auth.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (GatewayOrder, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	})
	if err != nil {
		return GatewayOrder{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return GatewayOrder{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return GatewayOrder{}, apperr.Wrap(apperr.External, "payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return GatewayOrder{}, apperr.Wrap(apperr.External, "payment gateway rejected the order",
			fmt.Errorf("gateway status %d: %s", resp.StatusCode, body))
	}
	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return GatewayOrder{}, apperr.Wrap(apperr.External, "payment gateway returned a bad response", err)
	}
	return order, nil
}

// VerifyCheckoutSignature checks the signature the checkout flow returns:
// HMAC-SHA256 over "<order_id>|<payment_id>" with the key secret, hex encoded.
func VerifyCheckoutSignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks a webhook delivery: HMAC-SHA256 over the raw
// request body with the webhook secret, hex encoded.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
