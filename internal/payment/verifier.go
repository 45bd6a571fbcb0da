package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go-commerce-ledger/pkg/config"

	"github.com/shopspring/decimal"
)

// Verifier confirms third-party payments against the external gateway.
// The verified amount must exactly match the claimed amount; anything else
// (including network failure) is treated as verification failure by callers.
type Verifier interface {
	Verify(ctx context.Context, reference string, expectedAmount decimal.Decimal) (bool, error)
}

type gatewayVerifier struct {
	baseURL string
	client  *http.Client
}

func NewGatewayVerifier(cfg *config.Config) Verifier {
	return &gatewayVerifier{
		baseURL: cfg.Payment.GatewayURL,
		client:  &http.Client{Timeout: cfg.Payment.Timeout},
	}
}

type verifyResponse struct {
	Verified bool   `json:"verified"`
	Amount   string `json:"amount"`
}

func (v *gatewayVerifier) Verify(ctx context.Context, reference string, expectedAmount decimal.Decimal) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/verify?reference=%s&amount=%s",
		v.baseURL, url.QueryEscape(reference), expectedAmount.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}

	if !body.Verified {
		return false, nil
	}

	verifiedAmount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return false, err
	}

	// The gateway must confirm the exact claimed amount.
	return verifiedAmount.Equal(expectedAmount), nil
}
