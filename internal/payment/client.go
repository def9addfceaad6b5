package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Gateway transaction states as the provider reports them.
const (
	GatewaySuccess   = "success"
	GatewayFailed    = "failed"
	GatewayAbandoned = "abandoned"
)

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

type GatewayClient interface {
	Initialize(ctx context.Context, email string, amountPesewas int64, reference string) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// HTTPGatewayClient talks to a Paystack-compatible transaction API.
type HTTPGatewayClient struct {
	Client    *http.Client
	BaseURL   string
	SecretKey string
}

type gatewayEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *HTTPGatewayClient) do(ctx context.Context, method, url string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var env gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if !env.Status {
		return fmt.Errorf("gateway error: %s", env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *HTTPGatewayClient) Initialize(ctx context.Context, email string, amountPesewas int64, reference string) (*InitializeResult, error) {
	body := map[string]any{
		"email":     email,
		"amount":    amountPesewas,
		"reference": reference,
		"currency":  "GHS",
	}
	var out InitializeResult
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/transaction/initialize", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPGatewayClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var out VerifyResult
	url := fmt.Sprintf("%s/transaction/verify/%s", c.BaseURL, reference)
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
