package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Luismi76/fiestapp-sub003/internal/money"
)

type OrderProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOrderProvider(apiKey, baseURL string) *OrderProvider {
	return &OrderProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *OrderProvider) Name() string { return "order" }

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
	Message string `json:"message"`
}

func (p *OrderProvider) CreateIntent(ctx context.Context, req CreateRequest) (Intent, error) {
	intentType := "CAPTURE"
	if req.Hold {
		intentType = "AUTHORIZE"
	}
	payload := map[string]any{
		"intent":       intentType,
		"reference_id": req.ReferenceID,
		"amount": map[string]string{
			"currency_code": req.Currency,
			"value":         money.FormatMinor(req.Amount),
		},
		"application_context": map[string]string{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		},
	}
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", payload, &out); err != nil {
		return Intent{}, &ProviderError{Provider: p.Name(), Op: "create", Ref: req.ReferenceID, Err: err}
	}
	intent := Intent{ExternalRef: out.ID, Status: mapOrderStatus(out.Status)}
	for _, link := range out.Links {
		if link.Rel == "approve" {
			intent.ApprovalURL = link.Href
		}
	}
	return intent, nil
}

func (p *OrderProvider) Confirm(ctx context.Context, externalRef string) (Status, error) {
	var out orderResponse
	if err := p.do(ctx, http.MethodGet, "/v2/checkout/orders/"+externalRef, nil, &out); err != nil {
		return StatusFailed, &ProviderError{Provider: p.Name(), Op: "confirm", Ref: externalRef, Err: err}
	}
	return mapOrderStatus(out.Status), nil
}

func (p *OrderProvider) Capture(ctx context.Context, externalRef string) (Status, error) {
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+externalRef+"/capture", map[string]any{}, &out); err != nil {
		return StatusFailed, &ProviderError{Provider: p.Name(), Op: "capture", Ref: externalRef, Err: err}
	}
	return mapOrderStatus(out.Status), nil
}

func (p *OrderProvider) Refund(ctx context.Context, externalRef string, amount int64) error {
	payload := map[string]any{
		"amount": map[string]string{"value": money.FormatMinor(amount)},
	}
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+externalRef+"/refund", payload, &out); err != nil {
		return &ProviderError{Provider: p.Name(), Op: "refund", Ref: externalRef, Err: err}
	}
	return nil
}

func (p *OrderProvider) Void(ctx context.Context, externalRef string) error {
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+externalRef+"/void", map[string]any{}, &out); err != nil {
		return &ProviderError{Provider: p.Name(), Op: "void", Ref: externalRef, Err: err}
	}
	return nil
}

func (p *OrderProvider) do(ctx context.Context, method, path string, payload any, out *orderResponse) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if out.Message != "" {
			return fmt.Errorf("%s", out.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func mapOrderStatus(raw string) Status {
	switch raw {
	case "CREATED", "PAYER_ACTION_REQUIRED", "SAVED":
		return StatusRequiresAction
	case "PENDING":
		return StatusProcessing
	case "APPROVED", "AUTHORIZED":
		return StatusAuthorized
	case "COMPLETED":
		return StatusCaptured
	case "VOIDED":
		return StatusVoided
	default:
		return StatusFailed
	}
}
