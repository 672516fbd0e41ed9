package payments

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

type CardProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewCardProvider(apiKey, baseURL string) *CardProvider {
	return &CardProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *CardProvider) Name() string { return "card" }

type cardIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *CardProvider) CreateIntent(ctx context.Context, req CreateRequest) (Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	if req.Hold {
		form.Set("capture_method", "manual")
	} else {
		form.Set("capture_method", "automatic")
	}
	form.Set("metadata[reference_id]", req.ReferenceID)
	var out cardIntent
	if err := p.do(ctx, http.MethodPost, "/v1/payment_intents", form, &out); err != nil {
		return Intent{}, &ProviderError{Provider: p.Name(), Op: "create", Ref: req.ReferenceID, Err: err}
	}
	return Intent{
		ExternalRef:  out.ID,
		ClientSecret: out.ClientSecret,
		Status:       mapCardStatus(out.Status),
	}, nil
}

func (p *CardProvider) Confirm(ctx context.Context, externalRef string) (Status, error) {
	var out cardIntent
	if err := p.do(ctx, http.MethodGet, "/v1/payment_intents/"+externalRef, nil, &out); err != nil {
		return StatusFailed, &ProviderError{Provider: p.Name(), Op: "confirm", Ref: externalRef, Err: err}
	}
	return mapCardStatus(out.Status), nil
}

func (p *CardProvider) Capture(ctx context.Context, externalRef string) (Status, error) {
	var out cardIntent
	if err := p.do(ctx, http.MethodPost, "/v1/payment_intents/"+externalRef+"/capture", url.Values{}, &out); err != nil {
		return StatusFailed, &ProviderError{Provider: p.Name(), Op: "capture", Ref: externalRef, Err: err}
	}
	return mapCardStatus(out.Status), nil
}

func (p *CardProvider) Refund(ctx context.Context, externalRef string, amount int64) error {
	form := url.Values{}
	form.Set("payment_intent", externalRef)
	form.Set("amount", strconv.FormatInt(amount, 10))
	var out cardIntent
	if err := p.do(ctx, http.MethodPost, "/v1/refunds", form, &out); err != nil {
		return &ProviderError{Provider: p.Name(), Op: "refund", Ref: externalRef, Err: err}
	}
	return nil
}

func (p *CardProvider) Void(ctx context.Context, externalRef string) error {
	var out cardIntent
	if err := p.do(ctx, http.MethodPost, "/v1/payment_intents/"+externalRef+"/cancel", url.Values{}, &out); err != nil {
		return &ProviderError{Provider: p.Name(), Op: "void", Ref: externalRef, Err: err}
	}
	return nil
}

func (p *CardProvider) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if intent, ok := out.(*cardIntent); ok && intent.Error != nil {
			return errors.New(intent.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func mapCardStatus(raw string) Status {
	switch raw {
	case "requires_payment_method", "requires_confirmation", "requires_action":
		return StatusRequiresAction
	case "processing":
		return StatusProcessing
	case "requires_capture":
		return StatusAuthorized
	case "succeeded":
		return StatusCaptured
	case "canceled":
		return StatusVoided
	default:
		return StatusFailed
	}
}
