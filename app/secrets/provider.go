package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider retrieves the marketplace API key at request time. Callers may
// cache the key for the duration of a single ingestion run.
type Provider interface {
	GetAPIKey(ctx context.Context) (string, error)
}

// CredentialError indicates the marketplace API key could not be retrieved
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("credential error: %s", e.Reason)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

var _ Provider = (*FunctionProvider)(nil)
var _ Provider = (*StaticProvider)(nil)

// FunctionProvider invokes a serverless secret-function endpoint to obtain
// the marketplace API key. The function is expected to respond with a JSON
// body containing an "apiKey" field.
type FunctionProvider struct {
	baseURL      string
	serviceToken string
	userAgent    string
	httpClient   *http.Client
}

func NewFunctionProvider(baseURL, serviceToken, userAgent string, httpClient *http.Client) *FunctionProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &FunctionProvider{
		baseURL:      strings.TrimRight(baseURL, "/"),
		serviceToken: serviceToken,
		userAgent:    userAgent,
		httpClient:   httpClient,
	}
}

func (p *FunctionProvider) GetAPIKey(ctx context.Context) (string, error) {
	if p.baseURL == "" {
		return "", &CredentialError{Reason: "secret-function URL is not configured"}
	}

	url := p.baseURL + "/functions/v1/get-marketplace-key"

	req, err := http.NewRequestWithContext(ctx, "POST", url, nil)
	if err != nil {
		return "", &CredentialError{Reason: "failed to create request", Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+p.serviceToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &CredentialError{Reason: "secret-function call failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &CredentialError{Reason: fmt.Sprintf("secret-function returned HTTP %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &CredentialError{Reason: "failed to read response body", Err: err}
	}

	var body struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", &CredentialError{Reason: "malformed secret-function response", Err: err}
	}

	if body.APIKey == "" {
		return "", &CredentialError{Reason: "secret-function response contains no key"}
	}

	return body.APIKey, nil
}

// StaticProvider returns a fixed API key from configuration. Used for local
// development where no secret-function endpoint is available.
type StaticProvider struct {
	apiKey string
}

func NewStaticProvider(apiKey string) *StaticProvider {
	return &StaticProvider{apiKey: apiKey}
}

func (p *StaticProvider) GetAPIKey(ctx context.Context) (string, error) {
	if p.apiKey == "" {
		return "", &CredentialError{Reason: "no API key configured"}
	}
	return p.apiKey, nil
}
