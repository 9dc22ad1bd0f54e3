package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Registry client errors
var (
	// ErrUnavailable means the transport failed before a response arrived
	ErrUnavailable = errors.New("identity registry unavailable")
	// ErrRejected means the registry answered but declined the lookup
	ErrRejected = errors.New("identity registry rejected the lookup")
)

// Result is the canonical lookup response. All registry endpoints are
// adapted to this one shape at the boundary; nothing downstream branches
// on per-endpoint field names.
type Result struct {
	Matched bool   `json:"matched"`
	Score   int    `json:"score"`
	Message string `json:"message,omitempty"`
}

// Client looks up identity numbers against national registries
type Client interface {
	VerifyNIN(ctx context.Context, nin, fullName string) (*Result, error)
	VerifyLicense(ctx context.Context, licenseNumber, fullName string) (*Result, error)
}

// httpClient implements Client over the registry gateway's HTTP API
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a registry client. Returns nil when no base URL is
// configured; callers treat a nil client as "registry disabled".
func New(baseURL, apiKey string) Client {
	if baseURL == "" {
		return nil
	}
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// wireResponse is the raw registry envelope
type wireResponse struct {
	Success bool   `json:"success"`
	Match   bool   `json:"match"`
	Score   int    `json:"score"`
	Message string `json:"message"`
}

// VerifyNIN checks a national identification number
func (c *httpClient) VerifyNIN(ctx context.Context, nin, fullName string) (*Result, error) {
	return c.lookup(ctx, "/v1/nin/verify", map[string]string{
		"nin":       nin,
		"full_name": fullName,
	})
}

// VerifyLicense checks a driver's license number against the FRSC registry
func (c *httpClient) VerifyLicense(ctx context.Context, licenseNumber, fullName string) (*Result, error) {
	return c.lookup(ctx, "/v1/frsc/verify", map[string]string{
		"license_number": licenseNumber,
		"full_name":      fullName,
	})
}

func (c *httpClient) lookup(ctx context.Context, path string, payload map[string]string) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !wire.Success {
		msg := wire.Message
		if msg == "" {
			msg = "lookup declined"
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	return &Result{
		Matched: wire.Match,
		Score:   wire.Score,
		Message: wire.Message,
	}, nil
}
