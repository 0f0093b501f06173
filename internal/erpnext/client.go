// Package erpnext is a thin client for a remote ERPNext server. The client
// is stateless and performs no caching; callers decide what to do on failure.
package erpnext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrRemoteUnavailable covers network failures, timeouts and remote 5xx.
	ErrRemoteUnavailable = errors.New("erpnext: remote unavailable")
	// ErrRemoteAuth is returned when the remote rejects the credentials.
	ErrRemoteAuth = errors.New("erpnext: authentication rejected")
	// ErrRemoteProtocol is returned on a malformed remote response.
	ErrRemoteProtocol = errors.New("erpnext: malformed response")
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchResource queries one resource collection, e.g. "Sales Order", with a
// field projection and row limit. Reads are GET-only. The returned value is
// the raw JSON array under the remote's "data" key.
func (c *Client) FetchResource(ctx context.Context, docType string, fields []string, limit int) (json.RawMessage, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("erpnext: marshal fields: %w", err)
	}

	params := url.Values{}
	params.Set("fields", string(fieldsJSON))
	params.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("%s/api/resource/%s?%s", c.baseURL, url.PathEscape(docType), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("erpnext: build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.apiSecret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteProtocol, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrRemoteProtocol)
	}
	return envelope.Data, nil
}

// Profile carries the fields the remote login endpoint reports about a user.
type Profile struct {
	FullName string
	Email    string
}

// Login authenticates username/password against the remote login endpoint.
// Bad credentials surface as ErrRemoteAuth; an unreachable remote surfaces
// as ErrRemoteUnavailable so callers can fall back to local auth.
func (c *Client) Login(ctx context.Context, username, password string) (*Profile, error) {
	payload, err := json.Marshal(map[string]string{"usr": username, "pwd": password})
	if err != nil {
		return nil, fmt.Errorf("erpnext: marshal login payload: %w", err)
	}

	endpoint := c.baseURL + "/api/method/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erpnext: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	var result struct {
		Message  string `json:"message"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteProtocol, err)
	}
	if result.Message != "Logged In" {
		return nil, ErrRemoteAuth
	}

	profile := &Profile{FullName: result.FullName, Email: result.Email}
	if profile.FullName == "" {
		profile.FullName = username
	}
	return profile, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrRemoteAuth, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, code)
	case code >= 400:
		return fmt.Errorf("%w: status %d", ErrRemoteProtocol, code)
	}
	return nil
}
