// Package client is the HTTP client for the ToolSnap backend. Every outbound
// call goes through the authenticated transport, which attaches the bearer
// access token and performs the one-shot refresh-and-retry on 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenStore holds the access/refresh token pair. Implementations are
// process-wide singletons; the transport is the only concurrent writer.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string) error
	Clear()
}

type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenStore
}

func New(baseURL string, tokens TokenStore) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: base,
		tokens:  tokens,
		httpc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newAuthTransport(base, tokens),
		},
	}
}

// StatusError is a non-2xx backend reply. The raw body is kept so every abort
// can be diagnosed without server-side logs.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d\n%s", e.Op, e.StatusCode, e.Body)
}

// do performs one backend call and returns the raw response body. Non-2xx
// replies become a *StatusError carrying status and body.
func (c *Client) do(ctx context.Context, method, path string, body any, op string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing %s request: %w", op, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(text)}
	}
	return text, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any, op string) error {
	text, err := c.do(ctx, http.MethodGet, path, nil, op)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(text, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any, op string) error {
	text, err := c.do(ctx, http.MethodPost, path, body, op)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(text, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}
