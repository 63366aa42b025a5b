package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/toolsnap/toolsnap/internal/models"
)

// authTransport attaches the bearer access token to every request except the
// auth endpoints. On a 401 it performs at most one token refresh and retries
// the original request once with the new token. The refresh is single-flight:
// concurrent 401s wait on the mutex and pick up the token refreshed by the
// first request instead of issuing their own refresh calls.
type authTransport struct {
	base     http.RoundTripper
	baseURL  string
	tokens   TokenStore
	refreshc *http.Client

	mu sync.Mutex
}

func newAuthTransport(baseURL string, tokens TokenStore) *authTransport {
	return &authTransport{
		base:     http.DefaultTransport,
		baseURL:  baseURL,
		tokens:   tokens,
		refreshc: &http.Client{Timeout: 15 * time.Second},
	}
}

func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/")
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil || isAuthEndpoint(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request; the bearer header
	// goes on a clone.
	attempt := req.Clone(req.Context())
	token := t.tokens.AccessToken()
	if token != "" {
		attempt.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	newToken, ok := t.refresh(req.Context(), token)
	if !ok {
		return resp, nil
	}

	retry, err := rewindRequest(req)
	if err != nil {
		log.Printf("[AUTH] cannot retry request after refresh: %v", err)
		return resp, nil
	}

	resp.Body.Close()
	retry.Header.Set("Authorization", "Bearer "+newToken)
	return t.base.RoundTrip(retry)
}

// refresh exchanges the stored refresh token for a new token pair. staleToken
// is the access token that just got a 401; when another request already
// refreshed, the stored token differs and is reused as-is.
func (t *authTransport) refresh(ctx context.Context, staleToken string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if current := t.tokens.AccessToken(); current != "" && current != staleToken {
		return current, true
	}

	refreshToken := t.tokens.RefreshToken()
	if refreshToken == "" {
		return "", false
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.refreshc.Do(req)
	if err != nil {
		log.Printf("[AUTH] token refresh failed: %v", err)
		t.tokens.Clear()
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[AUTH] token refresh rejected: %d", resp.StatusCode)
		t.tokens.Clear()
		return "", false
	}

	var auth models.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		log.Printf("[AUTH] decoding refresh response: %v", err)
		t.tokens.Clear()
		return "", false
	}

	if err := t.tokens.SetTokens(auth.AccessToken, auth.RefreshToken); err != nil {
		log.Printf("[AUTH] storing refreshed tokens: %v", err)
		return "", false
	}
	return auth.AccessToken, true
}

// rewindRequest builds a fresh copy of req whose body can be sent again.
func rewindRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	retry.Body = body
	return retry, nil
}
