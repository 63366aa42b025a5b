package client

import (
	"context"
	"log"

	"github.com/toolsnap/toolsnap/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates against the backend and stores the returned token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	if err := c.postJSON(ctx, "auth/login", loginRequest{Email: email, Password: password}, &auth, "login"); err != nil {
		return nil, err
	}
	if err := c.tokens.SetTokens(auth.AccessToken, auth.RefreshToken); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Logout revokes the stored refresh token and clears local credentials. The
// revoke call is fire-and-forget; local state is cleared even when it fails.
func (c *Client) Logout(ctx context.Context) {
	if refreshToken := c.tokens.RefreshToken(); refreshToken != "" {
		if err := c.postJSON(ctx, "auth/revoke", refreshTokenRequest{RefreshToken: refreshToken}, nil, "revoke"); err != nil {
			log.Printf("[AUTH] revoke failed: %v", err)
		}
	}
	c.tokens.Clear()
}
