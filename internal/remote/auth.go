// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"inkwell/internal/auth"
)

const authPrefix = "/auth/v1/"

// tokenResponse is the password grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID           uuid.UUID `json:"id"`
		Email        string    `json:"email"`
		UserMetadata struct {
			DisplayName string `json:"display_name"`
			FullName    string `json:"full_name"`
		} `json:"user_metadata"`
	} `json:"user"`
}

// Authenticator signs dashboard users in against the hosted auth API.
type Authenticator struct {
	client *Client
}

// NewAuthenticator creates an Authenticator sharing c's transport.
func NewAuthenticator(c *Client) *Authenticator {
	return &Authenticator{client: c}
}

var _ auth.Authenticator = (*Authenticator)(nil)

// Authenticate exchanges email and password for an access token.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*auth.Identity, error) {
	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	var tok tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "token",
		params: url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &tok)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("authenticate: empty access token")
	}

	name := tok.User.UserMetadata.DisplayName
	if name == "" {
		name = tok.User.UserMetadata.FullName
	}
	if name == "" {
		name = tok.User.Email
	}
	return &auth.Identity{
		UserID:      tok.User.ID,
		Email:       tok.User.Email,
		DisplayName: name,
		AccessToken: tok.AccessToken,
	}, nil
}

// EndSession revokes the identity's access token.
func (a *Authenticator) EndSession(ctx context.Context, id *auth.Identity) error {
	if id == nil || id.AccessToken == "" {
		return nil
	}
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   authPrefix + "logout",
		bearer: id.AccessToken,
	}, nil)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}
