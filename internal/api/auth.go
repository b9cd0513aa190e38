package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/machibo/backoffice/internal/domain"
)

// Login exchanges credentials for an access token. It does not touch the
// token store; see package auth.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	var data struct {
		domain.LoginResult
		Token string `json:"token"`
	}
	err := c.Do(ctx, Request{Method: http.MethodPost, Endpoint: "/auth/login", Body: creds}, &data)
	if err != nil {
		return domain.LoginResult{}, err
	}
	result := data.LoginResult
	if result.AccessToken == "" {
		result.AccessToken = data.Token
	}
	if result.AccessToken == "" {
		return domain.LoginResult{}, fmt.Errorf("api: login response carried no token: %w", ErrRequestFailed)
	}
	if result.Username == "" {
		result.Username = creds.Username
	}
	return result, nil
}
