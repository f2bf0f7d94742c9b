package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", Credentials{Email: email, Password: password}, &out)
	return out, err
}

// Register creates an account. It does not establish a session.
func (c *Client) Register(ctx context.Context, in Registration) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/register", in, &out)
	return out, err
}

// GoogleLoginURL is where a browser is sent to start the Google sign-in
// flow. The backend finishes it by redirecting to /login/success?token=.
func (c *Client) GoogleLoginURL() string {
	return c.endpoint("/auth/google/login")
}
