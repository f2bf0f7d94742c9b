package api

import (
	"context"
	"net/http"
	"net/url"

	"jobportal/internal/auth"
)

type User = auth.User

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := c.do(ctx, http.MethodGet, "/users/", nil, &out)
	return out, err
}

func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, in Registration) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/users/", in, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}
