package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	var out []Application
	err := c.do(ctx, http.MethodGet, "/applications/", nil, &out)
	return out, err
}

func (c *Client) GetApplication(ctx context.Context, id string) (Application, error) {
	var out Application
	err := c.do(ctx, http.MethodGet, "/applications/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ListApplicationsByUser(ctx context.Context, userID string) ([]Application, error) {
	var out []Application
	err := c.do(ctx, http.MethodGet, "/applications/user/"+url.PathEscape(userID), nil, &out)
	return out, err
}

func (c *Client) ListApplicationsByOffer(ctx context.Context, offerID string) ([]Application, error) {
	var out []Application
	err := c.do(ctx, http.MethodGet, "/applications/offer/"+url.PathEscape(offerID), nil, &out)
	return out, err
}

func (c *Client) CreateApplication(ctx context.Context, in ApplicationInput) (Application, error) {
	var out Application
	err := c.do(ctx, http.MethodPost, "/applications/", in, &out)
	return out, err
}

func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/applications/"+url.PathEscape(id), nil, nil)
}

// GenerateApplicationsFromMatches asks the backend to turn the caller's
// stored matches into applications with generated cover letters.
func (c *Client) GenerateApplicationsFromMatches(ctx context.Context) ([]Application, error) {
	var out []Application
	err := c.do(ctx, http.MethodPost, "/applications/generate-from-matches", struct{}{}, &out)
	return out, err
}
