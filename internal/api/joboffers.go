package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListJobOffers(ctx context.Context) ([]JobOffer, error) {
	var out []JobOffer
	err := c.do(ctx, http.MethodGet, "/job-offers/", nil, &out)
	return out, err
}

func (c *Client) GetJobOffer(ctx context.Context, id string) (JobOffer, error) {
	var out JobOffer
	err := c.do(ctx, http.MethodGet, "/job-offers/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) CreateJobOffer(ctx context.Context, in JobOfferInput) (JobOffer, error) {
	var out JobOffer
	err := c.do(ctx, http.MethodPost, "/job-offers/", in, &out)
	return out, err
}

func (c *Client) UpdateJobOffer(ctx context.Context, id string, in JobOfferInput) (JobOffer, error) {
	var out JobOffer
	err := c.do(ctx, http.MethodPut, "/job-offers/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) DeleteJobOffer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/job-offers/"+url.PathEscape(id), nil, nil)
}
