package api

import (
	"context"
	"net/http"
)

// RunMatch recomputes matches between the caller's CVs and all job offers.
func (c *Client) RunMatch(ctx context.Context) (MatchRun, error) {
	var out MatchRun
	err := c.do(ctx, http.MethodPost, "/match/run", struct{}{}, &out)
	return out, err
}

func (c *Client) GetMatchResults(ctx context.Context) (MatchResults, error) {
	var out MatchResults
	err := c.do(ctx, http.MethodGet, "/match/results", nil, &out)
	return out, err
}
