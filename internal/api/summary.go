package api

import (
	"context"
	"fmt"
	"net/http"

	"kharcha/internal/core"
)

type summaryResponse struct {
	Success bool `json:"success"`
	core.SummaryReport
}

// Summary fetches the precomputed dashboard aggregates for the user.
func (c *Client) Summary(ctx context.Context, userID int64) (core.SummaryReport, error) {
	var resp summaryResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/summary/%d", userID), nil, &resp); err != nil {
		return core.SummaryReport{}, err
	}
	if !resp.Success {
		return core.SummaryReport{}, fmt.Errorf("summary: backend reported failure")
	}
	return resp.SummaryReport, nil
}
