package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
)

// Report is a streamed binary report. Close the body when done.
type Report struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// DownloadReport requests report generation for the user, optionally
// scoped to one category, and streams the resulting file. Unlike every
// other call this one is not bounded by the client timeout: the caller's
// context carries the deadline, and cancelling it aborts the upstream
// request. Report generation is the slow path.
func (c *Client) DownloadReport(ctx context.Context, userID int64, categoryID *int64) (*Report, error) {
	url := c.baseURL + fmt.Sprintf("/api/download-expense-report/%d/", userID)
	if categoryID != nil {
		url += "?category_id=" + strconv.FormatInt(*categoryID, 10)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	// Bypass the shared client timeout; the context deadline governs.
	httpc := &http.Client{Transport: c.httpc.Transport}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download report: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.asError(resp)
	}

	report := &Report{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			report.Filename = params["filename"]
		}
	}
	return report, nil
}
