package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"kharcha/internal/core"
)

type profileResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Profile  core.Profile `json:"profile"`
	Data     core.Profile `json:"data"`
	ImageURL string       `json:"profile_image_url"`
}

// Profile fetches the user's profile record.
func (c *Client) Profile(ctx context.Context, userID int64) (core.Profile, error) {
	var resp profileResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/viewprofile/%d/", userID), nil, &resp); err != nil {
		return core.Profile{}, err
	}
	if !resp.Success {
		return core.Profile{}, fmt.Errorf("view profile: %s", resp.Message)
	}
	p := resp.Profile
	if resp.ImageURL != "" {
		p.ImageURL = resp.ImageURL
	}
	return p, nil
}

// ProfileUpdate carries the editable profile fields. The handler merges
// unedited fields from the previously fetched profile before calling
// UpdateProfile, so every field is always populated.
type ProfileUpdate struct {
	MonthlyIncome core.Money
	PhoneNumber   string
	MonthlyBudget core.Money
	SavingsGoal   core.Money
}

// ImageUpload is an optional profile image part.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// UpdateProfile submits the merged profile fields as multipart form data,
// plus the image when one was chosen.
func (c *Client) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate, image *ImageUpload) (core.Profile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"userId":         strconv.FormatInt(userID, 10),
		"monthly_income": update.MonthlyIncome.Decimal(),
		"phone_number":   update.PhoneNumber,
		"monthly_budget": update.MonthlyBudget.Decimal(),
		"savings_goal":   update.SavingsGoal.Decimal(),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return core.Profile{}, fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if image != nil {
		part, err := mw.CreateFormFile("profile_image", image.Filename)
		if err != nil {
			return core.Profile{}, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, image.Content); err != nil {
			return core.Profile{}, fmt.Errorf("copy image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return core.Profile{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/editprofile/", &buf)
	if err != nil {
		return core.Profile{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return core.Profile{}, fmt.Errorf("POST /api/editprofile/: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.Profile{}, c.asError(resp)
	}

	var out profileResponse
	if err := decodeJSON(resp.Body, &out); err != nil {
		return core.Profile{}, fmt.Errorf("decode edit profile response: %w", err)
	}
	if !out.Success {
		return core.Profile{}, fmt.Errorf("edit profile: %s", out.Message)
	}
	p := out.Data
	if out.ImageURL != "" {
		p.ImageURL = out.ImageURL
	}
	return p, nil
}
