package api

import (
	"context"
	"fmt"
	"net/http"

	"kharcha/internal/core"
)

// SignupInput carries the account creation form. Field names follow the
// backend's request contract.
type SignupInput struct {
	FullName string `json:"FullName"`
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

// Signup creates an account. A duplicate email comes back as a 400 *Error
// with the backend's "Email already exists" message.
func (c *Client) Signup(ctx context.Context, in SignupInput) error {
	return c.doJSON(ctx, http.MethodPost, "/api/signup/", in, nil)
}

type loginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Login authenticates and returns the session identity the views persist.
// Invalid credentials are a 400 *Error.
func (c *Client) Login(ctx context.Context, email, password string) (core.Session, error) {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login/", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return core.Session{}, err
	}
	return core.Session{UserID: resp.UserID, Username: resp.Username}, nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type forgotPasswordResponse struct {
	// The backend spells this field "sucess" on this endpoint only; it is
	// part of the wire contract, not a client typo.
	Success bool   `json:"sucess"`
	Message string `json:"message"`
}

// ForgotPassword asks the backend to mail an OTP to the address.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	var resp forgotPasswordResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/forgetpassword/", forgotPasswordRequest{Email: email}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Status: http.StatusOK, Message: resp.Message}
	}
	return nil
}

type resetPasswordRequest struct {
	Email    string `json:"Email"`
	OTP      string `json:"otp"`
	Password string `json:"Password"`
}

type resetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetPassword submits the OTP with the replacement password.
func (c *Client) ResetPassword(ctx context.Context, email, otp, password string) error {
	var resp resetPasswordResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/reset/", resetPasswordRequest{Email: email, OTP: otp, Password: password}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		if resp.Message == "" {
			resp.Message = "error resetting password"
		}
		return fmt.Errorf("reset password: %s", resp.Message)
	}
	return nil
}

// DeleteUser removes the account. The caller is responsible for clearing
// local session state afterwards.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/deleteuser/%d/", userID), nil, nil)
}
