package adminsdk

import (
	"context"
	"net/http"
)

// Bootstrap creates the first super admin. It fails once any super admin
// exists.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/v1/bootstrap", nil, req,
		map[string]string{BootstrapTokenHeader: token}, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SignIn authenticates and stores the session cookie in the client's jar.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error) {
	s, err := call[SessionResponse](ctx, c, http.MethodPost, "/v1/auth/sign-in", nil, req, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SignOut revokes the current session server-side.
func (c *Client) SignOut(ctx context.Context) error {
	return callNoData(ctx, c, http.MethodPost, "/v1/auth/sign-out", nil, http.StatusOK)
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	u, err := call[User](ctx, c, http.MethodGet, "/v1/auth/me", nil, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnrollTOTP starts MFA enrollment. The secret is inactive until
// VerifyTOTP succeeds.
func (c *Client) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	r, err := call[TOTPEnrollResponse](ctx, c, http.MethodPost, "/v1/mfa/totp/enroll", nil, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) VerifyTOTP(ctx context.Context, code string) error {
	return callNoData(ctx, c, http.MethodPost, "/v1/mfa/totp/verify", TOTPCodeRequest{Code: code}, http.StatusOK)
}

func (c *Client) RemoveTOTP(ctx context.Context, code string) error {
	return callNoData(ctx, c, http.MethodDelete, "/v1/mfa/totp", TOTPCodeRequest{Code: code}, http.StatusOK)
}
