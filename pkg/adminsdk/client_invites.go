package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ============================================================================
// Super admin invitations
// ============================================================================

func (c *Client) InviteSuperAdmin(ctx context.Context, email string) (*IssuedSuperAdminInvite, error) {
	r, err := call[IssuedSuperAdminInvite](ctx, c, http.MethodPost, "/v1/admin-invites", nil,
		SuperAdminInviteRequest{Email: email}, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListSuperAdminInvites returns pending, unexpired invitations.
func (c *Client) ListSuperAdminInvites(ctx context.Context) ([]SuperAdminInvitation, error) {
	return call[[]SuperAdminInvitation](ctx, c, http.MethodGet, "/v1/admin-invites", nil, nil, nil, http.StatusOK)
}

func (c *Client) RevokeSuperAdminInvite(ctx context.Context, id string) error {
	return callNoData(ctx, c, http.MethodPost, "/v1/admin-invites/"+url.PathEscape(id)+"/revoke", nil, http.StatusOK)
}

// ValidateSuperAdminInvite is callable without a session.
func (c *Client) ValidateSuperAdminInvite(ctx context.Context, token string) (*SuperAdminInviteDetails, error) {
	r, err := call[SuperAdminInviteDetails](ctx, c, http.MethodGet, "/v1/admin-invites/validate",
		url.Values{"token": {token}}, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// AcceptSuperAdminInviteNew creates the invited account.
func (c *Client) AcceptSuperAdminInviteNew(ctx context.Context, req AcceptInviteNewRequest) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/v1/admin-invites/accept", nil, req, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AcceptSuperAdminInviteExisting elevates the signed-in account.
func (c *Client) AcceptSuperAdminInviteExisting(ctx context.Context, token string) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPut, "/v1/admin-invites/accept", nil,
		AcceptInviteRequest{Token: token}, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ============================================================================
// Organization invitations
// ============================================================================

func (c *Client) InviteOrgAdmin(ctx context.Context, orgID string, req OrgAdminInviteRequest) (*IssuedInvitation, error) {
	r, err := call[IssuedInvitation](ctx, c, http.MethodPost,
		"/v1/organizations/"+url.PathEscape(orgID)+"/admin-invites", nil, req, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) InviteMember(ctx context.Context, orgID string, req MemberInviteRequest) (*IssuedInvitation, error) {
	r, err := call[IssuedInvitation](ctx, c, http.MethodPost,
		"/v1/organizations/"+url.PathEscape(orgID)+"/invitations", nil, req, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListOrganizationInvitations(ctx context.Context, orgID string) ([]Invitation, error) {
	return call[[]Invitation](ctx, c, http.MethodGet,
		"/v1/organizations/"+url.PathEscape(orgID)+"/invitations", nil, nil, nil, http.StatusOK)
}

func (c *Client) RevokeInvitation(ctx context.Context, id string) error {
	return callNoData(ctx, c, http.MethodPost, "/v1/invitations/"+url.PathEscape(id)+"/revoke", nil, http.StatusOK)
}

func (c *Client) ValidateInvitation(ctx context.Context, token string) (*InvitationDetails, error) {
	r, err := call[InvitationDetails](ctx, c, http.MethodGet, "/v1/invitations/validate",
		url.Values{"token": {token}}, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) AcceptInvitation(ctx context.Context, token string) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/v1/invitations/accept", nil,
		AcceptInviteRequest{Token: token}, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) AcceptInvitationNew(ctx context.Context, req AcceptInviteNewRequest) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/v1/invitations/accept-new", nil, req, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
