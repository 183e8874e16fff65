package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListFeatureFlags(ctx context.Context) ([]FeatureFlag, error) {
	return call[[]FeatureFlag](ctx, c, http.MethodGet, "/v1/feature-flags", nil, nil, nil, http.StatusOK)
}

func (c *Client) CreateFeatureFlag(ctx context.Context, req CreateFeatureFlagRequest) (*FeatureFlag, error) {
	f, err := call[FeatureFlag](ctx, c, http.MethodPost, "/v1/feature-flags", nil, req, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) ToggleFeatureFlag(ctx context.Context, id string, enabled bool) (*FeatureFlag, error) {
	f, err := call[FeatureFlag](ctx, c, http.MethodPut, "/v1/feature-flags/"+url.PathEscape(id)+"/enabled", nil,
		ToggleFeatureFlagRequest{Enabled: enabled}, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SetFeatureFlagOrganizations moves orgIDs onto the allow list when enable
// is true and onto the deny list otherwise.
func (c *Client) SetFeatureFlagOrganizations(ctx context.Context, id string, orgIDs []string, enable bool) (*FeatureFlag, error) {
	f, err := call[FeatureFlag](ctx, c, http.MethodPut, "/v1/feature-flags/"+url.PathEscape(id)+"/organizations", nil,
		FlagOrganizationsRequest{OrganizationIDs: orgIDs, Enable: enable}, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// EvaluateFeatureFlag needs no session. Unknown keys evaluate to false.
func (c *Client) EvaluateFeatureFlag(ctx context.Context, key, orgID string) (bool, error) {
	q := url.Values{}
	if orgID != "" {
		q.Set("organizationId", orgID)
	}
	r, err := call[FlagEvaluation](ctx, c, http.MethodGet, "/v1/feature-flags/"+url.PathEscape(key)+"/evaluate",
		q, nil, nil, http.StatusOK)
	if err != nil {
		return false, err
	}
	return r.Enabled, nil
}
