package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

// OrganizationFilter narrows ListOrganizations. Empty fields match all.
type OrganizationFilter struct {
	Status string
	Plan   string
	Search string
}

func (f OrganizationFilter) values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Plan != "" {
		q.Set("plan", f.Plan)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func orgPath(id string, suffix string) string {
	return "/v1/organizations/" + url.PathEscape(id) + suffix
}

func (c *Client) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*CreatedOrganization, error) {
	r, err := call[CreatedOrganization](ctx, c, http.MethodPost, "/v1/organizations", nil, req, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListOrganizations(ctx context.Context, filter OrganizationFilter) ([]OrganizationSummary, error) {
	return call[[]OrganizationSummary](ctx, c, http.MethodGet, "/v1/organizations", filter.values(), nil, nil, http.StatusOK)
}

func (c *Client) GetOrganization(ctx context.Context, id string) (*OrganizationDetail, error) {
	r, err := call[OrganizationDetail](ctx, c, http.MethodGet, orgPath(id, ""), nil, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateOrganization(ctx context.Context, id string, req UpdateOrganizationRequest) (*Organization, error) {
	return c.orgMutation(ctx, http.MethodPatch, orgPath(id, ""), req)
}

func (c *Client) SuspendOrganization(ctx context.Context, id, reason string) (*Organization, error) {
	return c.orgMutation(ctx, http.MethodPost, orgPath(id, "/suspend"), SuspendOrganizationRequest{Reason: reason})
}

func (c *Client) ActivateOrganization(ctx context.Context, id string) (*Organization, error) {
	return c.orgMutation(ctx, http.MethodPost, orgPath(id, "/activate"), nil)
}

func (c *Client) UpdateOrganizationPlan(ctx context.Context, id string, req UpdatePlanRequest) (*Organization, error) {
	return c.orgMutation(ctx, http.MethodPut, orgPath(id, "/plan"), req)
}

func (c *Client) orgMutation(ctx context.Context, method, path string, body any) (*Organization, error) {
	r, err := call[Organization](ctx, c, method, path, nil, body, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
