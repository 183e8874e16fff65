package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func withLimit(q url.Values, name string, n int) url.Values {
	if n > 0 {
		q.Set(name, strconv.Itoa(n))
	}
	return q
}

func (c *Client) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	r, err := call[PlatformStats](ctx, c, http.MethodGet, "/v1/stats", nil, nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Growth returns monthly signups oldest first. months <= 0 uses the server
// default.
func (c *Client) Growth(ctx context.Context, months int) ([]GrowthPoint, error) {
	return call[[]GrowthPoint](ctx, c, http.MethodGet, "/v1/stats/growth",
		withLimit(url.Values{}, "months", months), nil, nil, http.StatusOK)
}

func (c *Client) RecentActivity(ctx context.Context, limit int) ([]AuditLog, error) {
	return call[[]AuditLog](ctx, c, http.MethodGet, "/v1/activity",
		withLimit(url.Values{}, "limit", limit), nil, nil, http.StatusOK)
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]UserSearchResult, error) {
	return call[[]UserSearchResult](ctx, c, http.MethodGet, "/v1/users",
		url.Values{"q": {query}}, nil, nil, http.StatusOK)
}

// AuditLogFilter narrows AuditLogs. Empty fields match all.
type AuditLogFilter struct {
	TargetType string
	TargetID   string
	Limit      int
}

func (c *Client) AuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error) {
	q := url.Values{}
	if filter.TargetType != "" {
		q.Set("targetType", filter.TargetType)
	}
	if filter.TargetID != "" {
		q.Set("targetId", filter.TargetID)
	}
	return call[[]AuditLog](ctx, c, http.MethodGet, "/v1/audit-logs",
		withLimit(q, "limit", filter.Limit), nil, nil, http.StatusOK)
}

// EmailDeliveries lists the outbound email log, optionally by status.
func (c *Client) EmailDeliveries(ctx context.Context, status string, limit int) ([]EmailDelivery, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	return call[[]EmailDelivery](ctx, c, http.MethodGet, "/v1/email-deliveries",
		withLimit(q, "limit", limit), nil, nil, http.StatusOK)
}

// ============================================================================
// Impersonation
// ============================================================================

func (c *Client) Impersonate(ctx context.Context, userID string) (*ImpersonationResponse, error) {
	r, err := call[ImpersonationResponse](ctx, c, http.MethodPost,
		"/v1/users/"+url.PathEscape(userID)+"/impersonate", nil, nil, nil, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ConsumeImpersonation redeems a token. It is what the main application
// calls when the magic link is followed.
func (c *Client) ConsumeImpersonation(ctx context.Context, token string) (*User, error) {
	u, err := call[User](ctx, c, http.MethodPost, "/v1/impersonation/consume", nil,
		ConsumeImpersonationRequest{Token: token}, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
