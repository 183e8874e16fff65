package http

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

func createOrg(t *testing.T, c *apiClient, slug string) adminsdk.Organization {
	t.Helper()

	status, resp := c.do(http.MethodPost, "/v1/organizations", adminsdk.CreateOrganizationRequest{
		Name: "Org " + slug,
		Slug: slug,
		Plan: "STARTER",
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	return decodeData[adminsdk.CreatedOrganization](t, resp).Organization
}

func TestOrganizationLifecycle(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()

	org := createOrg(t, c, "acme")
	require.Equal(t, "TRIAL", org.Status)
	require.Equal(t, "STARTER", org.Plan)
	require.Equal(t, "0.00", org.MonthlyRevenue)

	status, resp := c.do(http.MethodPost, "/v1/organizations", adminsdk.CreateOrganizationRequest{Name: "Again", Slug: "acme"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "slug_taken", resp.Error)

	status, resp = c.do(http.MethodPost, "/v1/organizations/"+org.ID+"/suspend", adminsdk.SuspendOrganizationRequest{Reason: "non-payment"})
	require.Equal(t, http.StatusOK, status)
	suspended := decodeData[adminsdk.Organization](t, resp)
	require.Equal(t, "SUSPENDED", suspended.Status)
	require.Equal(t, "non-payment", suspended.SuspensionReason)
	require.NotNil(t, suspended.SuspendedAt)

	status, resp = c.do(http.MethodGet, "/v1/organizations?status=SUSPENDED", nil)
	require.Equal(t, http.StatusOK, status)
	list := decodeData[[]adminsdk.OrganizationSummary](t, resp)
	require.Len(t, list, 1)
	require.Equal(t, org.ID, list[0].ID)

	status, resp = c.do(http.MethodPost, "/v1/organizations/"+org.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ACTIVE", decodeData[adminsdk.Organization](t, resp).Status)

	status, resp = c.do(http.MethodPut, "/v1/organizations/"+org.ID+"/plan", adminsdk.UpdatePlanRequest{Plan: "ENTERPRISE", MonthlyRevenue: "1999.50"})
	require.Equal(t, http.StatusOK, status)
	updated := decodeData[adminsdk.Organization](t, resp)
	require.Equal(t, "ENTERPRISE", updated.Plan)
	require.Equal(t, "1999.50", updated.MonthlyRevenue)

	name := "Acme Pty Ltd"
	status, resp = c.do(http.MethodPatch, "/v1/organizations/"+org.ID, adminsdk.UpdateOrganizationRequest{Name: &name})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, name, decodeData[adminsdk.Organization](t, resp).Name)

	status, resp = c.do(http.MethodGet, "/v1/organizations/"+org.ID, nil)
	require.Equal(t, http.StatusOK, status)
	detail := decodeData[adminsdk.OrganizationDetail](t, resp)
	require.Equal(t, name, detail.Name)
	require.Empty(t, detail.Members)

	// Every mutation left a trail carrying request provenance
	status, resp = c.do(http.MethodGet, "/v1/audit-logs?targetType=ORGANIZATION&targetId="+org.ID, nil)
	require.Equal(t, http.StatusOK, status)
	logs := decodeData[[]adminsdk.AuditLog](t, resp)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
		require.Equal(t, "127.0.0.1", l.IPAddress)
		require.Equal(t, "root@godview.test", l.PerformerEmail)
	}
	require.ElementsMatch(t, []string{
		string(domain.ActionOrgCreated),
		string(domain.ActionOrgSuspended),
		string(domain.ActionOrgActivated),
		string(domain.ActionOrgPlanChanged),
		string(domain.ActionOrgUpdated),
	}, actions)
}

func TestOrganizationValidationErrors(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()

	status, resp := c.do(http.MethodPost, "/v1/organizations", adminsdk.CreateOrganizationRequest{Name: "Bad", Slug: "Not A Slug"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_failed", resp.Error)
	require.Contains(t, resp.Fields, "slug")

	status, resp = c.do(http.MethodGet, "/v1/organizations?plan=GOLD", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, resp.Fields, "plan")

	status, resp = c.do(http.MethodGet, "/v1/organizations/missing", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Organization not found", resp.Message)

	status, resp = c.do(http.MethodPost, "/v1/organizations/missing/suspend", adminsdk.SuspendOrganizationRequest{Reason: "x"})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", resp.Error)
}

func TestCreateOrganizationInvitesUnknownPM(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()

	status, resp := c.do(http.MethodPost, "/v1/organizations", adminsdk.CreateOrganizationRequest{
		Name:    "Builders",
		Slug:    "builders",
		PMEmail: "new.pm@godview.test",
	})
	require.Equal(t, http.StatusCreated, status)
	created := decodeData[adminsdk.CreatedOrganization](t, resp)
	require.Equal(t, "FREE", created.Organization.Plan)
	require.NotNil(t, created.PMInvitation)
	require.Equal(t, "PM", created.PMInvitation.Invitation.Role)
	require.Contains(t, created.PMInvitation.Link, "/invite/")

	status, resp = c.do(http.MethodGet, "/v1/organizations/"+created.Organization.ID+"/invitations", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, decodeData[[]adminsdk.Invitation](t, resp), 1)
}

func TestStatsAndGrowth(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()
	createOrg(t, c, "one")
	createOrg(t, c, "two")

	status, resp := c.do(http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, status)
	stats := decodeData[adminsdk.PlatformStats](t, resp)
	require.Equal(t, 2, stats.TotalOrgs)
	require.Equal(t, 1, stats.TotalUsers)
	require.Equal(t, 2, stats.OrgsByStatus["TRIAL"])
	require.Equal(t, 2, stats.OrgsByPlan["STARTER"])

	status, resp = c.do(http.MethodGet, "/v1/stats/growth?months=3", nil)
	require.Equal(t, http.StatusOK, status)
	points := decodeData[[]adminsdk.GrowthPoint](t, resp)
	require.Len(t, points, 3)
	require.Equal(t, 2, points[2].Organizations)

	status, resp = c.do(http.MethodGet, "/v1/stats/growth?months=soon", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, resp.Fields, "months")

	status, resp = c.do(http.MethodGet, "/v1/activity?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, decodeData[[]adminsdk.AuditLog](t, resp), 1)

	status, resp = c.do(http.MethodGet, "/v1/users?q=ROOT", nil)
	require.Equal(t, http.StatusOK, status)
	users := decodeData[[]adminsdk.UserSearchResult](t, resp)
	require.Len(t, users, 1)
	require.Equal(t, "root@godview.test", users[0].Email)
}
