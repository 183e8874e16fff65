package http

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/godview/pkg/adminsdk"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, c *apiClient, key, orgID string) bool {
	t.Helper()

	status, resp := c.do(http.MethodGet, "/v1/feature-flags/"+key+"/evaluate?organizationId="+orgID, nil)
	require.Equal(t, http.StatusOK, status)
	return decodeData[adminsdk.FlagEvaluation](t, resp).Enabled
}

func TestFeatureFlagLifecycle(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()
	app := e.client()

	status, resp := c.do(http.MethodPost, "/v1/feature-flags", adminsdk.CreateFeatureFlagRequest{
		Key:  "new-dashboard",
		Name: "New dashboard",
	})
	require.Equal(t, http.StatusCreated, status, resp.Message)
	flag := decodeData[adminsdk.FeatureFlag](t, resp)
	require.False(t, flag.IsEnabled)
	require.Empty(t, flag.EnabledForOrgs)
	require.NotNil(t, flag.EnabledForOrgs)

	status, resp = c.do(http.MethodPost, "/v1/feature-flags", adminsdk.CreateFeatureFlagRequest{Key: "new-dashboard", Name: "Again"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "key_taken", resp.Error)

	require.False(t, evaluate(t, app, "new-dashboard", "org-a"))

	status, _ = c.do(http.MethodPut, "/v1/feature-flags/"+flag.ID+"/enabled", adminsdk.ToggleFeatureFlagRequest{Enabled: true})
	require.Equal(t, http.StatusOK, status)
	require.True(t, evaluate(t, app, "new-dashboard", "org-a"))

	// An allow list narrows the rollout
	status, resp = c.do(http.MethodPut, "/v1/feature-flags/"+flag.ID+"/organizations", adminsdk.FlagOrganizationsRequest{
		OrganizationIDs: []string{"org-a"},
		Enable:          true,
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"org-a"}, decodeData[adminsdk.FeatureFlag](t, resp).EnabledForOrgs)
	require.True(t, evaluate(t, app, "new-dashboard", "org-a"))
	require.False(t, evaluate(t, app, "new-dashboard", "org-b"))

	// Moving an organization to the deny list drops it from the allow list
	status, resp = c.do(http.MethodPut, "/v1/feature-flags/"+flag.ID+"/organizations", adminsdk.FlagOrganizationsRequest{
		OrganizationIDs: []string{"org-a"},
		Enable:          false,
	})
	require.Equal(t, http.StatusOK, status)
	updated := decodeData[adminsdk.FeatureFlag](t, resp)
	require.Empty(t, updated.EnabledForOrgs)
	require.Equal(t, []string{"org-a"}, updated.DisabledForOrgs)
	require.False(t, evaluate(t, app, "new-dashboard", "org-a"))
	require.True(t, evaluate(t, app, "new-dashboard", "org-b"))

	status, resp = c.do(http.MethodGet, "/v1/feature-flags", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, decodeData[[]adminsdk.FeatureFlag](t, resp), 1)
}

func TestFeatureFlagUnknownKeyEvaluatesFalse(t *testing.T) {
	e := newTestEnv(t)
	require.False(t, evaluate(t, e.client(), "does-not-exist", ""))
}

func TestFeatureFlagErrors(t *testing.T) {
	e := newTestEnv(t)
	c := e.admin()

	status, resp := c.do(http.MethodPost, "/v1/feature-flags", adminsdk.CreateFeatureFlagRequest{Key: "Bad Key!", Name: "x"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, resp.Fields, "key")

	status, resp = c.do(http.MethodPut, "/v1/feature-flags/missing/enabled", adminsdk.ToggleFeatureFlagRequest{Enabled: true})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Feature flag not found", resp.Message)
}
