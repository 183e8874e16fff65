package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureFlagEnabledFor(t *testing.T) {
	t.Parallel()

	t.Run("global switch off wins over every list", func(t *testing.T) {
		flag := FeatureFlag{
			IsEnabled:      false,
			EnabledForOrgs: []string{"A"},
		}
		require.False(t, flag.EnabledFor("A"))
		require.False(t, flag.EnabledFor("C"))
	})

	t.Run("deny list switches off a listed org", func(t *testing.T) {
		flag := FeatureFlag{
			IsEnabled:       true,
			EnabledForOrgs:  []string{"A"},
			DisabledForOrgs: []string{"A"},
		}
		require.False(t, flag.EnabledFor("A"))
	})

	t.Run("allow list restricts to listed orgs", func(t *testing.T) {
		flag := FeatureFlag{IsEnabled: true, EnabledForOrgs: []string{"A", "B"}}
		require.True(t, flag.EnabledFor("A"))
		require.True(t, flag.EnabledFor("B"))
		require.False(t, flag.EnabledFor("C"))
	})

	t.Run("empty allow list means everyone", func(t *testing.T) {
		flag := FeatureFlag{IsEnabled: true, DisabledForOrgs: []string{"B"}}
		require.True(t, flag.EnabledFor("A"))
		require.False(t, flag.EnabledFor("B"))
	})

	t.Run("no organization only checks the global switch", func(t *testing.T) {
		flag := FeatureFlag{IsEnabled: true, EnabledForOrgs: []string{"A"}}
		require.True(t, flag.EnabledFor(""))

		flag.IsEnabled = false
		require.False(t, flag.EnabledFor(""))
	})
}

func TestFeatureFlagSetOrgs(t *testing.T) {
	t.Parallel()

	flag := FeatureFlag{DisabledForOrgs: []string{"A", "C"}}

	flag.SetOrgs([]string{"A", "B", "B"}, true)
	require.Equal(t, []string{"A", "B"}, flag.EnabledForOrgs)
	require.Equal(t, []string{"C"}, flag.DisabledForOrgs)

	flag.SetOrgs([]string{"B"}, false)
	require.Equal(t, []string{"A"}, flag.EnabledForOrgs)
	require.Equal(t, []string{"C", "B"}, flag.DisabledForOrgs)
}
