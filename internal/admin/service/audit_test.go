package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/stretchr/testify/require"
)

func TestAuditListFiltersAndGuards(t *testing.T) {
	f := newFixture(t)
	acme := f.seedOrg(t, "acme")
	f.seedOrg(t, "globex")
	f.clock.Advance(time.Minute)
	_, err := f.organizations.Suspend(f.ctx, f.admin, acme.ID, "chargeback")
	require.NoError(t, err)

	entries, err := f.audit.List(f.ctx, f.admin, domain.AuditFilter{
		TargetType: domain.TargetOrganization,
		TargetID:   acme.ID,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, domain.ActionOrgSuspended, entries[0].Action)
	require.Equal(t, domain.ActionOrgCreated, entries[1].Action)
	require.Equal(t, "Root", entries[0].PerformerName)
	require.Equal(t, "root@godview.test", entries[0].PerformerEmail)

	limited, err := f.audit.List(f.ctx, f.admin, domain.AuditFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	_, err = f.audit.List(f.ctx, f.admin, domain.AuditFilter{TargetType: "PLANET"})
	require.ErrorIs(t, err, ErrValidationFailed)

	pm := f.callerFor(f.seedUser(t, "pm@acme.test", "Pat", domain.RolePM, acme.ID))
	_, err = f.audit.List(f.ctx, pm, domain.AuditFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuditRecordFillsUnknownProvenance(t *testing.T) {
	f := newFixture(t)
	caller := f.admin
	caller.IPAddress = ""
	caller.UserAgent = "  "

	f.audit.Record(f.ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetUser, ID: caller.User.ID, Name: caller.User.Email},
		Metadata: domain.UserImpersonated{TargetUser: "x@acme.test"},
	})

	entries := f.auditEntries(t, domain.ActionUserImpersonated)
	require.Len(t, entries, 1)
	require.Equal(t, "unknown", entries[0].IPAddress)
	require.Equal(t, "unknown", entries[0].UserAgent)

	var nilRecorder *AuditRecorder
	nilRecorder.Record(f.ctx, caller, AuditEntry{Metadata: domain.OrgActivated{}})
}
