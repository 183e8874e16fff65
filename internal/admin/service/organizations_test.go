package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateOrganization(t *testing.T) {
	f := newFixture(t)

	created, err := f.organizations.Create(f.ctx, f.admin, CreateOrganizationInput{
		Name:         " Acme Builders ",
		Slug:         "acme-builders",
		Plan:         domain.PlanProfessional,
		ContactEmail: "Ops@Acme.test",
	})
	require.NoError(t, err)
	require.Nil(t, created.PMInvitation)

	org := created.Organization
	require.Equal(t, "Acme Builders", org.Name)
	require.Equal(t, domain.OrgStatusTrial, org.Status)
	require.Equal(t, "ops@acme.test", org.ContactEmail)
	require.Equal(t, f.admin.User.ID, org.CreatedBy)
	require.NotNil(t, org.LastActivityAt)

	stored, err := f.store.Organizations().GetOrganizationBySlug(f.ctx, "acme-builders")
	require.NoError(t, err)
	require.Equal(t, org.ID, stored.ID)

	audits := f.auditEntries(t, domain.ActionOrgCreated)
	require.Len(t, audits, 1)
	require.Equal(t, domain.OrgCreated{Plan: domain.PlanProfessional}, audits[0].Metadata)
}

func TestCreateOrganizationDefaultsPlan(t *testing.T) {
	f := newFixture(t)

	created, err := f.organizations.Create(f.ctx, f.admin, CreateOrganizationInput{Name: "Tiny", Slug: "tiny"})
	require.NoError(t, err)
	require.Equal(t, domain.PlanFree, created.Organization.Plan)
}

func TestCreateOrganizationValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		in    CreateOrganizationInput
		field string
	}{
		{"missing name", CreateOrganizationInput{Name: "  ", Slug: "ok"}, "name"},
		{"uppercase slug", CreateOrganizationInput{Name: "A", Slug: "Acme"}, "slug"},
		{"double hyphen", CreateOrganizationInput{Name: "A", Slug: "a--b"}, "slug"},
		{"trailing hyphen", CreateOrganizationInput{Name: "A", Slug: "acme-"}, "slug"},
		{"bad plan", CreateOrganizationInput{Name: "A", Slug: "a", Plan: "GOLD"}, "plan"},
		{"bad contact", CreateOrganizationInput{Name: "A", Slug: "a", ContactEmail: "nope"}, "contactEmail"},
		{"bad pm email", CreateOrganizationInput{Name: "A", Slug: "a", PMEmail: "nope"}, "pmEmail"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.organizations.Create(f.ctx, f.admin, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tc.field)
		})
	}

	orgs, err := f.organizations.List(f.ctx, f.admin, domain.OrganizationFilter{})
	require.NoError(t, err)
	require.Empty(t, orgs)
}

func TestCreateOrganizationSlugTaken(t *testing.T) {
	f := newFixture(t)
	f.seedOrg(t, "acme")

	_, err := f.organizations.Create(f.ctx, f.admin, CreateOrganizationInput{Name: "Acme Two", Slug: "acme"})
	require.ErrorIs(t, err, ErrSlugTaken)

	orgs, err := f.organizations.List(f.ctx, f.admin, domain.OrganizationFilter{})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Len(t, f.auditEntries(t, domain.ActionOrgCreated), 1)
}

func TestCreateOrganizationAttachesExistingPM(t *testing.T) {
	f := newFixture(t)
	pm := f.seedUser(t, "pm@acme.test", "Pat", domain.RoleQA, "")

	created, err := f.organizations.Create(f.ctx, f.admin, CreateOrganizationInput{
		Name:    "Acme",
		Slug:    "acme",
		PMEmail: "PM@acme.test",
	})
	require.NoError(t, err)
	require.Nil(t, created.PMInvitation)
	require.Empty(t, f.sender.messages())

	detail, err := f.organizations.Get(f.ctx, f.admin, created.Organization.ID)
	require.NoError(t, err)
	require.Len(t, detail.Members, 1)
	require.Equal(t, pm.ID, detail.Members[0].UserID)
	require.Equal(t, domain.RolePM, detail.Members[0].Role)
	require.Equal(t, "Pat", detail.Members[0].UserName)

	user, err := f.store.Users().GetUserByID(f.ctx, pm.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RolePM, user.Role)
	require.Equal(t, created.Organization.ID, user.OrganizationID)
}

func TestCreateOrganizationInvitesUnknownPM(t *testing.T) {
	f := newFixture(t)

	created, err := f.organizations.Create(f.ctx, f.admin, CreateOrganizationInput{
		Name:    "Acme",
		Slug:    "acme",
		PMEmail: "newpm@acme.test",
	})
	require.NoError(t, err)
	require.NotNil(t, created.PMInvitation)
	require.Equal(t, domain.RolePM, created.PMInvitation.Invitation.Role)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "newpm@acme.test", msgs[0].To)

	audits := f.auditEntries(t, domain.ActionOrgCreated)
	require.Len(t, audits, 1)
	require.Equal(t, domain.OrgCreated{Plan: domain.PlanFree, PMEmail: "newpm@acme.test"}, audits[0].Metadata)
}

func TestSuspendAndActivateOrganization(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")

	_, err := f.organizations.Suspend(f.ctx, f.admin, org.ID, "   ")
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.organizations.Suspend(f.ctx, f.admin, idx.New().String(), "late payment")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	suspended, err := f.organizations.Suspend(f.ctx, f.admin, org.ID, " late payment ")
	require.NoError(t, err)
	require.Equal(t, domain.OrgStatusSuspended, suspended.Status)
	require.Equal(t, "late payment", suspended.SuspensionReason)
	require.Equal(t, f.admin.User.ID, suspended.SuspendedBy)
	require.NotNil(t, suspended.SuspendedAt)

	audits := f.auditEntries(t, domain.ActionOrgSuspended)
	require.Len(t, audits, 1)
	require.Equal(t, domain.OrgSuspended{Reason: "late payment"}, audits[0].Metadata)

	active, err := f.organizations.Activate(f.ctx, f.admin, org.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrgStatusActive, active.Status)
	require.Nil(t, active.SuspendedAt)
	require.Empty(t, active.SuspendedBy)
	require.Empty(t, active.SuspensionReason)

	stored, err := f.store.Organizations().GetOrganizationByID(f.ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrgStatusActive, stored.Status)
	require.Nil(t, stored.SuspendedAt)

	require.Len(t, f.auditEntries(t, domain.ActionOrgActivated), 1)
}

func TestUpdateOrganizationPlan(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")

	_, err := f.organizations.UpdatePlan(f.ctx, f.admin, org.ID, "GOLD", "10")
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.organizations.UpdatePlan(f.ctx, f.admin, org.ID, domain.PlanEnterprise, "12.345")
	require.ErrorIs(t, err, ErrValidationFailed)

	updated, err := f.organizations.UpdatePlan(f.ctx, f.admin, org.ID, domain.PlanEnterprise, "1999.50")
	require.NoError(t, err)
	require.Equal(t, domain.PlanEnterprise, updated.Plan)
	require.Equal(t, domain.Cents(199950), updated.MonthlyRevenue)

	audits := f.auditEntries(t, domain.ActionOrgPlanChanged)
	require.Len(t, audits, 1)
	require.Equal(t, domain.OrgPlanChanged{
		Plan:           domain.PlanEnterprise,
		PreviousPlan:   domain.PlanStarter,
		MonthlyRevenue: 199950,
	}, audits[0].Metadata)

	downgraded, err := f.organizations.UpdatePlan(f.ctx, f.admin, org.ID, domain.PlanFree, "")
	require.NoError(t, err)
	require.Equal(t, domain.Cents(0), downgraded.MonthlyRevenue)
}

func TestUpdateOrganizationRecordsChangedFields(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")

	updated, err := f.organizations.Update(f.ctx, f.admin, org.ID, OrganizationPatch{
		Name:     strPtr(org.Name),
		Industry: strPtr(" Construction "),
		Website:  strPtr("https://acme.test"),
	})
	require.NoError(t, err)
	require.Equal(t, "Construction", updated.Industry)
	require.Equal(t, "https://acme.test", updated.Website)

	audits := f.auditEntries(t, domain.ActionOrgUpdated)
	require.Len(t, audits, 1)
	require.Equal(t, domain.OrgUpdated{Fields: []string{"industry", "website"}}, audits[0].Metadata)

	// Re-applying the same values is a no-op with no audit entry.
	_, err = f.organizations.Update(f.ctx, f.admin, org.ID, OrganizationPatch{Industry: strPtr("Construction")})
	require.NoError(t, err)
	require.Len(t, f.auditEntries(t, domain.ActionOrgUpdated), 1)

	_, err = f.organizations.Update(f.ctx, f.admin, org.ID, OrganizationPatch{ContactEmail: strPtr("bad")})
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.organizations.Update(f.ctx, f.admin, org.ID, OrganizationPatch{Name: strPtr("")})
	require.ErrorIs(t, err, ErrValidationFailed)

	// Clearing an optional email is allowed.
	_, err = f.organizations.Update(f.ctx, f.admin, org.ID, OrganizationPatch{ContactEmail: strPtr("ops@acme.test")})
	require.NoError(t, err)
	cleared, err := f.organizations.Update(f.ctx, f.admin, org.ID, OrganizationPatch{ContactEmail: strPtr("")})
	require.NoError(t, err)
	require.Empty(t, cleared.ContactEmail)
}

func TestListOrganizations(t *testing.T) {
	f := newFixture(t)
	acme := f.seedOrg(t, "acme")
	f.seedOrg(t, "globex")
	_, err := f.organizations.Suspend(f.ctx, f.admin, acme.ID, "fraud")
	require.NoError(t, err)

	suspended, err := f.organizations.List(f.ctx, f.admin, domain.OrganizationFilter{Status: domain.OrgStatusSuspended})
	require.NoError(t, err)
	require.Len(t, suspended, 1)
	require.Equal(t, acme.ID, suspended[0].ID)

	found, err := f.organizations.List(f.ctx, f.admin, domain.OrganizationFilter{Search: "GLOB"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "globex", found[0].Slug)

	_, err = f.organizations.List(f.ctx, f.admin, domain.OrganizationFilter{Status: "GONE"})
	require.ErrorIs(t, err, ErrValidationFailed)

	pm := f.callerFor(f.seedUser(t, "pm@acme.test", "Pat", domain.RolePM, acme.ID))
	_, err = f.organizations.List(f.ctx, pm, domain.OrganizationFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOrganizationMutationSurvivesAuditFailure(t *testing.T) {
	f := newFixture(t)

	reports := 0
	f.organizations.Audit = &AuditRecorder{
		Store:    brokenAuditStore{Store: f.store},
		Reporter: FailureReporterFunc(func(context.Context, domain.AuditLog, error) { reports++ }),
		Now:      f.clock.Now,
	}

	created, err := f.organizations.Create(f.ctx, f.admin, CreateOrganizationInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	require.Equal(t, 1, reports)

	_, err = f.store.Organizations().GetOrganizationByID(f.ctx, created.Organization.ID)
	require.NoError(t, err)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.organizations.Get(f.ctx, f.admin, "../acme")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.organizations.Activate(f.ctx, f.admin, "acme")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.invitations.ListOrganizationInvitations(f.ctx, f.admin, "")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	require.ErrorIs(t, f.invitations.RevokeInvitation(f.ctx, f.admin, "inv-1"), ErrInvitationNotFound)
	require.ErrorIs(t, f.invitations.RevokeSuperAdminInvite(f.ctx, f.admin, "inv-1"), ErrInvitationNotFound)

	_, err = f.impersonation.Issue(f.ctx, f.admin, "user-1")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.flags.Toggle(f.ctx, f.admin, "beta", true)
	require.ErrorIs(t, err, ErrFlagNotFound)

	// The guard still runs first.
	_, err = f.organizations.Get(f.ctx, domain.Caller{}, "acme")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
