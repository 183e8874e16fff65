package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestIssueSuperAdminInviteRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	pm := f.callerFor(f.seedUser(t, "pm@acme.test", "Pat", domain.RolePM, ""))

	_, err := f.invitations.IssueSuperAdminInvite(f.ctx, domain.Caller{}, "new@godview.test")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.invitations.IssueSuperAdminInvite(f.ctx, pm, "new@godview.test")
	require.ErrorIs(t, err, ErrForbidden)

	suspended := f.admin
	suspended.User.IsSuspended = true
	_, err = f.invitations.IssueSuperAdminInvite(f.ctx, suspended, "new@godview.test")
	require.ErrorIs(t, err, ErrSuspended)
	require.ErrorIs(t, err, ErrForbidden)

	require.Empty(t, f.sender.messages())
	require.Empty(t, f.auditEntries(t, domain.ActionSuperAdminInvited))
}

func TestSuperAdminInviteNewAccountFlow(t *testing.T) {
	f := newFixture(t)

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "  New.Admin@GodView.test ")
	require.NoError(t, err)
	require.Equal(t, "new.admin@godview.test", issued.Invitation.Email)
	require.Equal(t, "https://admin.godview.test/admin-invite/"+issued.Token, issued.Link)
	require.Equal(t, f.clock.Now().Add(7*24*time.Hour), issued.Invitation.ExpiresAt)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "new.admin@godview.test", msgs[0].To)
	require.Contains(t, msgs[0].Text, issued.Link)

	audits := f.auditEntries(t, domain.ActionSuperAdminInvited)
	require.Len(t, audits, 1)
	require.Equal(t, f.admin.User.ID, audits[0].PerformedBy)
	require.Equal(t, domain.SuperAdminInvited{Email: "new.admin@godview.test"}, audits[0].Metadata)
	require.Equal(t, "203.0.113.7", audits[0].IPAddress)

	details, err := f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, "new.admin@godview.test", details.Email)
	require.Equal(t, "Root", details.InviterName)

	anon := domain.Anonymous("198.51.100.1", "browser")
	user, err := f.invitations.AcceptSuperAdminInviteNew(f.ctx, anon, issued.Token, NewAccountInput{
		Name:     "  Nina  ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, user.Role)
	require.Equal(t, "Nina", user.Name)
	require.True(t, user.EmailVerified)

	stored, err := f.store.Users().GetUserByEmail(f.ctx, "new.admin@godview.test")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)

	accepted, err := f.store.SuperAdminInvitations().GetSuperAdminInvitationByID(f.ctx, issued.Invitation.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, accepted.Status)
	require.Equal(t, user.ID, accepted.AcceptedUserID)

	created := f.auditEntries(t, domain.ActionUserCreated)
	require.Len(t, created, 1)
	require.Equal(t, f.admin.User.ID, created[0].PerformedBy)
	require.Equal(t, domain.UserCreated{Role: domain.RoleSuperAdmin, InvitedVia: "admin_invitation"}, created[0].Metadata)
	require.Equal(t, "198.51.100.1", created[0].IPAddress)

	// A second redemption fails on the status, not on the email.
	_, err = f.invitations.AcceptSuperAdminInviteNew(f.ctx, anon, issued.Token, NewAccountInput{
		Name:     "Other",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrAlreadyUsed)

	_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestSuperAdminInviteRejections(t *testing.T) {
	f := newFixture(t)

	t.Run("already super admin", func(t *testing.T) {
		_, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "ROOT@godview.test")
		require.ErrorIs(t, err, ErrAlreadySuperAdmin)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "not-an-email")
		require.ErrorIs(t, err, ErrValidationFailed)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Contains(t, verr.Fields, "email")
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.invitations.ValidateSuperAdminInvite(f.ctx, "nope")
		require.ErrorIs(t, err, ErrInvitationNotFound)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, "")
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		f.seedUser(t, "taken@godview.test", "Taken", domain.RoleQA, "")
		issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "taken@godview.test")
		require.NoError(t, err)

		_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
		require.ErrorIs(t, err, ErrEmailTaken)

		_, err = f.invitations.AcceptSuperAdminInviteNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
			Name:     "Taken",
			Password: "correct horse",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("weak password", func(t *testing.T) {
		issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "weak@godview.test")
		require.NoError(t, err)

		_, err = f.invitations.AcceptSuperAdminInviteNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
			Name:     "   ",
			Password: "short",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "name")
		require.Contains(t, verr.Fields, "password")

		// The invitation is still usable after a rejected attempt.
		_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
		require.NoError(t, err)
	})
}

func TestSuperAdminInviteExpiry(t *testing.T) {
	f := newFixture(t)

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "late@godview.test")
	require.NoError(t, err)

	// Exactly at the expiry instant the invitation is still usable.
	f.clock.Advance(domain.InvitationTTL)
	_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.ErrorIs(t, err, ErrExpired)

	_, err = f.invitations.AcceptSuperAdminInviteNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
		Name:     "Late",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrExpired)
}

func TestSuperAdminInviteExistingAccount(t *testing.T) {
	f := newFixture(t)
	qa := f.seedUser(t, "qa@acme.test", "Quinn", domain.RoleQA, "")
	other := f.seedUser(t, "other@acme.test", "Olive", domain.RoleQA, "")

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "QA@acme.test")
	require.NoError(t, err)

	_, err = f.invitations.AcceptSuperAdminInviteExisting(f.ctx, domain.Caller{}, issued.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.invitations.AcceptSuperAdminInviteExisting(f.ctx, f.callerFor(other), issued.Token)
	require.ErrorIs(t, err, ErrEmailMismatch)

	user, err := f.invitations.AcceptSuperAdminInviteExisting(f.ctx, f.callerFor(qa), issued.Token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, user.Role)

	updated := f.auditEntries(t, domain.ActionUserRoleUpdated)
	require.Len(t, updated, 1)
	require.Equal(t, f.admin.User.ID, updated[0].PerformedBy)
	require.Equal(t, domain.UserRoleUpdated{
		PreviousRole: domain.RoleQA,
		NewRole:      domain.RoleSuperAdmin,
		InvitedVia:   "admin_invitation",
	}, updated[0].Metadata)

	_, err = f.invitations.AcceptSuperAdminInviteExisting(f.ctx, f.callerFor(qa), issued.Token)
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestRevokeSuperAdminInvite(t *testing.T) {
	f := newFixture(t)

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "gone@godview.test")
	require.NoError(t, err)

	pending, err := f.invitations.ListPendingSuperAdminInvites(f.ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "Root", pending[0].InviterName)

	require.NoError(t, f.invitations.RevokeSuperAdminInvite(f.ctx, f.admin, issued.Invitation.ID))

	_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.ErrorIs(t, err, ErrRevoked)

	err = f.invitations.RevokeSuperAdminInvite(f.ctx, f.admin, issued.Invitation.ID)
	require.ErrorIs(t, err, ErrRevoked)

	err = f.invitations.RevokeSuperAdminInvite(f.ctx, f.admin, idx.New().String())
	require.ErrorIs(t, err, ErrInvitationNotFound)

	pending, err = f.invitations.ListPendingSuperAdminInvites(f.ctx, f.admin)
	require.NoError(t, err)
	require.Empty(t, pending)

	revoked := f.auditEntries(t, domain.ActionInvitationRevoked)
	require.Len(t, revoked, 1)
	require.Equal(t, domain.TargetInvitation, revoked[0].Target.Type)
}

func TestRevokeAcceptedInvitationFails(t *testing.T) {
	f := newFixture(t)

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "done@godview.test")
	require.NoError(t, err)
	_, err = f.invitations.AcceptSuperAdminInviteNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
		Name:     "Done",
		Password: "correct horse",
	})
	require.NoError(t, err)

	err = f.invitations.RevokeSuperAdminInvite(f.ctx, f.admin, issued.Invitation.ID)
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestOrgAdminInviteFlow(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")

	issued, err := f.invitations.IssueOrgAdminInvite(f.ctx, f.admin, org.ID, OrgAdminInviteInput{
		Email: "Boss@Acme.test",
		Name:  "Bo",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, issued.Invitation.Role)
	require.True(t, strings.HasPrefix(issued.Link, "https://admin.godview.test/invite/"))

	audits := f.auditEntries(t, domain.ActionOrgAdminInvited)
	require.Len(t, audits, 1)
	require.Equal(t, domain.OrgAdminInvited{Email: "boss@acme.test", Name: "Bo", OrganizationID: org.ID}, audits[0].Metadata)
	require.Equal(t, domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name}, audits[0].Target)

	details, err := f.invitations.ValidateInvitation(f.ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, org.Name, details.OrganizationName)
	require.Equal(t, domain.RoleAdmin, details.Role)
	require.False(t, details.AccountExists)

	user, err := f.invitations.AcceptInvitationNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
		Name:     "Bo",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, user.Role)
	require.Equal(t, org.ID, user.OrganizationID)

	members, err := f.store.Members().ListMembers(f.ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, user.ID, members[0].UserID)
	require.Equal(t, domain.RoleAdmin, members[0].Role)

	_, err = f.invitations.IssueOrgAdminInvite(f.ctx, f.admin, idx.New().String(), OrgAdminInviteInput{Email: "x@acme.test"})
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestMemberInviteValidation(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")
	otherOrg := f.seedOrg(t, "globex")

	supplier := domain.Supplier{
		ID:             idx.New().String(),
		OrganizationID: otherOrg.ID,
		Name:           "Bolts Ltd",
		Status:         domain.SupplierStatusInvited,
	}
	require.NoError(t, f.store.Suppliers().CreateSupplier(f.ctx, supplier))

	tests := []struct {
		name  string
		in    MemberInviteInput
		field string
	}{
		{"super admin role", MemberInviteInput{Email: "a@acme.test", Role: domain.RoleSuperAdmin}, "role"},
		{"unknown role", MemberInviteInput{Email: "a@acme.test", Role: "JANITOR"}, "role"},
		{"missing role", MemberInviteInput{Email: "a@acme.test"}, "role"},
		{"supplier on wrong role", MemberInviteInput{Email: "a@acme.test", Role: domain.RoleQA, SupplierID: supplier.ID}, "supplierId"},
		{"supplier from another org", MemberInviteInput{Email: "a@acme.test", Role: domain.RoleSupplier, SupplierID: supplier.ID}, "supplierId"},
		{"unknown supplier", MemberInviteInput{Email: "a@acme.test", Role: domain.RoleSupplier, SupplierID: idx.New().String()}, "supplierId"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.invitations.IssueMemberInvite(f.ctx, f.admin, org.ID, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestSupplierInviteLinksSupplier(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")

	supplier := domain.Supplier{
		ID:             idx.New().String(),
		OrganizationID: org.ID,
		Name:           "Bolts Ltd",
		ContactEmail:   "sales@bolts.test",
		Status:         domain.SupplierStatusInvited,
	}
	require.NoError(t, f.store.Suppliers().CreateSupplier(f.ctx, supplier))

	issued, err := f.invitations.IssueMemberInvite(f.ctx, f.admin, org.ID, MemberInviteInput{
		Email:      "sales@bolts.test",
		Role:       domain.RoleSupplier,
		SupplierID: supplier.ID,
	})
	require.NoError(t, err)

	invited := f.auditEntries(t, domain.ActionMemberInvited)
	require.Len(t, invited, 1)
	require.Equal(t, domain.MemberInvited{
		Email:          "sales@bolts.test",
		OrganizationID: org.ID,
		Role:           domain.RoleSupplier,
		SupplierID:     supplier.ID,
	}, invited[0].Metadata)

	user, err := f.invitations.AcceptInvitationNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
		Name:     "Sal",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, supplier.ID, user.SupplierID)

	linked, err := f.store.Suppliers().GetSupplierByID(f.ctx, supplier.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, linked.UserID)
	require.Equal(t, domain.SupplierStatusOnboarding, linked.Status)

	created := f.auditEntries(t, domain.ActionUserCreated)
	require.Len(t, created, 1)
	require.Equal(t, domain.UserCreated{Role: domain.RoleSupplier, InvitedVia: "invitation"}, created[0].Metadata)
}

func TestAcceptInvitationExistingAccount(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")
	qa := f.seedUser(t, "qa@acme.test", "Quinn", domain.RoleQA, "")

	issued, err := f.invitations.IssueMemberInvite(f.ctx, f.admin, org.ID, MemberInviteInput{
		Email: "qa@acme.test",
		Role:  domain.RoleSiteReceiver,
	})
	require.NoError(t, err)

	details, err := f.invitations.ValidateInvitation(f.ctx, issued.Token)
	require.NoError(t, err)
	require.True(t, details.AccountExists)

	_, err = f.invitations.AcceptInvitationNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
		Name:     "Quinn",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	user, err := f.invitations.AcceptInvitation(f.ctx, f.callerFor(qa), issued.Token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSiteReceiver, user.Role)
	require.Equal(t, org.ID, user.OrganizationID)

	added := f.auditEntries(t, domain.ActionMemberAdded)
	require.Len(t, added, 1)
	require.Equal(t, domain.MemberAdded{OrganizationID: org.ID, Role: domain.RoleSiteReceiver}, added[0].Metadata)

	// A second invitation for an existing member rolls back entirely.
	again, err := f.invitations.IssueMemberInvite(f.ctx, f.admin, org.ID, MemberInviteInput{
		Email: "qa@acme.test",
		Role:  domain.RoleQA,
	})
	require.NoError(t, err)

	_, err = f.invitations.AcceptInvitation(f.ctx, f.callerFor(user), again.Token)
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.invitations.ValidateInvitation(f.ctx, again.Token)
	require.NoError(t, err)

	stored, err := f.store.Users().GetUserByID(f.ctx, qa.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSiteReceiver, stored.Role)
}

func TestAcceptInvitationEmailMismatch(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")
	stranger := f.seedUser(t, "stranger@elsewhere.test", "Stan", domain.RoleQA, "")

	issued, err := f.invitations.IssueMemberInvite(f.ctx, f.admin, org.ID, MemberInviteInput{
		Email: "qa@acme.test",
		Role:  domain.RoleQA,
	})
	require.NoError(t, err)

	_, err = f.invitations.AcceptInvitation(f.ctx, f.callerFor(stranger), issued.Token)
	require.ErrorIs(t, err, ErrEmailMismatch)
}

func TestRevokeInvitation(t *testing.T) {
	f := newFixture(t)
	org := f.seedOrg(t, "acme")

	issued, err := f.invitations.IssueMemberInvite(f.ctx, f.admin, org.ID, MemberInviteInput{
		Email: "pm@acme.test",
		Role:  domain.RolePM,
	})
	require.NoError(t, err)

	listed, err := f.invitations.ListOrganizationInvitations(f.ctx, f.admin, org.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, f.invitations.RevokeInvitation(f.ctx, f.admin, issued.Invitation.ID))

	_, err = f.invitations.AcceptInvitationNew(f.ctx, domain.Caller{}, issued.Token, NewAccountInput{
		Name:     "Pat",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrRevoked)

	listed, err = f.invitations.ListOrganizationInvitations(f.ctx, f.admin, org.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, domain.InvitationRevoked, listed[0].Status)
}

func TestInviteSurvivesEmailFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("provider down")

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "offline@godview.test")
	require.NoError(t, err)

	_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.NoError(t, err)

	failed, err := f.mailer.ListDeliveries(f.ctx, f.admin, domain.DeliveryFailed, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, "offline@godview.test", failed[0].Recipient)
	require.Contains(t, failed[0].Error, "provider down")
}

func TestInviteSurvivesAuditFailure(t *testing.T) {
	f := newFixture(t)

	var reported []domain.AuditLog
	f.invitations.Audit = &AuditRecorder{
		Store: brokenAuditStore{Store: f.store},
		Reporter: FailureReporterFunc(func(_ context.Context, entry domain.AuditLog, err error) {
			require.ErrorIs(t, err, errAuditUnavailable)
			reported = append(reported, entry)
		}),
		Now: f.clock.Now,
	}

	issued, err := f.invitations.IssueSuperAdminInvite(f.ctx, f.admin, "quiet@godview.test")
	require.NoError(t, err)

	_, err = f.invitations.ValidateSuperAdminInvite(f.ctx, issued.Token)
	require.NoError(t, err)

	require.Len(t, reported, 1)
	require.Equal(t, domain.ActionSuperAdminInvited, reported[0].Action)
	require.Empty(t, f.auditEntries(t, domain.ActionSuperAdminInvited))
}
