package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

const (
	invitedViaAdminInvitation = "admin_invitation"
	invitedViaInvitation      = "invitation"

	defaultInviterName = "Admin"
)

type InvitationService struct {
	Store         store.Store
	Audit         *AuditRecorder
	Mailer        *Mailer
	InviteBaseURL string
	Now           func() time.Time
}

// IssuedSuperAdminInvite carries the raw token. It is only ever returned
// here; the store keeps the fingerprint.
type IssuedSuperAdminInvite struct {
	Invitation domain.SuperAdminInvitation
	Token      string
	Link       string
}

type IssuedInvitation struct {
	Invitation domain.Invitation
	Token      string
	Link       string
}

type SuperAdminInviteDetails struct {
	Email       string
	InviterName string
	ExpiresAt   time.Time
}

type InvitationDetails struct {
	Email            string
	OrganizationID   string
	OrganizationName string
	Role             domain.Role
	InviterName      string
	ExpiresAt        time.Time

	// AccountExists tells the client whether to offer sign-in or sign-up.
	AccountExists bool
}

type OrgAdminInviteInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"max=255"`
}

type MemberInviteInput struct {
	Email      string      `json:"email" validate:"required,email,max=254"`
	Role       domain.Role `json:"role" validate:"required"`
	SupplierID string      `json:"supplierId"`
}

type NewAccountInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// newInviteToken returns a fresh 256-bit token and its fingerprint.
func newInviteToken() (string, string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", "", err
	}
	return token, cryptox.FingerprintToken(token), nil
}

func (s *InvitationService) link(path, token string) string {
	return strings.TrimRight(s.InviteBaseURL, "/") + path + url.PathEscape(token)
}

// invitationStateError maps a failed redemption check onto the public error.
func invitationStateError(state domain.InvitationState) error {
	switch state {
	case domain.InvitationUsed:
		return ErrAlreadyUsed
	case domain.InvitationWithdrawn:
		return ErrRevoked
	case domain.InvitationLapsed:
		return ErrExpired
	}
	return nil
}

// revokeConflict explains why a PENDING-only transition matched nothing.
func revokeConflict(status domain.InvitationStatus) error {
	if status == domain.InvitationRevoked {
		return ErrRevoked
	}
	return ErrAlreadyUsed
}

func (s *InvitationService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// IssueSuperAdminInvite invites email to become a SUPER_ADMIN.
func (s *InvitationService) IssueSuperAdminInvite(
	ctx context.Context,
	caller domain.Caller,
	email string,
) (IssuedSuperAdminInvite, error) {
	log := slogx.FromContext(ctx)

	// 1. Authorize and validate
	if err := RequireSuperAdmin(caller); err != nil {
		return IssuedSuperAdminInvite{}, err
	}
	in := emailInput{Email: domain.NormalizeEmail(email)}
	if err := validateInput(in); err != nil {
		return IssuedSuperAdminInvite{}, err
	}

	// 2. Refuse to invite someone who already holds the role
	existing, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil && existing.IsSuperAdmin():
		log.Warn("super admin invite for existing super admin", slog.String("email", in.Email))
		return IssuedSuperAdminInvite{}, ErrAlreadySuperAdmin
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.Error("failed to look up invitee", slog.Any("error", err))
		return IssuedSuperAdminInvite{}, err
	}

	// 3. Mint and persist
	token, hash, err := newInviteToken()
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return IssuedSuperAdminInvite{}, err
	}

	now := clock(s.Now)
	inv := domain.SuperAdminInvitation{
		ID:        idx.New().String(),
		TokenHash: hash,
		Email:     in.Email,
		InvitedBy: caller.User.ID,
		Status:    domain.InvitationPending,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.SuperAdminInvitations().CreateSuperAdminInvitation(ctx, inv); err != nil {
		log.Error("failed to create super admin invitation", slog.Any("error", err))
		return IssuedSuperAdminInvite{}, err
	}

	// 4. Follow-ups after the write
	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetUser, ID: inv.ID, Name: inv.Email},
		Metadata: domain.SuperAdminInvited{Email: inv.Email},
	})

	link := s.link("/admin-invite/", token)
	s.Mailer.SendSuperAdminInvite(ctx, SuperAdminInviteEmail{
		To:          inv.Email,
		InviterName: caller.User.Name,
		Link:        link,
		ExpiresAt:   inv.ExpiresAt,
	})

	log.Info("super admin invitation issued",
		slog.String("invitation_id", inv.ID),
		slog.String("invited_by", caller.User.ID),
	)
	return IssuedSuperAdminInvite{Invitation: inv, Token: token, Link: link}, nil
}

// IssueOrgAdminInvite invites email to administer an organization.
func (s *InvitationService) IssueOrgAdminInvite(
	ctx context.Context,
	caller domain.Caller,
	orgID string,
	in OrgAdminInviteInput,
) (IssuedInvitation, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return IssuedInvitation{}, err
	}
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return IssuedInvitation{}, err
	}

	org, err := s.organization(ctx, orgID)
	if err != nil {
		return IssuedInvitation{}, err
	}

	return s.issueOrganizationInvite(ctx, caller, org, in.Email, in.Name, domain.RoleAdmin, "",
		domain.OrgAdminInvited{Email: in.Email, Name: in.Name, OrganizationID: org.ID})
}

// IssueMemberInvite invites email into an organization with an
// organization-scoped role. Supplier invitations may name the supplier the
// new user will represent.
func (s *InvitationService) IssueMemberInvite(
	ctx context.Context,
	caller domain.Caller,
	orgID string,
	in MemberInviteInput,
) (IssuedInvitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Authorize and validate
	if err := RequireSuperAdmin(caller); err != nil {
		return IssuedInvitation{}, err
	}
	in.Email = domain.NormalizeEmail(in.Email)
	in.SupplierID = strings.TrimSpace(in.SupplierID)
	if err := validateInput(in); err != nil {
		return IssuedInvitation{}, err
	}
	if !in.Role.OrganizationScoped() {
		return IssuedInvitation{}, invalidField("role", "must be an organization role")
	}
	if in.SupplierID != "" && in.Role != domain.RoleSupplier {
		return IssuedInvitation{}, invalidField("supplierId", "only allowed for the SUPPLIER role")
	}

	// 2. Resolve the organization and supplier
	org, err := s.organization(ctx, orgID)
	if err != nil {
		return IssuedInvitation{}, err
	}
	if in.SupplierID != "" {
		supplier, err := s.Store.Suppliers().GetSupplierByID(ctx, in.SupplierID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to load supplier", slog.Any("error", err))
			return IssuedInvitation{}, err
		}
		if err != nil || supplier.OrganizationID != org.ID {
			return IssuedInvitation{}, invalidField("supplierId", "must belong to the organization")
		}
	}

	// 3. Issue
	return s.issueOrganizationInvite(ctx, caller, org, in.Email, "", in.Role, in.SupplierID,
		domain.MemberInvited{Email: in.Email, OrganizationID: org.ID, Role: in.Role, SupplierID: in.SupplierID})
}

func (s *InvitationService) organization(ctx context.Context, orgID string) (domain.Organization, error) {
	if !idx.Valid(orgID) {
		return domain.Organization{}, ErrOrganizationNotFound
	}
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, ErrOrganizationNotFound
		}
		slogx.FromContext(ctx).Error("failed to load organization", slog.Any("error", err))
		return domain.Organization{}, err
	}
	return org, nil
}

// issueOrganizationInvite persists a general invitation and runs the audit
// and email follow-ups. Callers have already authorized and validated.
func (s *InvitationService) issueOrganizationInvite(
	ctx context.Context,
	caller domain.Caller,
	org domain.Organization,
	email, name string,
	role domain.Role,
	supplierID string,
	md domain.AuditMetadata,
) (IssuedInvitation, error) {
	log := slogx.FromContext(ctx)

	token, hash, err := newInviteToken()
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return IssuedInvitation{}, err
	}

	now := clock(s.Now)
	inv := domain.Invitation{
		ID:             idx.New().String(),
		TokenHash:      hash,
		Email:          email,
		OrganizationID: org.ID,
		Role:           role,
		SupplierID:     supplierID,
		Status:         domain.InvitationPending,
		InvitedBy:      caller.User.ID,
		ExpiresAt:      now.Add(domain.InvitationTTL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return IssuedInvitation{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name},
		Metadata: md,
	})

	link := s.link("/invite/", token)
	s.Mailer.SendOrganizationInvite(ctx, OrganizationInviteEmail{
		To:               email,
		Name:             name,
		OrganizationName: org.Name,
		Role:             role,
		InviterName:      caller.User.Name,
		Link:             link,
		ExpiresAt:        inv.ExpiresAt,
	})

	log.Info("invitation issued",
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", org.ID),
		slog.String("role", string(role)),
	)
	return IssuedInvitation{Invitation: inv, Token: token, Link: link}, nil
}

// lookupSuperAdminInvite finds a redeemable super admin invitation.
func (s *InvitationService) lookupSuperAdminInvite(
	ctx context.Context,
	token string,
) (domain.SuperAdminInvitationView, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.SuperAdminInvitationView{}, ErrInvitationNotFound
	}
	inv, err := s.Store.SuperAdminInvitations().GetSuperAdminInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("super admin invitation lookup with unknown token")
			return domain.SuperAdminInvitationView{}, ErrInvitationNotFound
		}
		log.Error("failed to load super admin invitation", slog.Any("error", err))
		return domain.SuperAdminInvitationView{}, err
	}

	if err := invitationStateError(inv.State(clock(s.Now))); err != nil {
		log.Warn("super admin invitation not redeemable",
			slog.String("invitation_id", inv.ID),
			slog.String("reason", err.Error()),
		)
		return domain.SuperAdminInvitationView{}, err
	}
	return inv, nil
}

// lookupInvitation finds a redeemable general invitation.
func (s *InvitationService) lookupInvitation(ctx context.Context, token string) (domain.InvitationView, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.InvitationView{}, ErrInvitationNotFound
	}
	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invitation lookup with unknown token")
			return domain.InvitationView{}, ErrInvitationNotFound
		}
		log.Error("failed to load invitation", slog.Any("error", err))
		return domain.InvitationView{}, err
	}

	if err := invitationStateError(inv.State(clock(s.Now))); err != nil {
		log.Warn("invitation not redeemable",
			slog.String("invitation_id", inv.ID),
			slog.String("reason", err.Error()),
		)
		return domain.InvitationView{}, err
	}
	return inv, nil
}

// ValidateSuperAdminInvite is the read-only check shown before the sign-up
// form. It fails with ErrEmailTaken when the invitee already has an account
// so the client can route them to the sign-in and finalize path instead.
func (s *InvitationService) ValidateSuperAdminInvite(ctx context.Context, token string) (SuperAdminInviteDetails, error) {
	inv, err := s.lookupSuperAdminInvite(ctx, token)
	if err != nil {
		return SuperAdminInviteDetails{}, err
	}

	taken, err := s.emailTaken(ctx, inv.Email)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to check invitee email", slog.Any("error", err))
		return SuperAdminInviteDetails{}, err
	}
	if taken {
		return SuperAdminInviteDetails{}, ErrEmailTaken
	}

	inviter := inv.InviterName
	if inviter == "" {
		inviter = defaultInviterName
	}
	return SuperAdminInviteDetails{Email: inv.Email, InviterName: inviter, ExpiresAt: inv.ExpiresAt}, nil
}

// ValidateInvitation is the read-only check for organization invitations.
func (s *InvitationService) ValidateInvitation(ctx context.Context, token string) (InvitationDetails, error) {
	inv, err := s.lookupInvitation(ctx, token)
	if err != nil {
		return InvitationDetails{}, err
	}

	taken, err := s.emailTaken(ctx, inv.Email)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to check invitee email", slog.Any("error", err))
		return InvitationDetails{}, err
	}

	inviter := inv.InviterName
	if inviter == "" {
		inviter = defaultInviterName
	}
	return InvitationDetails{
		Email:            inv.Email,
		OrganizationID:   inv.OrganizationID,
		OrganizationName: inv.OrganizationName,
		Role:             inv.Role,
		InviterName:      inviter,
		ExpiresAt:        inv.ExpiresAt,
		AccountExists:    taken,
	}, nil
}

func prepareNewAccount(in NewAccountInput) (NewAccountInput, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return in, "", err
	}
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return in, "", err
	}
	return in, hash, nil
}

// AcceptSuperAdminInviteNew creates a SUPER_ADMIN account from an invitation.
// caller only carries request provenance; there is no session yet.
func (s *InvitationService) AcceptSuperAdminInviteNew(
	ctx context.Context,
	caller domain.Caller,
	token string,
	in NewAccountInput,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Re-validate the invitation, including the email check
	inv, err := s.lookupSuperAdminInvite(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	taken, err := s.emailTaken(ctx, inv.Email)
	if err != nil {
		log.Error("failed to check invitee email", slog.Any("error", err))
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, ErrEmailTaken
	}

	// 2. Validate the account details
	in, passwordHash, err := prepareNewAccount(in)
	if err != nil {
		return domain.User{}, err
	}

	// 3. Create the user and consume the invitation together
	now := clock(s.Now)
	user := domain.User{
		ID:            idx.New().String(),
		Email:         inv.Email,
		Name:          in.Name,
		PasswordHash:  passwordHash,
		Role:          domain.RoleSuperAdmin,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// The user row must exist before the invitation can reference it.
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.SuperAdminInvitations().MarkSuperAdminInvitationAccepted(ctx, inv.ID, user.ID, now)
	})
	switch {
	case errors.Is(err, store.ErrStateChanged):
		return domain.User{}, ErrAlreadyUsed
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.User{}, ErrEmailTaken
	case err != nil:
		log.Error("failed to accept super admin invitation", slog.Any("error", err))
		return domain.User{}, err
	}

	// 4. Audit on behalf of the inviter
	s.Audit.Record(ctx, caller, AuditEntry{
		PerformedBy: inv.InvitedBy,
		Target:      domain.AuditTarget{Type: domain.TargetUser, ID: user.ID, Name: user.Email},
		Metadata:    domain.UserCreated{Role: user.Role, InvitedVia: invitedViaAdminInvitation},
	})

	log.Info("super admin invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", user.ID),
	)
	return user, nil
}

// AcceptSuperAdminInviteExisting elevates the signed-in user. The session's
// email must match the invitation.
func (s *InvitationService) AcceptSuperAdminInviteExisting(
	ctx context.Context,
	caller domain.Caller,
	token string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Authenticate and check the invitation
	if err := RequireSession(caller); err != nil {
		return domain.User{}, err
	}
	inv, err := s.lookupSuperAdminInvite(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if !domain.SameEmail(caller.User.Email, inv.Email) {
		log.Warn("super admin invitation redeemed by a different account",
			slog.String("invitation_id", inv.ID),
			slog.String("user_id", caller.User.ID),
		)
		return domain.User{}, ErrEmailMismatch
	}

	// 2. Elevate and consume together
	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.SuperAdminInvitations().MarkSuperAdminInvitationAccepted(ctx, inv.ID, caller.User.ID, now); err != nil {
			return err
		}
		return tx.Users().AssignRole(ctx, caller.User.ID, domain.RoleSuperAdmin, "", now)
	})
	switch {
	case errors.Is(err, store.ErrStateChanged):
		return domain.User{}, ErrAlreadyUsed
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, ErrUserNotFound
	case err != nil:
		log.Error("failed to accept super admin invitation", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Audit on behalf of the inviter
	s.Audit.Record(ctx, caller, AuditEntry{
		PerformedBy: inv.InvitedBy,
		Target:      domain.AuditTarget{Type: domain.TargetUser, ID: caller.User.ID, Name: caller.User.Email},
		Metadata: domain.UserRoleUpdated{
			PreviousRole: caller.User.Role,
			NewRole:      domain.RoleSuperAdmin,
			InvitedVia:   invitedViaAdminInvitation,
		},
	})

	return s.reloadUser(ctx, caller.User.ID)
}

// AcceptInvitation joins the signed-in user to the invitation's organization.
func (s *InvitationService) AcceptInvitation(
	ctx context.Context,
	caller domain.Caller,
	token string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Authenticate and check the invitation
	if err := RequireSession(caller); err != nil {
		return domain.User{}, err
	}
	inv, err := s.lookupInvitation(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	if !domain.SameEmail(caller.User.Email, inv.Email) {
		log.Warn("invitation redeemed by a different account",
			slog.String("invitation_id", inv.ID),
			slog.String("user_id", caller.User.ID),
		)
		return domain.User{}, ErrEmailMismatch
	}

	// 2. Apply every effect in one transaction
	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, caller.User.ID, now); err != nil {
			return err
		}
		if err := tx.Users().AssignRole(ctx, caller.User.ID, inv.Role, inv.OrganizationID, now); err != nil {
			return err
		}
		if err := s.joinOrganization(ctx, tx, inv.Invitation, caller.User.ID, now); err != nil {
			return err
		}
		return nil
	})
	if err := acceptError(ctx, err); err != nil {
		return domain.User{}, err
	}

	// 3. Audit on behalf of the inviter
	s.Audit.Record(ctx, caller, AuditEntry{
		PerformedBy: inv.InvitedBy,
		Target:      domain.AuditTarget{Type: domain.TargetUser, ID: caller.User.ID, Name: caller.User.Email},
		Metadata: domain.MemberAdded{
			OrganizationID: inv.OrganizationID,
			Role:           inv.Role,
			SupplierID:     inv.SupplierID,
		},
	})

	log.Info("invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", caller.User.ID),
	)
	return s.reloadUser(ctx, caller.User.ID)
}

// AcceptInvitationNew creates an account from an organization invitation.
func (s *InvitationService) AcceptInvitationNew(
	ctx context.Context,
	caller domain.Caller,
	token string,
	in NewAccountInput,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Re-validate the invitation, including the email check
	inv, err := s.lookupInvitation(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	taken, err := s.emailTaken(ctx, inv.Email)
	if err != nil {
		log.Error("failed to check invitee email", slog.Any("error", err))
		return domain.User{}, err
	}
	if taken {
		return domain.User{}, ErrEmailTaken
	}

	// 2. Validate the account details
	in, passwordHash, err := prepareNewAccount(in)
	if err != nil {
		return domain.User{}, err
	}

	// 3. Create the user, join the organization and consume the invitation
	now := clock(s.Now)
	user := domain.User{
		ID:             idx.New().String(),
		Email:          inv.Email,
		Name:           in.Name,
		PasswordHash:   passwordHash,
		Role:           inv.Role,
		OrganizationID: inv.OrganizationID,
		EmailVerified:  true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, user.ID, now); err != nil {
			return err
		}
		return s.joinOrganization(ctx, tx, inv.Invitation, user.ID, now)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Only the email is unique on a fresh user.
		return domain.User{}, ErrEmailTaken
	}
	if err := acceptError(ctx, err); err != nil {
		return domain.User{}, err
	}

	// 4. Audit on behalf of the inviter
	s.Audit.Record(ctx, caller, AuditEntry{
		PerformedBy: inv.InvitedBy,
		Target:      domain.AuditTarget{Type: domain.TargetUser, ID: user.ID, Name: user.Email},
		Metadata:    domain.UserCreated{Role: user.Role, InvitedVia: invitedViaInvitation},
	})

	log.Info("invitation accepted with new account",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", user.ID),
	)
	return s.reloadUser(ctx, user.ID)
}

// joinOrganization adds the membership and, for supplier invitations, links
// the supplier to the user and moves it to ONBOARDING.
func (s *InvitationService) joinOrganization(
	ctx context.Context,
	tx store.Tx,
	inv domain.Invitation,
	userID string,
	now time.Time,
) error {
	err := tx.Members().AddMember(ctx, domain.Member{
		ID:             idx.New().String(),
		UserID:         userID,
		OrganizationID: inv.OrganizationID,
		Role:           inv.Role,
		CreatedAt:      now,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrAlreadyMember
	}
	if err != nil {
		return err
	}

	if inv.SupplierID == "" || inv.Role != domain.RoleSupplier {
		return nil
	}
	if err := tx.Suppliers().LinkSupplierUser(ctx, inv.SupplierID, userID, domain.SupplierStatusOnboarding); err != nil {
		return err
	}
	return tx.Users().SetSupplier(ctx, userID, inv.SupplierID, now)
}

func acceptError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrStateChanged):
		return ErrAlreadyUsed
	case errors.Is(err, ErrAlreadyMember):
		return ErrAlreadyMember
	}
	slogx.FromContext(ctx).Error("failed to accept invitation", slog.Any("error", err))
	return err
}

func (s *InvitationService) reloadUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// RevokeSuperAdminInvite withdraws a PENDING super admin invitation.
func (s *InvitationService) RevokeSuperAdminInvite(ctx context.Context, caller domain.Caller, id string) error {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return err
	}
	if !idx.Valid(id) {
		return ErrInvitationNotFound
	}
	inv, err := s.Store.SuperAdminInvitations().GetSuperAdminInvitationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		log.Error("failed to load super admin invitation", slog.Any("error", err))
		return err
	}

	err = s.Store.SuperAdminInvitations().RevokeSuperAdminInvitation(ctx, id, clock(s.Now))
	if errors.Is(err, store.ErrStateChanged) {
		return revokeConflict(inv.Status)
	}
	if err != nil {
		log.Error("failed to revoke super admin invitation", slog.Any("error", err))
		return err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetInvitation, ID: inv.ID, Name: inv.Email},
		Metadata: domain.InviteRevoked{Email: inv.Email, Kind: "super_admin"},
	})
	return nil
}

// RevokeInvitation withdraws a PENDING organization invitation.
func (s *InvitationService) RevokeInvitation(ctx context.Context, caller domain.Caller, id string) error {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return err
	}
	if !idx.Valid(id) {
		return ErrInvitationNotFound
	}
	inv, err := s.Store.Invitations().GetInvitationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		log.Error("failed to load invitation", slog.Any("error", err))
		return err
	}

	err = s.Store.Invitations().RevokeInvitation(ctx, id, clock(s.Now))
	if errors.Is(err, store.ErrStateChanged) {
		return revokeConflict(inv.Status)
	}
	if err != nil {
		log.Error("failed to revoke invitation", slog.Any("error", err))
		return err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetInvitation, ID: inv.ID, Name: inv.Email},
		Metadata: domain.InviteRevoked{Email: inv.Email, Kind: "organization"},
	})
	return nil
}

func (s *InvitationService) ListPendingSuperAdminInvites(
	ctx context.Context,
	caller domain.Caller,
) ([]domain.SuperAdminInvitationView, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	return s.Store.SuperAdminInvitations().ListPendingSuperAdminInvitations(ctx)
}

func (s *InvitationService) ListOrganizationInvitations(
	ctx context.Context,
	caller domain.Caller,
	orgID string,
) ([]domain.Invitation, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if _, err := s.organization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.Store.Invitations().ListOrganizationInvitations(ctx, orgID)
}
