package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

type OrganizationService struct {
	Store store.Store
	Audit *AuditRecorder

	// Invitations issues the PM invitation when Create names an email with
	// no account behind it.
	Invitations *InvitationService
	Now         func() time.Time
}

type CreateOrganizationInput struct {
	Name         string      `json:"name" validate:"required,max=255"`
	Slug         string      `json:"slug" validate:"required,max=63,slug"`
	Plan         domain.Plan `json:"plan"`
	Industry     string      `json:"industry" validate:"max=255"`
	Size         string      `json:"size" validate:"max=64"`
	ContactEmail string      `json:"contactEmail" validate:"omitempty,email,max=254"`
	Phone        string      `json:"phone" validate:"max=64"`
	Website      string      `json:"website" validate:"max=255"`
	PMEmail      string      `json:"pmEmail" validate:"omitempty,email,max=254"`
}

// CreatedOrganization is the result of Create. PMInvitation is set when the
// project manager had no account and was invited instead.
type CreatedOrganization struct {
	Organization domain.Organization
	PMInvitation *IssuedInvitation
}

// OrganizationPatch holds optional profile edits. Nil fields are left alone.
type OrganizationPatch struct {
	Name         *string `json:"name"`
	Industry     *string `json:"industry"`
	Size         *string `json:"size"`
	ContactEmail *string `json:"contactEmail"`
	Phone        *string `json:"phone"`
	Website      *string `json:"website"`
}

// organizationProfile is the patched profile as validated before writing.
type organizationProfile struct {
	Name         string `json:"name" validate:"required,max=255"`
	Industry     string `json:"industry" validate:"max=255"`
	Size         string `json:"size" validate:"max=64"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email,max=254"`
	Phone        string `json:"phone" validate:"max=64"`
	Website      string `json:"website" validate:"max=255"`
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// Create registers an organization in TRIAL and optionally attaches or
// invites its project manager.
func (s *OrganizationService) Create(
	ctx context.Context,
	caller domain.Caller,
	in CreateOrganizationInput,
) (CreatedOrganization, error) {
	log := slogx.FromContext(ctx)

	// 1. Authorize and validate
	if err := RequireSuperAdmin(caller); err != nil {
		return CreatedOrganization{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.ContactEmail = domain.NormalizeEmail(in.ContactEmail)
	in.PMEmail = domain.NormalizeEmail(in.PMEmail)
	if in.Plan == "" {
		in.Plan = domain.PlanFree
	}
	if err := validateInput(in); err != nil {
		return CreatedOrganization{}, err
	}
	if !in.Plan.Valid() {
		return CreatedOrganization{}, invalidField("plan", "must be one of FREE STARTER PROFESSIONAL ENTERPRISE")
	}

	now := clock(s.Now)
	org := domain.Organization{
		ID:             idx.New().String(),
		Name:           in.Name,
		Slug:           in.Slug,
		Plan:           in.Plan,
		Status:         domain.OrgStatusTrial,
		Industry:       strings.TrimSpace(in.Industry),
		Size:           strings.TrimSpace(in.Size),
		ContactEmail:   in.ContactEmail,
		Phone:          strings.TrimSpace(in.Phone),
		Website:        strings.TrimSpace(in.Website),
		CreatedBy:      caller.User.ID,
		LastActivityAt: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// 2. Insert and attach an existing PM in one transaction
	pmAttached := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Organizations().GetOrganizationBySlug(ctx, org.Slug); err == nil {
			return ErrSlugTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}

		if in.PMEmail == "" {
			return nil
		}
		pm, err := tx.Users().GetUserByEmail(ctx, in.PMEmail)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Members().AddMember(ctx, domain.Member{
			ID:             idx.New().String(),
			UserID:         pm.ID,
			OrganizationID: org.ID,
			Role:           domain.RolePM,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		if pm.OrganizationID == "" && !pm.IsSuperAdmin() {
			if err := tx.Users().AssignRole(ctx, pm.ID, domain.RolePM, org.ID, now); err != nil {
				return err
			}
		}
		pmAttached = true
		return nil
	})
	if errors.Is(err, ErrSlugTaken) {
		log.Warn("organization slug taken", slog.String("slug", org.Slug))
		return CreatedOrganization{}, ErrSlugTaken
	}
	if err != nil {
		log.Error("failed to create organization", slog.Any("error", err))
		return CreatedOrganization{}, err
	}

	// 3. Audit
	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name},
		Metadata: domain.OrgCreated{Plan: org.Plan, PMEmail: in.PMEmail},
	})

	// 4. Invite a PM without an account. The organization stands even if
	// this fails.
	out := CreatedOrganization{Organization: org}
	if in.PMEmail != "" && !pmAttached && s.Invitations != nil {
		issued, err := s.Invitations.issueOrganizationInvite(ctx, caller, org, in.PMEmail, "", domain.RolePM, "",
			domain.MemberInvited{Email: in.PMEmail, OrganizationID: org.ID, Role: domain.RolePM})
		if err != nil {
			log.Error("failed to invite project manager",
				slog.String("organization_id", org.ID),
				slog.Any("error", err),
			)
		} else {
			out.PMInvitation = &issued
		}
	}

	log.Info("organization created",
		slog.String("organization_id", org.ID),
		slog.String("slug", org.Slug),
	)
	return out, nil
}

// mutate loads, edits and writes an organization inside one transaction.
// fn returning an error aborts the write.
func (s *OrganizationService) mutate(
	ctx context.Context,
	id string,
	fn func(org *domain.Organization, now time.Time) error,
) (before, after domain.Organization, err error) {
	if !idx.Valid(id) {
		return before, after, ErrOrganizationNotFound
	}
	now := clock(s.Now)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganizationByID(ctx, id)
		if err != nil {
			return err
		}
		before = org
		if err := fn(&org, now); err != nil {
			return err
		}
		org.UpdatedAt = now
		if err := tx.Organizations().UpdateOrganization(ctx, org); err != nil {
			return err
		}
		after = org
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return before, after, ErrOrganizationNotFound
	}
	return before, after, err
}

// Suspend marks an organization SUSPENDED. Nothing here blocks the
// organization's users; enforcement lives with the main application.
func (s *OrganizationService) Suspend(
	ctx context.Context,
	caller domain.Caller,
	id, reason string,
) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return domain.Organization{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Organization{}, invalidField("reason", "is required")
	}

	_, org, err := s.mutate(ctx, id, func(org *domain.Organization, now time.Time) error {
		org.Status = domain.OrgStatusSuspended
		org.SuspendedAt = &now
		org.SuspendedBy = caller.User.ID
		org.SuspensionReason = reason
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrOrganizationNotFound) {
			log.Error("failed to suspend organization", slog.Any("error", err))
		}
		return domain.Organization{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name},
		Metadata: domain.OrgSuspended{Reason: reason},
	})
	log.Info("organization suspended", slog.String("organization_id", org.ID))
	return org, nil
}

// Activate sets an organization ACTIVE and clears any suspension.
func (s *OrganizationService) Activate(ctx context.Context, caller domain.Caller, id string) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return domain.Organization{}, err
	}

	_, org, err := s.mutate(ctx, id, func(org *domain.Organization, _ time.Time) error {
		org.Status = domain.OrgStatusActive
		org.SuspendedAt = nil
		org.SuspendedBy = ""
		org.SuspensionReason = ""
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrOrganizationNotFound) {
			log.Error("failed to activate organization", slog.Any("error", err))
		}
		return domain.Organization{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name},
		Metadata: domain.OrgActivated{},
	})
	log.Info("organization activated", slog.String("organization_id", org.ID))
	return org, nil
}

// UpdatePlan changes the plan and the recorded monthly revenue, given as a
// decimal string ("" means zero).
func (s *OrganizationService) UpdatePlan(
	ctx context.Context,
	caller domain.Caller,
	id string,
	plan domain.Plan,
	monthlyRevenue string,
) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return domain.Organization{}, err
	}
	if !plan.Valid() {
		return domain.Organization{}, invalidField("plan", "must be one of FREE STARTER PROFESSIONAL ENTERPRISE")
	}
	revenue, err := domain.ParseCents(monthlyRevenue)
	if err != nil {
		return domain.Organization{}, invalidField("monthlyRevenue", "must be a non-negative amount with at most two decimals")
	}

	before, org, err := s.mutate(ctx, id, func(org *domain.Organization, _ time.Time) error {
		org.Plan = plan
		org.MonthlyRevenue = revenue
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrOrganizationNotFound) {
			log.Error("failed to update organization plan", slog.Any("error", err))
		}
		return domain.Organization{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target: domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name},
		Metadata: domain.OrgPlanChanged{
			Plan:           plan,
			PreviousPlan:   before.Plan,
			MonthlyRevenue: revenue,
		},
	})
	return org, nil
}

// Update applies a profile patch. Only fields whose value actually changed
// are written and audited; an empty change set is a no-op.
func (s *OrganizationService) Update(
	ctx context.Context,
	caller domain.Caller,
	id string,
	patch OrganizationPatch,
) (domain.Organization, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return domain.Organization{}, err
	}

	var changed []string
	_, org, err := s.mutate(ctx, id, func(org *domain.Organization, _ time.Time) error {
		p := organizationProfile{
			Name:         org.Name,
			Industry:     org.Industry,
			Size:         org.Size,
			ContactEmail: org.ContactEmail,
			Phone:        org.Phone,
			Website:      org.Website,
		}
		apply := func(field string, dst *string, v *string) {
			if v == nil || *v == *dst {
				return
			}
			*dst = *v
			changed = append(changed, field)
		}
		apply("name", &p.Name, trimmed(patch.Name))
		apply("industry", &p.Industry, trimmed(patch.Industry))
		apply("size", &p.Size, trimmed(patch.Size))
		if patch.ContactEmail != nil {
			email := domain.NormalizeEmail(*patch.ContactEmail)
			apply("contactEmail", &p.ContactEmail, &email)
		}
		apply("phone", &p.Phone, trimmed(patch.Phone))
		apply("website", &p.Website, trimmed(patch.Website))

		if err := validateInput(p); err != nil {
			return err
		}
		if len(changed) == 0 {
			return errNoChange
		}

		org.Name = p.Name
		org.Industry = p.Industry
		org.Size = p.Size
		org.ContactEmail = p.ContactEmail
		org.Phone = p.Phone
		org.Website = p.Website
		return nil
	})
	switch {
	case errors.Is(err, errNoChange):
		return s.load(ctx, id)
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrOrganizationNotFound):
		return domain.Organization{}, err
	case err != nil:
		log.Error("failed to update organization", slog.Any("error", err))
		return domain.Organization{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   domain.AuditTarget{Type: domain.TargetOrganization, ID: org.ID, Name: org.Name},
		Metadata: domain.OrgUpdated{Fields: changed},
	})
	return org, nil
}

// errNoChange rolls back an Update whose patch matched the stored values.
var errNoChange = errors.New("no change")

func (s *OrganizationService) load(ctx context.Context, id string) (domain.Organization, error) {
	if !idx.Valid(id) {
		return domain.Organization{}, ErrOrganizationNotFound
	}
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, ErrOrganizationNotFound
		}
		slogx.FromContext(ctx).Error("failed to load organization", slog.Any("error", err))
		return domain.Organization{}, err
	}
	return org, nil
}

// Get returns an organization with its members.
func (s *OrganizationService) Get(ctx context.Context, caller domain.Caller, id string) (domain.OrganizationDetail, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return domain.OrganizationDetail{}, err
	}
	org, err := s.load(ctx, id)
	if err != nil {
		return domain.OrganizationDetail{}, err
	}
	members, err := s.Store.Members().ListMembers(ctx, id)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list members", slog.Any("error", err))
		return domain.OrganizationDetail{}, err
	}
	return domain.OrganizationDetail{Organization: org, Members: members}, nil
}

// List returns organizations newest first with member counts.
func (s *OrganizationService) List(
	ctx context.Context,
	caller domain.Caller,
	filter domain.OrganizationFilter,
) ([]domain.OrganizationSummary, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidField("status", "must be one of TRIAL ACTIVE SUSPENDED CANCELLED DELINQUENT")
	}
	if filter.Plan != "" && !filter.Plan.Valid() {
		return nil, invalidField("plan", "must be one of FREE STARTER PROFESSIONAL ENTERPRISE")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	orgs, err := s.Store.Organizations().ListOrganizations(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list organizations", slog.Any("error", err))
		return nil, err
	}
	return orgs, nil
}
