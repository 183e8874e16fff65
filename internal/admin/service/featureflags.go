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

type FeatureFlagService struct {
	Store store.Store
	Audit *AuditRecorder
	Now   func() time.Time
}

type CreateFeatureFlagInput struct {
	Key         string `json:"key" validate:"required,max=100,flagkey"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type setFlagOrgsInput struct {
	OrganizationIDs []string `json:"organizationIds" validate:"required,min=1,max=500,dive,required"`
}

func flagTarget(f domain.FeatureFlag) domain.AuditTarget {
	return domain.AuditTarget{Type: domain.TargetFeatureFlag, ID: f.ID, Name: f.Key}
}

// Create adds a flag. New flags start disabled with empty lists.
func (s *FeatureFlagService) Create(
	ctx context.Context,
	caller domain.Caller,
	in CreateFeatureFlagInput,
) (domain.FeatureFlag, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSuperAdmin(caller); err != nil {
		return domain.FeatureFlag{}, err
	}
	in.Key = strings.TrimSpace(in.Key)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return domain.FeatureFlag{}, err
	}

	now := clock(s.Now)
	flag := domain.FeatureFlag{
		ID:              idx.New().String(),
		Key:             in.Key,
		Name:            in.Name,
		Description:     in.Description,
		EnabledForOrgs:  []string{},
		DisabledForOrgs: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.FeatureFlags().CreateFeatureFlag(ctx, flag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("feature flag key taken", slog.String("key", flag.Key))
			return domain.FeatureFlag{}, ErrFlagKeyTaken
		}
		log.Error("failed to create feature flag", slog.Any("error", err))
		return domain.FeatureFlag{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   flagTarget(flag),
		Metadata: domain.FeatureFlagChanged{Change: "created"},
	})
	return flag, nil
}

// update runs a read-modify-write on one flag inside a transaction.
func (s *FeatureFlagService) update(
	ctx context.Context,
	id string,
	fn func(f *domain.FeatureFlag),
) (domain.FeatureFlag, error) {
	if !idx.Valid(id) {
		return domain.FeatureFlag{}, ErrFlagNotFound
	}
	var out domain.FeatureFlag
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		flag, err := tx.FeatureFlags().GetFeatureFlagByID(ctx, id)
		if err != nil {
			return err
		}
		fn(&flag)
		flag.UpdatedAt = clock(s.Now)
		if err := tx.FeatureFlags().UpdateFeatureFlag(ctx, flag); err != nil {
			return err
		}
		out = flag
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.FeatureFlag{}, ErrFlagNotFound
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to update feature flag", slog.Any("error", err))
		return domain.FeatureFlag{}, err
	}
	return out, nil
}

// Toggle flips the global switch.
func (s *FeatureFlagService) Toggle(
	ctx context.Context,
	caller domain.Caller,
	id string,
	enabled bool,
) (domain.FeatureFlag, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return domain.FeatureFlag{}, err
	}

	flag, err := s.update(ctx, id, func(f *domain.FeatureFlag) { f.IsEnabled = enabled })
	if err != nil {
		return domain.FeatureFlag{}, err
	}

	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   flagTarget(flag),
		Metadata: domain.FeatureFlagChanged{Change: "toggled", IsEnabled: &enabled},
	})
	return flag, nil
}

// SetForOrgs adds orgIDs to the allow list (enable) or the deny list and
// takes them out of the other.
func (s *FeatureFlagService) SetForOrgs(
	ctx context.Context,
	caller domain.Caller,
	id string,
	orgIDs []string,
	enable bool,
) (domain.FeatureFlag, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return domain.FeatureFlag{}, err
	}
	in := setFlagOrgsInput{OrganizationIDs: make([]string, 0, len(orgIDs))}
	for _, o := range orgIDs {
		in.OrganizationIDs = append(in.OrganizationIDs, strings.TrimSpace(o))
	}
	if err := validateInput(in); err != nil {
		return domain.FeatureFlag{}, err
	}

	flag, err := s.update(ctx, id, func(f *domain.FeatureFlag) { f.SetOrgs(in.OrganizationIDs, enable) })
	if err != nil {
		return domain.FeatureFlag{}, err
	}

	change := "disable"
	if enable {
		change = "enable"
	}
	s.Audit.Record(ctx, caller, AuditEntry{
		Target:   flagTarget(flag),
		Metadata: domain.FeatureFlagChanged{Change: change, OrgIDs: in.OrganizationIDs},
	})
	return flag, nil
}

func (s *FeatureFlagService) List(ctx context.Context, caller domain.Caller) ([]domain.FeatureFlag, error) {
	if err := RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	flags, err := s.Store.FeatureFlags().ListFeatureFlags(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list feature flags", slog.Any("error", err))
		return nil, err
	}
	return flags, nil
}

// IsEnabled evaluates key for an organization. Unknown keys are off.
func (s *FeatureFlagService) IsEnabled(ctx context.Context, key, orgID string) (bool, error) {
	flag, err := s.Store.FeatureFlags().GetFeatureFlagByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load feature flag", slog.String("key", key), slog.Any("error", err))
		return false, err
	}
	return flag.EnabledFor(orgID), nil
}
