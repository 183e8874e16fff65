package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

const featureFlagColumns = `id, key, name, description, is_enabled,
	enabled_for_orgs, disabled_for_orgs, created_at, updated_at`

type featureFlagsRepo struct {
	q querier
}

func encodeOrgList(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode organization list: %w", err)
	}
	return string(raw), nil
}

func decodeOrgList(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode organization list: %w", err)
	}
	return ids, nil
}

func scanFeatureFlag(row scanner) (domain.FeatureFlag, error) {
	var (
		f                    domain.FeatureFlag
		enabledFor           string
		disabledFor          string
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&f.ID, &f.Key, &f.Name, &f.Description, &f.IsEnabled,
		&enabledFor, &disabledFor, &createdAt, &updatedAt,
	); err != nil {
		return domain.FeatureFlag{}, mapNotFound(err)
	}

	var err error
	if f.EnabledForOrgs, err = decodeOrgList(enabledFor); err != nil {
		return domain.FeatureFlag{}, err
	}
	if f.DisabledForOrgs, err = decodeOrgList(disabledFor); err != nil {
		return domain.FeatureFlag{}, err
	}
	f.CreatedAt = fromMillis(createdAt)
	f.UpdatedAt = fromMillis(updatedAt)
	return f, nil
}

func (r *featureFlagsRepo) CreateFeatureFlag(ctx context.Context, f domain.FeatureFlag) error {
	enabledFor, err := encodeOrgList(f.EnabledForOrgs)
	if err != nil {
		return err
	}
	disabledFor, err := encodeOrgList(f.DisabledForOrgs)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO feature_flags (`+featureFlagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Key, f.Name, f.Description, f.IsEnabled,
		enabledFor, disabledFor, millis(f.CreatedAt), millis(f.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *featureFlagsRepo) GetFeatureFlagByID(ctx context.Context, id string) (domain.FeatureFlag, error) {
	return scanFeatureFlag(r.q.QueryRowContext(ctx,
		`SELECT `+featureFlagColumns+` FROM feature_flags WHERE id = ?`, id))
}

func (r *featureFlagsRepo) GetFeatureFlagByKey(ctx context.Context, key string) (domain.FeatureFlag, error) {
	return scanFeatureFlag(r.q.QueryRowContext(ctx,
		`SELECT `+featureFlagColumns+` FROM feature_flags WHERE key = ?`, key))
}

func (r *featureFlagsRepo) UpdateFeatureFlag(ctx context.Context, f domain.FeatureFlag) error {
	enabledFor, err := encodeOrgList(f.EnabledForOrgs)
	if err != nil {
		return err
	}
	disabledFor, err := encodeOrgList(f.DisabledForOrgs)
	if err != nil {
		return err
	}

	return expectFound(r.q.ExecContext(ctx, `
		UPDATE feature_flags
		SET is_enabled = ?, enabled_for_orgs = ?, disabled_for_orgs = ?, updated_at = ?
		WHERE id = ?`,
		f.IsEnabled, enabledFor, disabledFor, millis(f.UpdatedAt), f.ID,
	))
}

func (r *featureFlagsRepo) ListFeatureFlags(ctx context.Context) ([]domain.FeatureFlag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+featureFlagColumns+` FROM feature_flags ORDER BY name, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.FeatureFlag{}
	for rows.Next() {
		f, err := scanFeatureFlag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
