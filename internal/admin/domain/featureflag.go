package domain

import (
	"slices"
	"time"
)

type FeatureFlag struct {
	ID              string
	Key             string
	Name            string
	Description     string
	IsEnabled       bool
	EnabledForOrgs  []string // allow list; empty means every organization
	DisabledForOrgs []string // deny list, checked before the allow list
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EnabledFor evaluates the flag for one organization. The global switch
// dominates, then the deny list, then a non-empty allow list. With no
// organization only the global switch applies.
func (f FeatureFlag) EnabledFor(orgID string) bool {
	if !f.IsEnabled {
		return false
	}
	if orgID == "" {
		return true
	}
	if slices.Contains(f.DisabledForOrgs, orgID) {
		return false
	}
	if len(f.EnabledForOrgs) > 0 && !slices.Contains(f.EnabledForOrgs, orgID) {
		return false
	}
	return true
}

// SetOrgs moves orgIDs into the allow list (enable) or the deny list and
// removes them from the opposite list. Order is preserved and duplicates are
// dropped.
func (f *FeatureFlag) SetOrgs(orgIDs []string, enable bool) {
	add, remove := &f.EnabledForOrgs, &f.DisabledForOrgs
	if !enable {
		add, remove = remove, add
	}

	for _, id := range orgIDs {
		if id == "" {
			continue
		}
		if !slices.Contains(*add, id) {
			*add = append(*add, id)
		}
	}
	*remove = slices.DeleteFunc(*remove, func(id string) bool {
		return slices.Contains(orgIDs, id)
	})

	if f.EnabledForOrgs == nil {
		f.EnabledForOrgs = []string{}
	}
	if f.DisabledForOrgs == nil {
		f.DisabledForOrgs = []string{}
	}
}
