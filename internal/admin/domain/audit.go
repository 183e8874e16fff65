package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type AuditAction string

const (
	ActionSuperAdminInvited  AuditAction = "SUPER_ADMIN_INVITED"
	ActionOrgAdminInvited    AuditAction = "ORG_ADMIN_INVITED"
	ActionMemberInvited      AuditAction = "MEMBER_INVITED"
	ActionInvitationRevoked  AuditAction = "INVITATION_REVOKED"
	ActionUserCreated        AuditAction = "USER_CREATED"
	ActionUserRoleUpdated    AuditAction = "USER_ROLE_UPDATED"
	ActionMemberAdded        AuditAction = "MEMBER_ADDED"
	ActionOrgCreated         AuditAction = "ORG_CREATED"
	ActionOrgSuspended       AuditAction = "ORG_SUSPENDED"
	ActionOrgActivated       AuditAction = "ORG_ACTIVATED"
	ActionOrgPlanChanged     AuditAction = "ORG_PLAN_CHANGED"
	ActionOrgUpdated         AuditAction = "ORG_UPDATED"
	ActionUserImpersonated   AuditAction = "USER_IMPERSONATED"
	ActionFeatureFlagChanged AuditAction = "FEATURE_FLAG_CHANGED"
)

type TargetType string

const (
	TargetOrganization TargetType = "ORGANIZATION"
	TargetUser         TargetType = "USER"
	TargetInvitation   TargetType = "INVITATION"
	TargetFeatureFlag  TargetType = "FEATURE_FLAG"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetOrganization, TargetUser, TargetInvitation, TargetFeatureFlag:
		return true
	}
	return false
}

// AuditMetadata is the typed payload of an audit entry. Each action has
// exactly one payload type and the action is derived from it, so an entry
// can never carry metadata for the wrong event.
type AuditMetadata interface {
	Action() AuditAction
}

type SuperAdminInvited struct {
	Email string `json:"email"`
}

type OrgAdminInvited struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrganizationID string `json:"organizationId"`
}

type MemberInvited struct {
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId"`
	Role           Role   `json:"role"`
	SupplierID     string `json:"supplierId,omitempty"`
}

type InviteRevoked struct {
	Email string `json:"email"`
	Kind  string `json:"kind"` // "super_admin" or "organization"
}

type UserCreated struct {
	Role       Role   `json:"role"`
	InvitedVia string `json:"invitedVia"`
}

type UserRoleUpdated struct {
	PreviousRole Role   `json:"previousRole"`
	NewRole      Role   `json:"newRole"`
	InvitedVia   string `json:"invitedVia"`
}

type MemberAdded struct {
	OrganizationID string `json:"organizationId"`
	Role           Role   `json:"role"`
	SupplierID     string `json:"supplierId,omitempty"`
}

type OrgCreated struct {
	Plan    Plan   `json:"plan"`
	PMEmail string `json:"pmEmail,omitempty"`
}

type OrgSuspended struct {
	Reason string `json:"reason"`
}

type OrgActivated struct{}

type OrgPlanChanged struct {
	Plan           Plan  `json:"plan"`
	PreviousPlan   Plan  `json:"previousPlan"`
	MonthlyRevenue Cents `json:"monthlyRevenue"`
}

type OrgUpdated struct {
	Fields []string `json:"fields"`
}

type UserImpersonated struct {
	TargetUser string `json:"targetUser"`
}

type FeatureFlagChanged struct {
	Change    string   `json:"action"` // created, toggled, enable or disable
	IsEnabled *bool    `json:"isEnabled,omitempty"`
	OrgIDs    []string `json:"orgIds,omitempty"`
}

func (SuperAdminInvited) Action() AuditAction  { return ActionSuperAdminInvited }
func (OrgAdminInvited) Action() AuditAction    { return ActionOrgAdminInvited }
func (MemberInvited) Action() AuditAction      { return ActionMemberInvited }
func (InviteRevoked) Action() AuditAction      { return ActionInvitationRevoked }
func (UserCreated) Action() AuditAction        { return ActionUserCreated }
func (UserRoleUpdated) Action() AuditAction    { return ActionUserRoleUpdated }
func (MemberAdded) Action() AuditAction        { return ActionMemberAdded }
func (OrgCreated) Action() AuditAction         { return ActionOrgCreated }
func (OrgSuspended) Action() AuditAction       { return ActionOrgSuspended }
func (OrgActivated) Action() AuditAction       { return ActionOrgActivated }
func (OrgPlanChanged) Action() AuditAction     { return ActionOrgPlanChanged }
func (OrgUpdated) Action() AuditAction         { return ActionOrgUpdated }
func (UserImpersonated) Action() AuditAction   { return ActionUserImpersonated }
func (FeatureFlagChanged) Action() AuditAction { return ActionFeatureFlagChanged }

var ErrUnknownAuditAction = errors.New("domain: unknown audit action")

// DecodeAuditMetadata rebuilds the typed payload for a stored entry, picking
// the struct from the action tag.
func DecodeAuditMetadata(action AuditAction, raw []byte) (AuditMetadata, error) {
	switch action {
	case ActionSuperAdminInvited:
		return decodeAs[SuperAdminInvited](action, raw)
	case ActionOrgAdminInvited:
		return decodeAs[OrgAdminInvited](action, raw)
	case ActionMemberInvited:
		return decodeAs[MemberInvited](action, raw)
	case ActionInvitationRevoked:
		return decodeAs[InviteRevoked](action, raw)
	case ActionUserCreated:
		return decodeAs[UserCreated](action, raw)
	case ActionUserRoleUpdated:
		return decodeAs[UserRoleUpdated](action, raw)
	case ActionMemberAdded:
		return decodeAs[MemberAdded](action, raw)
	case ActionOrgCreated:
		return decodeAs[OrgCreated](action, raw)
	case ActionOrgSuspended:
		return decodeAs[OrgSuspended](action, raw)
	case ActionOrgActivated:
		return decodeAs[OrgActivated](action, raw)
	case ActionOrgPlanChanged:
		return decodeAs[OrgPlanChanged](action, raw)
	case ActionOrgUpdated:
		return decodeAs[OrgUpdated](action, raw)
	case ActionUserImpersonated:
		return decodeAs[UserImpersonated](action, raw)
	case ActionFeatureFlagChanged:
		return decodeAs[FeatureFlagChanged](action, raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAuditAction, action)
}

func decodeAs[T AuditMetadata](action AuditAction, raw []byte) (AuditMetadata, error) {
	var md T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &md); err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", action, err)
		}
	}
	return md, nil
}

// AuditTarget identifies what an audit entry is about.
type AuditTarget struct {
	Type TargetType
	ID   string
	Name string
}

// AuditLog is one append-only audit row.
type AuditLog struct {
	ID          string
	Action      AuditAction
	PerformedBy string
	Target      AuditTarget
	Metadata    AuditMetadata
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}

// AuditEntry is an audit row joined with its performer.
type AuditEntry struct {
	AuditLog
	PerformerName  string
	PerformerEmail string
}

// AuditFilter narrows audit listings. Zero values match all.
type AuditFilter struct {
	TargetType TargetType
	TargetID   string
	Limit      int
}
