package domain

import "time"

// InvitationTTL is how long every invitation flow keeps a token redeemable.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRevoked  InvitationStatus = "REVOKED"
)

// InvitationState is the outcome of checking whether an invitation can still
// be redeemed.
type InvitationState int

const (
	InvitationUsable InvitationState = iota
	InvitationUsed
	InvitationWithdrawn
	InvitationLapsed
)

// CheckInvitation applies the redemption rules shared by both invitation
// tables: only PENDING rows that have not passed their expiry are usable.
// Status wins over expiry so an accepted invitation never reports expired.
func CheckInvitation(status InvitationStatus, expiresAt, now time.Time) InvitationState {
	switch status {
	case InvitationAccepted:
		return InvitationUsed
	case InvitationRevoked:
		return InvitationWithdrawn
	}
	if now.After(expiresAt) {
		return InvitationLapsed
	}
	return InvitationUsable
}

// Invitation is an organization-scoped invite (org admin or member).
type Invitation struct {
	ID             string
	TokenHash      string
	Email          string
	OrganizationID string
	Role           Role
	SupplierID     string
	Status         InvitationStatus
	InvitedBy      string
	AcceptedUserID string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (i Invitation) State(now time.Time) InvitationState {
	return CheckInvitation(i.Status, i.ExpiresAt, now)
}

// InvitationView is an invitation joined with its organization and inviter
// for display during validation.
type InvitationView struct {
	Invitation
	OrganizationName string
	InviterName      string
}

// SuperAdminInvitation elevates the recipient to SUPER_ADMIN on acceptance.
type SuperAdminInvitation struct {
	ID             string
	TokenHash      string
	Email          string
	InvitedBy      string
	Status         InvitationStatus
	AcceptedUserID string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (i SuperAdminInvitation) State(now time.Time) InvitationState {
	return CheckInvitation(i.Status, i.ExpiresAt, now)
}

// SuperAdminInvitationView adds the inviter's display name.
type SuperAdminInvitationView struct {
	SuperAdminInvitation
	InviterName string
}
