package domain

import "time"

// ImpersonationTTL bounds how long a magic link stays redeemable.
const ImpersonationTTL = time.Hour

type ImpersonationToken struct {
	ID           string
	TokenHash    string
	SuperAdminID string
	TargetUserID string
	ExpiresAt    time.Time
	UsedAt       *time.Time
	CreatedAt    time.Time
}
