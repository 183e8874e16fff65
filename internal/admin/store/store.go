package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStateChanged is returned by conditional updates when the row exists
	// but is no longer in the state the update requires.
	ErrStateChanged = errors.New("store: row state changed")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories per table so a Tx-scoped store can hand out the same
// repos bound to the transaction.
type Store interface {
	Users() Users
	Sessions() Sessions
	Organizations() Organizations
	Members() Members
	Suppliers() Suppliers
	Invitations() Invitations
	SuperAdminInvitations() SuperAdminInvitations
	ImpersonationTokens() ImpersonationTokens
	AuditLogs() AuditLogs
	FeatureFlags() FeatureFlags
	EmailDeliveries() EmailDeliveries
	Insights() Insights

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn only the tx argument may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the normalized (lower-cased) address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a user. A duplicate email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// AssignRole sets the role, fills organization_id only when the user has
	// none, and marks the email verified since the user redeemed a link
	// sent to it.
	AssignRole(ctx context.Context, userID string, role domain.Role, orgID string, now time.Time) error

	SetSupplier(ctx context.Context, userID, supplierID string, now time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)

	// SearchUsers matches a case-insensitive substring of name or email.
	SearchUsers(ctx context.Context, query string, limit int) ([]domain.UserSearchResult, error)

	UpdateMFASecret(ctx context.Context, userID, secret string, now time.Time) error
	EnableMFA(ctx context.Context, userID string, now time.Time) error
	DisableMFA(ctx context.Context, userID string, now time.Time) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	RevokeSession(ctx context.Context, id string, now time.Time) error

	// DeleteStaleSessions removes expired or revoked sessions.
	DeleteStaleSessions(ctx context.Context, now time.Time) (int64, error)
}

type Organizations interface {
	// CreateOrganization inserts a row. A duplicate slug yields ErrAlreadyExists.
	CreateOrganization(ctx context.Context, o domain.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error)

	// UpdateOrganization writes every mutable column of o.
	UpdateOrganization(ctx context.Context, o domain.Organization) error

	// ListOrganizations returns matches newest first with member counts.
	ListOrganizations(ctx context.Context, f domain.OrganizationFilter) ([]domain.OrganizationSummary, error)
}

type Members interface {
	// AddMember links a user to an organization. A duplicate pair yields
	// ErrAlreadyExists.
	AddMember(ctx context.Context, m domain.Member) error
	ListMembers(ctx context.Context, orgID string) ([]domain.MemberView, error)
}

type Suppliers interface {
	CreateSupplier(ctx context.Context, s domain.Supplier) error
	GetSupplierByID(ctx context.Context, id string) (domain.Supplier, error)
	LinkSupplierUser(ctx context.Context, supplierID, userID string, status domain.SupplierStatus) error
}

type Invitations interface {
	CreateInvitation(ctx context.Context, inv domain.Invitation) error
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetInvitationByTokenHash joins the organization and inviter names.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.InvitationView, error)

	// MarkInvitationAccepted flips a PENDING row to ACCEPTED. Any other
	// status yields ErrStateChanged.
	MarkInvitationAccepted(ctx context.Context, id, userID string, now time.Time) error

	// RevokeInvitation flips a PENDING row to REVOKED. Any other status
	// yields ErrStateChanged.
	RevokeInvitation(ctx context.Context, id string, now time.Time) error

	ListOrganizationInvitations(ctx context.Context, orgID string) ([]domain.Invitation, error)
}

type SuperAdminInvitations interface {
	CreateSuperAdminInvitation(ctx context.Context, inv domain.SuperAdminInvitation) error
	GetSuperAdminInvitationByID(ctx context.Context, id string) (domain.SuperAdminInvitation, error)

	// GetSuperAdminInvitationByTokenHash joins the inviter's name.
	GetSuperAdminInvitationByTokenHash(ctx context.Context, hash string) (domain.SuperAdminInvitationView, error)

	MarkSuperAdminInvitationAccepted(ctx context.Context, id, userID string, now time.Time) error
	RevokeSuperAdminInvitation(ctx context.Context, id string, now time.Time) error

	// ListPendingSuperAdminInvitations returns PENDING rows newest first,
	// including expired ones so operators can see and revoke them.
	ListPendingSuperAdminInvitations(ctx context.Context) ([]domain.SuperAdminInvitationView, error)
}

type ImpersonationTokens interface {
	CreateImpersonationToken(ctx context.Context, t domain.ImpersonationToken) error
	GetImpersonationTokenByHash(ctx context.Context, hash string) (domain.ImpersonationToken, error)

	// ConsumeImpersonationToken sets used_at in a single conditional
	// statement. Unknown, used or expired tokens yield ErrStateChanged.
	ConsumeImpersonationToken(ctx context.Context, hash string, now time.Time) (domain.ImpersonationToken, error)

	// DeleteStaleImpersonationTokens removes unused tokens that expired
	// before cutoff. Used tokens are kept so a replay still reads as used.
	DeleteStaleImpersonationTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type AuditLogs interface {
	AppendAuditLog(ctx context.Context, l domain.AuditLog) error

	// ListAuditLogs returns entries newest first joined with the performer.
	ListAuditLogs(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, error)
}

type FeatureFlags interface {
	// CreateFeatureFlag inserts a flag. A duplicate key yields ErrAlreadyExists.
	CreateFeatureFlag(ctx context.Context, f domain.FeatureFlag) error
	GetFeatureFlagByID(ctx context.Context, id string) (domain.FeatureFlag, error)
	GetFeatureFlagByKey(ctx context.Context, key string) (domain.FeatureFlag, error)

	// UpdateFeatureFlag writes the switch and both organization lists.
	UpdateFeatureFlag(ctx context.Context, f domain.FeatureFlag) error
	ListFeatureFlags(ctx context.Context) ([]domain.FeatureFlag, error)
}

type EmailDeliveries interface {
	CreateEmailDelivery(ctx context.Context, d domain.EmailDelivery) error
	MarkEmailSent(ctx context.Context, id, providerMessageID string, now time.Time) error
	MarkEmailFailed(ctx context.Context, id, reason string) error

	// ListEmailDeliveries returns newest first; an empty status matches all.
	ListEmailDeliveries(ctx context.Context, status domain.DeliveryStatus, limit int) ([]domain.EmailDelivery, error)
}

// Insights holds the read-only aggregates behind the dashboard.
type Insights interface {
	// SumActiveRevenue totals monthly revenue across ACTIVE organizations.
	SumActiveRevenue(ctx context.Context) (domain.Cents, error)

	// CountActiveOrganizations counts ACTIVE organizations with activity at
	// or after since.
	CountActiveOrganizations(ctx context.Context, since time.Time) (int, error)

	CountOrganizations(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	CountOrganizationsByStatus(ctx context.Context) (map[domain.OrganizationStatus]int, error)
	CountOrganizationsByPlan(ctx context.Context) (map[domain.Plan]int, error)

	// OrganizationSignupsByMonth and UserSignupsByMonth bucket rows created
	// at or after since by UTC calendar month ("2006-01"). Empty months are
	// omitted.
	OrganizationSignupsByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyCount, error)
	UserSignupsByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyCount, error)
}
