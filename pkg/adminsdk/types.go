package adminsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Envelopes
// ============================================================================

// Response wraps every successful payload. Data holds the endpoint-specific
// body documented on each handler.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope. Fields is only set for
// validation failures and maps JSON field names to the rule they broke.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// InvalidLinkResponse is returned by the invitation validate endpoints when
// the link cannot be used. Error carries the same codes as ErrorResponse.
type InvalidLinkResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// envelope is the typed decoding target for Response.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// ============================================================================
// Account Types
// ============================================================================

// BootstrapRequest creates the first super admin.
type BootstrapRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SignInRequest authenticates with email and password. TOTPCode is required
// once MFA is enabled on the account.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode,omitempty"`
}

// SessionResponse is returned on sign-in. The session itself travels in the
// HttpOnly cookie.
type SessionResponse struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organizationId,omitempty"`
	SupplierID     string    `json:"supplierId,omitempty"`
	IsSuspended    bool      `json:"isSuspended"`
	EmailVerified  bool      `json:"emailVerified"`
	MFAEnabled     bool      `json:"mfaEnabled"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TOTPCodeRequest carries a six digit code for MFA verification or removal.
type TOTPCodeRequest struct {
	Code string `json:"code"`
}

// TOTPEnrollResponse holds the new secret and its otpauth:// URL.
type TOTPEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// ============================================================================
// Invitation Types
// ============================================================================

type SuperAdminInviteRequest struct {
	Email string `json:"email"`
}

type OrgAdminInviteRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type MemberInviteRequest struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	SupplierID string `json:"supplierId,omitempty"`
}

// AcceptInviteRequest finalizes an invitation for a signed-in account.
type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// AcceptInviteNewRequest creates the account named by the invitation.
type AcceptInviteNewRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SuperAdminInvitation struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	InvitedBy   string    `json:"invitedBy"`
	InviterName string    `json:"inviterName,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Invitation struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organizationId"`
	Role           string    `json:"role"`
	SupplierID     string    `json:"supplierId,omitempty"`
	Status         string    `json:"status"`
	InvitedBy      string    `json:"invitedBy"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IssuedSuperAdminInvite is returned once, when the invite is created. The
// raw token is never retrievable again.
type IssuedSuperAdminInvite struct {
	Invitation SuperAdminInvitation `json:"invitation"`
	Token      string               `json:"token"`
	Link       string               `json:"link"`
}

type IssuedInvitation struct {
	Invitation Invitation `json:"invitation"`
	Token      string     `json:"token"`
	Link       string     `json:"link"`
}

type SuperAdminInviteDetails struct {
	Valid       bool      `json:"valid"`
	Email       string    `json:"email"`
	InviterName string    `json:"inviterName"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type InvitationDetails struct {
	Valid            bool      `json:"valid"`
	Email            string    `json:"email"`
	OrganizationID   string    `json:"organizationId"`
	OrganizationName string    `json:"organizationName"`
	Role             string    `json:"role"`
	InviterName      string    `json:"inviterName"`
	ExpiresAt        time.Time `json:"expiresAt"`
	AccountExists    bool      `json:"accountExists"`
}

// ============================================================================
// Organization Types
// ============================================================================

type CreateOrganizationRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Plan         string `json:"plan,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Size         string `json:"size,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Website      string `json:"website,omitempty"`
	PMEmail      string `json:"pmEmail,omitempty"`
}

// UpdateOrganizationRequest edits profile fields. Nil fields are untouched.
type UpdateOrganizationRequest struct {
	Name         *string `json:"name,omitempty"`
	Industry     *string `json:"industry,omitempty"`
	Size         *string `json:"size,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Website      *string `json:"website,omitempty"`
}

type SuspendOrganizationRequest struct {
	Reason string `json:"reason"`
}

// UpdatePlanRequest sets the plan. MonthlyRevenue is a decimal string such
// as "499.00".
type UpdatePlanRequest struct {
	Plan           string `json:"plan"`
	MonthlyRevenue string `json:"monthlyRevenue,omitempty"`
}

type Organization struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	MonthlyRevenue   string     `json:"monthlyRevenue"`
	Industry         string     `json:"industry,omitempty"`
	Size             string     `json:"size,omitempty"`
	ContactEmail     string     `json:"contactEmail,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Website          string     `json:"website,omitempty"`
	CreatedBy        string     `json:"createdBy"`
	LastActivityAt   *time.Time `json:"lastActivityAt,omitempty"`
	SuspendedAt      *time.Time `json:"suspendedAt,omitempty"`
	SuspendedBy      string     `json:"suspendedBy,omitempty"`
	SuspensionReason string     `json:"suspensionReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type OrganizationSummary struct {
	Organization
	MemberCount int `json:"memberCount"`
}

type Member struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrganizationDetail struct {
	Organization
	Members []Member `json:"members"`
}

// CreatedOrganization carries the PM invitation when the named project
// manager had no account yet.
type CreatedOrganization struct {
	Organization Organization      `json:"organization"`
	PMInvitation *IssuedInvitation `json:"pmInvitation,omitempty"`
}

// ============================================================================
// Impersonation Types
// ============================================================================

type ImpersonationResponse struct {
	Token      string    `json:"token"`
	Link       string    `json:"link"`
	ExpiresAt  time.Time `json:"expiresAt"`
	TargetUser User      `json:"targetUser"`
}

type ConsumeImpersonationRequest struct {
	Token string `json:"token"`
}

// ============================================================================
// Insight Types
// ============================================================================

type PlatformStats struct {
	TotalMRR     string         `json:"totalMrr"`
	ActiveOrgs   int            `json:"activeOrgs"`
	TotalOrgs    int            `json:"totalOrgs"`
	TotalUsers   int            `json:"totalUsers"`
	OrgsByStatus map[string]int `json:"orgsByStatus"`
	OrgsByPlan   map[string]int `json:"orgsByPlan"`
}

type GrowthPoint struct {
	Month         string `json:"month"`
	Organizations int    `json:"organizations"`
	Users         int    `json:"users"`
}

type UserSearchResult struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	IsSuspended      bool      `json:"isSuspended"`
	OrganizationID   string    `json:"organizationId,omitempty"`
	OrganizationName string    `json:"organizationName,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// AuditLog is one audit entry. Metadata shape depends on Action.
type AuditLog struct {
	ID             string          `json:"id"`
	Action         string          `json:"action"`
	PerformedBy    string          `json:"performedBy"`
	PerformerName  string          `json:"performerName,omitempty"`
	PerformerEmail string          `json:"performerEmail,omitempty"`
	TargetType     string          `json:"targetType"`
	TargetID       string          `json:"targetId"`
	TargetName     string          `json:"targetName,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty" swaggertype:"object"`
	IPAddress      string          `json:"ipAddress"`
	UserAgent      string          `json:"userAgent"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type EmailDelivery struct {
	ID                string     `json:"id"`
	Recipient         string     `json:"recipient"`
	Subject           string     `json:"subject"`
	Template          string     `json:"template"`
	Status            string     `json:"status"`
	ProviderMessageID string     `json:"providerMessageId,omitempty"`
	Error             string     `json:"error,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
}

// ============================================================================
// Feature Flag Types
// ============================================================================

type CreateFeatureFlagRequest struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ToggleFeatureFlagRequest struct {
	Enabled bool `json:"enabled"`
}

// FlagOrganizationsRequest adds the organizations to the allow list when
// Enable is true and to the deny list otherwise.
type FlagOrganizationsRequest struct {
	OrganizationIDs []string `json:"organizationIds"`
	Enable          bool     `json:"enable"`
}

type FeatureFlag struct {
	ID              string    `json:"id"`
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	IsEnabled       bool      `json:"isEnabled"`
	EnabledForOrgs  []string  `json:"enabledForOrgs"`
	DisabledForOrgs []string  `json:"disabledForOrgs"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type FlagEvaluation struct {
	Key            string `json:"key"`
	OrganizationID string `json:"organizationId"`
	Enabled        bool   `json:"enabled"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response from health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks contains the status of each readiness dependency.
// Email is "ok", "noop" when messages are only logged, or "disabled".
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Email    string `json:"email,omitempty"`
}
