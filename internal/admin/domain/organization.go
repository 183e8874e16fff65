package domain

import "time"

type Plan string

const (
	PlanFree         Plan = "FREE"
	PlanStarter      Plan = "STARTER"
	PlanProfessional Plan = "PROFESSIONAL"
	PlanEnterprise   Plan = "ENTERPRISE"
)

var Plans = []Plan{PlanFree, PlanStarter, PlanProfessional, PlanEnterprise}

func (p Plan) Valid() bool {
	for _, v := range Plans {
		if v == p {
			return true
		}
	}
	return false
}

type OrganizationStatus string

const (
	OrgStatusTrial      OrganizationStatus = "TRIAL"
	OrgStatusActive     OrganizationStatus = "ACTIVE"
	OrgStatusSuspended  OrganizationStatus = "SUSPENDED"
	OrgStatusCancelled  OrganizationStatus = "CANCELLED"
	OrgStatusDelinquent OrganizationStatus = "DELINQUENT"
)

var OrganizationStatuses = []OrganizationStatus{
	OrgStatusTrial, OrgStatusActive, OrgStatusSuspended, OrgStatusCancelled, OrgStatusDelinquent,
}

func (s OrganizationStatus) Valid() bool {
	for _, v := range OrganizationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Organization struct {
	ID               string
	Name             string
	Slug             string
	Plan             Plan
	Status           OrganizationStatus
	MonthlyRevenue   Cents
	Industry         string
	Size             string
	ContactEmail     string
	Phone            string
	Website          string
	CreatedBy        string
	LastActivityAt   *time.Time
	SuspendedAt      *time.Time
	SuspendedBy      string
	SuspensionReason string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrganizationSummary is a list row with its member count.
type OrganizationSummary struct {
	Organization
	MemberCount int
}

// OrganizationFilter narrows organization listings. Zero values match all.
type OrganizationFilter struct {
	Status OrganizationStatus
	Plan   Plan
	Search string
}

type Member struct {
	ID             string
	UserID         string
	OrganizationID string
	Role           Role
	CreatedAt      time.Time
}

// MemberView is a membership joined with its user.
type MemberView struct {
	Member
	UserName  string
	UserEmail string
}

// OrganizationDetail is an organization with its members.
type OrganizationDetail struct {
	Organization
	Members []MemberView
}
