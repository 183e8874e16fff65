package domain

// ActiveWindowDays is how recent an organization's activity must be for it
// to count as active on the dashboard.
const ActiveWindowDays = 7

type PlatformStats struct {
	TotalMRR     Cents
	ActiveOrgs   int
	TotalOrgs    int
	TotalUsers   int
	OrgsByStatus map[OrganizationStatus]int
	OrgsByPlan   map[Plan]int
}

// GrowthPoint is the signup count for one calendar month ("2006-01").
type GrowthPoint struct {
	Month         string
	Organizations int
	Users         int
}

// MonthlyCount is a raw per-month aggregate as returned by the store.
type MonthlyCount struct {
	Month string
	Count int
}
