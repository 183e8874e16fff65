package domain

type SupplierStatus string

const (
	SupplierStatusInvited    SupplierStatus = "INVITED"
	SupplierStatusOnboarding SupplierStatus = "ONBOARDING"
	SupplierStatusActive     SupplierStatus = "ACTIVE"
	SupplierStatusInactive   SupplierStatus = "INACTIVE"
)

// Supplier is an external vendor attached to an organization. Accepting a
// supplier invitation links the vendor to the accepting user.
type Supplier struct {
	ID             string
	OrganizationID string
	Name           string
	ContactEmail   string
	UserID         string
	Status         SupplierStatus
}
