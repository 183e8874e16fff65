package domain

// Role is the platform-wide role carried on a user record.
type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleAdmin        Role = "ADMIN"
	RolePM           Role = "PM"
	RoleSupplier     Role = "SUPPLIER"
	RoleQA           Role = "QA"
	RoleSiteReceiver Role = "SITE_RECEIVER"
)

// Roles lists every role in display order.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RolePM, RoleSupplier, RoleQA, RoleSiteReceiver}

// ParseRole returns the role named by s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// OrganizationScoped reports whether the role can be granted inside an
// organization. Super admins sit above every tenant.
func (r Role) OrganizationScoped() bool {
	return r.Valid() && r != RoleSuperAdmin
}

func (r Role) String() string { return string(r) }
