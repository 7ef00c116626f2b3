package domain

// Role роль пользователя, пришедшая из заголовка X-User-Role
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRole returns RoleClient for empty or unknown values
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleEmployee, RoleAdmin:
		return Role(s)
	default:
		return RoleClient
	}
}

// Actor the authenticated caller of an operation
type Actor struct {
	UserID int64
	Role   Role
}

// IsStaff returns true for employees and administrators
func (a Actor) IsStaff() bool {
	return a.Role == RoleEmployee || a.Role == RoleAdmin
}

// CanAccess returns true if the actor owns the reservation or is staff
func (a Actor) CanAccess(r *Reservation) bool {
	return r.UserID == a.UserID || a.IsStaff()
}
