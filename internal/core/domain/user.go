package domain

import (
	"errors"
	"time"
)

// Role identifies what an actor is allowed to do in the platform.
type Role string

const (
	RoleClient           Role = "client"
	RolePartner          Role = "partner"
	RoleAdmin            Role = "admin"
	RoleFinance          Role = "finance"
	RoleConcierge        Role = "concierge"
	RoleAsistenmu        Role = "asistenmu"
	RoleStrategicPartner Role = "strategicPartner"
	RoleSuperadmin       Role = "superadmin"
)

// InternalRoles is the closed set of roles an internal staff registration may
// request. Superadmin is excluded: it is only obtainable via the one-time claim.
var InternalRoles = []Role{
	RoleAdmin,
	RoleFinance,
	RoleConcierge,
	RoleAsistenmu,
	RoleStrategicPartner,
}

// ValidRole reports whether r is a member of the role enum.
func ValidRole(r Role) bool {
	switch r {
	case RoleClient, RolePartner, RoleAdmin, RoleFinance, RoleConcierge,
		RoleAsistenmu, RoleStrategicPartner, RoleSuperadmin:
		return true
	}
	return false
}

// IsInternalRole reports whether r may be requested on internal registration.
func IsInternalRole(r Role) bool {
	for _, allowed := range InternalRoles {
		if allowed == r {
			return true
		}
	}
	return false
}

// UserStatus is the approval lifecycle state of a registration.
type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserActive   UserStatus = "active"
	UserRejected UserStatus = "rejected"
)

var (
	ErrUnauthorized       = errors.New("caller not authorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAlreadyClaimed     = errors.New("superadmin already claimed")
	// ErrInvalidUserTransition covers approval decisions on non-pending users.
	ErrInvalidUserTransition = errors.New("invalid user state transition")
)

// ApprovalInfo records who decided a registration and when. Reason is only
// set on rejection.
type ApprovalInfo struct {
	DecidedBy string    `json:"decided_by" bson:"decided_by"`
	DecidedAt time.Time `json:"decided_at" bson:"decided_at"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
}

// User is a registered principal. Rejection is terminal: users are never
// hard-deleted and a rejected principal cannot register again.
type User struct {
	Principal     string        `json:"principal" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	Role          Role          `json:"role" bson:"role"`
	Status        UserStatus    `json:"status" bson:"status"`
	Email         string        `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string        `json:"phone,omitempty" bson:"phone,omitempty"`
	CompanyBisnis string        `json:"company_bisnis,omitempty" bson:"company_bisnis,omitempty"`
	KotaDomisili  string        `json:"kota_domisili,omitempty" bson:"kota_domisili,omitempty"`
	PasswordHash  string        `json:"-" bson:"password_hash"`
	Approval      *ApprovalInfo `json:"approval,omitempty" bson:"approval,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// IsActive reports whether the user passed approval and may operate.
func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// HasRole reports whether the user's role is one of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
