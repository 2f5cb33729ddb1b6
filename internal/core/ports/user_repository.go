package ports

import (
	"context"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// UserRepository defines persistence for the user/role registry. The registry
// is the sole source of truth for every authorization check in the system.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrUserExists when the
	// principal is already registered (including rejected principals).
	Create(ctx context.Context, user *domain.User) error

	FindByPrincipal(ctx context.Context, principal string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateStatus atomically moves a user from the expected status to the
	// new one, stamping the approval metadata. Returns
	// domain.ErrInvalidUserTransition when the user is not in expect.
	UpdateStatus(ctx context.Context, principal string, expect, next domain.UserStatus, info *domain.ApprovalInfo) error

	// UpdateRole replaces the user's role.
	UpdateRole(ctx context.Context, principal string, role domain.Role) error

	ListByStatus(ctx context.Context, status domain.UserStatus) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// ClaimSuperadmin atomically records the one-time superadmin claim and
	// promotes the principal. Returns domain.ErrAlreadyClaimed on any call
	// after the first, regardless of caller.
	ClaimSuperadmin(ctx context.Context, principal string) error
}
