package ports

import (
	"context"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// RegisterClientInput carries a client self-registration.
type RegisterClientInput struct {
	Name          string
	Email         string
	Password      string
	Phone         string
	CompanyBisnis string
}

// RegisterPartnerInput carries a partner self-registration.
type RegisterPartnerInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	KotaDomisili string
}

// RegisterInternalInput carries an internal staff registration. The requested
// role must be a member of domain.InternalRoles.
type RegisterInternalInput struct {
	Name          string
	Email         string
	Password      string
	RequestedRole domain.Role
	// Principal is set when an admin registers staff directly; empty on
	// self-registration (a fresh principal is generated). Admin-supplied
	// principals require Actor to hold an admin role.
	Principal string
	Actor     string
}

// ApprovalView is the lightweight row returned by ListApprovals.
type ApprovalView struct {
	Principal string
	Name      string
	Role      domain.Role
	Status    domain.UserStatus
}

// RegistryService implements registration, identity, the approval workflow,
// and the one-time superadmin claim.
type RegistryService interface {
	RegisterClient(ctx context.Context, in RegisterClientInput) (*domain.User, error)
	RegisterPartner(ctx context.Context, in RegisterPartnerInput) (*domain.User, error)
	RegisterInternal(ctx context.Context, in RegisterInternalInput) (*domain.User, error)

	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	GetUser(ctx context.Context, principal string) (*domain.User, error)

	// ClaimSuperadmin succeeds exactly once system-wide (first caller wins).
	ClaimSuperadmin(ctx context.Context, principal string) error

	// UpdateUserRole is restricted to admin/superadmin actors.
	UpdateUserRole(ctx context.Context, actor, target string, role domain.Role) error

	ApproveUser(ctx context.Context, actor, target string) error
	RejectUser(ctx context.Context, actor, target, reason string) error
	SetApproval(ctx context.Context, actor, target string, status domain.UserStatus) error
	ListApprovals(ctx context.Context, actor string) ([]ApprovalView, error)
	PendingRequests(ctx context.Context, actor string) ([]*domain.User, error)
}
