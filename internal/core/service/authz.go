package service

import (
	"context"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// requireActor loads the acting principal from the registry and checks the
// capability "caller is active AND has one of roles". The registry is the
// sole source of truth for authorization; JWT claims only identify the
// principal.
func requireActor(ctx context.Context, users ports.UserRepository, principal string, roles ...domain.Role) (*domain.User, error) {
	u, err := users.FindByPrincipal(ctx, principal)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !u.IsActive() {
		return nil, domain.ErrUnauthorized
	}
	if len(roles) > 0 && !u.HasRole(roles...) {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

// internalStaffRoles are the roles allowed to run internal task operations
// (estimates, partner assignment).
var internalStaffRoles = []domain.Role{
	domain.RoleAsistenmu,
	domain.RoleConcierge,
	domain.RoleAdmin,
	domain.RoleSuperadmin,
}

// nopAudit discards events; used when no journal is wired (tests).
type nopAudit struct{}

func (nopAudit) Publish(domain.AuditEvent) {}

// auditOrNop guards against a nil publisher so services can always publish.
func auditOrNop(p ports.AuditPublisher) ports.AuditPublisher {
	if p == nil {
		return nopAudit{}
	}
	return p
}
