package ports

import (
	"context"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// LayananRepository defines persistence for service packages. The balance
// mutations are the only contended writes in the system and must be
// implemented as atomic check-then-update operations on the record.
type LayananRepository interface {
	Create(ctx context.Context, l *domain.Layanan) error
	FindByID(ctx context.Context, id string) (*domain.Layanan, error)
	ListActiveByClient(ctx context.Context, clientID string) ([]*domain.Layanan, error)

	// ReserveHours moves hours into the on-hold pool. Fails with
	// domain.ErrInsufficientBalance unless the layanan is active and
	// saldoJamEfektif - jamOnHold >= hours at the moment of the update.
	ReserveHours(ctx context.Context, id string, hours int64) error

	// ReleaseHours returns held hours to the available pool without burning.
	ReleaseHours(ctx context.Context, id string, hours int64) error

	// BurnHours subtracts hours from both the effective balance and the hold,
	// transitioning the layanan to depleted when nothing remains. Returns the
	// layanan as it stood after the burn.
	BurnHours(ctx context.Context, id string, hours int64) (*domain.Layanan, error)
}
