package ports

import (
	"context"
	"time"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// ActivateLayananInput carries the internal "activate service" action.
type ActivateLayananInput struct {
	ClientID     string
	AsistenmuID  string
	Type         domain.LayananType
	ResourceType domain.ResourceType
	Units        int64
	PricePerUnit int64
	Deadline     time.Time
	Scope        string
}

// LayananService exposes the service-ledger use cases.
type LayananService interface {
	// Activate creates an active layanan with units * 2 effective hours.
	// Restricted to finance/admin/superadmin actors.
	Activate(ctx context.Context, actor string, in ActivateLayananInput) (*domain.Layanan, error)

	// MyLayananAktif lists the caller's active service packages.
	MyLayananAktif(ctx context.Context, clientID string) ([]*domain.Layanan, error)

	// ClientMainService returns the client's primary (oldest active) layanan.
	ClientMainService(ctx context.Context, clientID string) (*domain.Layanan, error)
}
