package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// LayananService implements the service-ledger use cases.
type LayananService struct {
	layanan ports.LayananRepository
	users   ports.UserRepository
	audit   ports.AuditPublisher
	log     zerolog.Logger
}

func NewLayananService(layanan ports.LayananRepository, users ports.UserRepository, audit ports.AuditPublisher, log zerolog.Logger) *LayananService {
	return &LayananService{layanan: layanan, users: users, audit: auditOrNop(audit), log: log}
}

// Activate creates an active layanan for a client. 1 unit buys 2 effective
// hours; the on-hold pool starts empty.
func (s *LayananService) Activate(ctx context.Context, actor string, in ports.ActivateLayananInput) (*domain.Layanan, error) {
	staff, err := requireActor(ctx, s.users, actor, domain.RoleFinance, domain.RoleAdmin, domain.RoleSuperadmin)
	if err != nil {
		return nil, err
	}
	if in.Units < 1 || in.PricePerUnit <= 0 {
		return nil, domain.ErrInvalidCredentials
	}
	client, err := s.users.FindByPrincipal(ctx, in.ClientID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	if !client.HasRole(domain.RoleClient) {
		return nil, domain.ErrInvalidRole
	}

	now := time.Now().UTC()
	hours := in.Units * domain.HoursPerUnit
	l := &domain.Layanan{
		ID:              uuid.NewString(),
		ClientID:        client.Principal,
		Type:            in.Type,
		ResourceType:    in.ResourceType,
		Status:          domain.LayananActive,
		PricePerUnit:    in.PricePerUnit,
		SaldoOriginal:   hours,
		SaldoJamEfektif: hours,
		JamOnHold:       0,
		Deadline:        in.Deadline,
		AsistenmuID:     in.AsistenmuID,
		Scope:           in.Scope,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.layanan.Create(ctx, l); err != nil {
		s.log.Error().Err(err).Str("client_id", l.ClientID).Msg("failed to activate layanan")
		return nil, err
	}

	s.log.Info().
		Str("layanan_id", l.ID).
		Str("client_id", l.ClientID).
		Int64("saldo_jam_efektif", l.SaldoJamEfektif).
		Msg("layanan activated")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "layanan", EntityID: l.ID, Action: "activate",
		Actor: staff.Principal, Detail: string(l.Type), Timestamp: now,
	})
	return l, nil
}

func (s *LayananService) MyLayananAktif(ctx context.Context, clientID string) ([]*domain.Layanan, error) {
	if _, err := requireActor(ctx, s.users, clientID, domain.RoleClient); err != nil {
		return nil, err
	}
	return s.layanan.ListActiveByClient(ctx, clientID)
}

// ClientMainService returns the client's oldest active layanan, the one the
// dashboard treats as primary.
func (s *LayananService) ClientMainService(ctx context.Context, clientID string) (*domain.Layanan, error) {
	if _, err := requireActor(ctx, s.users, clientID, domain.RoleClient); err != nil {
		return nil, err
	}
	all, err := s.layanan.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, domain.ErrLayananNotFound
	}

	main := all[0]
	for _, l := range all[1:] {
		if l.CreatedAt.Before(main.CreatedAt) {
			main = l
		}
	}
	return main, nil
}
