package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// FinanceService implements partner withdrawals and balance adjustments.
type FinanceService struct {
	finance ports.FinanceRepository
	users   ports.UserRepository
	audit   ports.AuditPublisher
	log     zerolog.Logger
}

func NewFinanceService(finance ports.FinanceRepository, users ports.UserRepository, audit ports.AuditPublisher, log zerolog.Logger) *FinanceService {
	return &FinanceService{finance: finance, users: users, audit: auditOrNop(audit), log: log}
}

// RequestWithdraw creates a pending withdrawal. The balance check here is a
// courtesy rejection of obviously bad requests; the authoritative guard is
// the conditional debit at approval time.
func (s *FinanceService) RequestWithdraw(ctx context.Context, actor string, amount int64) (*domain.WithdrawRequest, error) {
	partner, err := requireActor(ctx, s.users, actor, domain.RolePartner)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.ErrInsufficientFunds
	}

	balance, err := s.finance.Balance(ctx, partner.Principal)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, domain.ErrInsufficientFunds
	}

	now := time.Now().UTC()
	w := &domain.WithdrawRequest{
		ID:        uuid.NewString(),
		PartnerID: partner.Principal,
		Amount:    amount,
		Status:    domain.WithdrawPending,
		CreatedAt: now,
	}
	if err := s.finance.CreateWithdraw(ctx, w); err != nil {
		return nil, err
	}

	s.log.Info().Str("withdraw_id", w.ID).Str("partner_id", w.PartnerID).Int64("amount", amount).Msg("withdraw requested")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "withdraw", EntityID: w.ID, Action: "request",
		Actor: partner.Principal, Timestamp: now,
	})
	return w, nil
}

// ApproveWithdraw debits the partner and resolves the request. The debit runs
// first: if the balance no longer covers the amount the request stays pending.
func (s *FinanceService) ApproveWithdraw(ctx context.Context, actor, requestID string) error {
	finance, err := requireActor(ctx, s.users, actor, domain.RoleFinance)
	if err != nil {
		return err
	}

	w, err := s.finance.FindWithdraw(ctx, requestID)
	if err != nil {
		return err
	}
	if w.Status != domain.WithdrawPending {
		return domain.ErrWithdrawResolved
	}

	if err := s.finance.DebitPartner(ctx, w.PartnerID, w.Amount, w.ID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.finance.ResolveWithdraw(ctx, requestID, domain.WithdrawApproved, finance.Principal, now); err != nil {
		return err
	}

	s.log.Info().Str("withdraw_id", requestID).Str("finance_id", finance.Principal).Msg("withdraw approved")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "withdraw", EntityID: requestID, Action: "approve",
		Actor: finance.Principal, Timestamp: now,
	})
	return nil
}

// RejectWithdraw resolves the request without a debit.
func (s *FinanceService) RejectWithdraw(ctx context.Context, actor, requestID string) error {
	finance, err := requireActor(ctx, s.users, actor, domain.RoleFinance)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.finance.ResolveWithdraw(ctx, requestID, domain.WithdrawRejected, finance.Principal, now); err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "withdraw", EntityID: requestID, Action: "reject",
		Actor: finance.Principal, Timestamp: now,
	})
	return nil
}

// AddPartnerBalance is the manual correction path.
func (s *FinanceService) AddPartnerBalance(ctx context.Context, actor, partnerID string, amount int64) error {
	admin, err := requireActor(ctx, s.users, actor, domain.RoleAdmin, domain.RoleSuperadmin)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return domain.ErrInsufficientFunds
	}

	partner, err := s.users.FindByPrincipal(ctx, partnerID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	if !partner.HasRole(domain.RolePartner) {
		return domain.ErrInvalidRole
	}

	if err := s.finance.CreditPartner(ctx, partner.Principal, amount, domain.EntryAdjustment, admin.Principal); err != nil {
		return err
	}

	s.log.Info().Str("partner_id", partnerID).Int64("amount", amount).Str("by", admin.Principal).Msg("partner balance adjusted")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "balance", EntityID: partnerID, Action: "adjust",
		Actor: admin.Principal, Timestamp: time.Now().UTC(),
	})
	return nil
}

// PartnerBalance returns the accrued balance. Partners may only read their
// own; finance/admin/superadmin may read anyone's.
func (s *FinanceService) PartnerBalance(ctx context.Context, actor, partnerID string) (int64, error) {
	u, err := requireActor(ctx, s.users, actor)
	if err != nil {
		return 0, err
	}
	if u.Principal != partnerID && !u.HasRole(domain.RoleFinance, domain.RoleAdmin, domain.RoleSuperadmin) {
		return 0, domain.ErrUnauthorized
	}
	return s.finance.Balance(ctx, partnerID)
}

// PendingWithdrawals lists unresolved requests for the finance desk.
func (s *FinanceService) PendingWithdrawals(ctx context.Context, actor string) ([]*domain.WithdrawRequest, error) {
	if _, err := requireActor(ctx, s.users, actor, domain.RoleFinance, domain.RoleAdmin, domain.RoleSuperadmin); err != nil {
		return nil, err
	}
	return s.finance.ListWithdrawsByStatus(ctx, domain.WithdrawPending)
}
