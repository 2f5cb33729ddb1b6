package ports

import (
	"context"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// FinanceService exposes partner balance and withdrawal use cases.
// Task settlement itself happens inside TaskService.CompleteTask.
type FinanceService interface {
	// RequestWithdraw creates a pending withdrawal, requiring the amount not
	// to exceed the partner's accrued, unwithdrawn balance.
	RequestWithdraw(ctx context.Context, actor string, amount int64) (*domain.WithdrawRequest, error)

	// ApproveWithdraw debits the partner balance and resolves the request.
	// Finance role only.
	ApproveWithdraw(ctx context.Context, actor, requestID string) error

	// RejectWithdraw resolves the request without a debit. Finance role only.
	RejectWithdraw(ctx context.Context, actor, requestID string) error

	// AddPartnerBalance is the manual credit adjustment path, restricted to
	// admin/superadmin actors.
	AddPartnerBalance(ctx context.Context, actor, partnerID string, amount int64) error

	// PartnerBalance returns the partner's current accrued balance.
	PartnerBalance(ctx context.Context, actor, partnerID string) (int64, error)

	// PendingWithdrawals lists unresolved requests for the finance desk.
	PendingWithdrawals(ctx context.Context, actor string) ([]*domain.WithdrawRequest, error)
}
