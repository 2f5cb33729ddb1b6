package ports

import (
	"context"
	"time"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// FinanceRepository defines persistence for settlement records, the partner
// balance ledger, and withdrawal requests.
type FinanceRepository interface {
	// InsertResult stores the settlement record for a task, exactly once.
	// Returns domain.ErrResultExists on a duplicate task id.
	InsertResult(ctx context.Context, r *domain.FinancialResult) error
	// Returns domain.ErrResultNotFound when the task has not settled.
	FindResultByTask(ctx context.Context, taskID string) (*domain.FinancialResult, error)

	// CreditPartner increases the partner balance and journals the movement.
	CreditPartner(ctx context.Context, partnerID string, amount int64, entryType, reference string) error

	// DebitPartner decreases the partner balance iff it covers amount at the
	// moment of the update; otherwise domain.ErrInsufficientFunds.
	DebitPartner(ctx context.Context, partnerID string, amount int64, reference string) error

	Balance(ctx context.Context, partnerID string) (int64, error)

	CreateWithdraw(ctx context.Context, w *domain.WithdrawRequest) error
	FindWithdraw(ctx context.Context, id string) (*domain.WithdrawRequest, error)
	ListWithdrawsByStatus(ctx context.Context, status domain.WithdrawStatus) ([]*domain.WithdrawRequest, error)

	// ResolveWithdraw atomically moves a pending request to its final status.
	// Returns domain.ErrWithdrawResolved when the request is no longer pending.
	ResolveWithdraw(ctx context.Context, id string, status domain.WithdrawStatus, financeID string, at time.Time) error
}
