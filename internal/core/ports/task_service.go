package ports

import (
	"context"
	"time"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// CreateTaskInput carries a client's task request.
type CreateTaskInput struct {
	ClientID         string
	LayananID        string
	Judul            string
	DetailPermintaan string
}

// AssignPartnerInput carries the asistenmu delegation of a task to a partner.
type AssignPartnerInput struct {
	TaskID            string
	PartnerID         string
	ScopeKerja        string
	Deadline          time.Time
	LinkDriveInternal string
	JamEfektif        int64
	LevelPartner      string
}

// TaskClientView is the client-facing projection of a task. Status carries
// the masked display label ("Sedang Didelegasikan" while the task churns
// between partner candidates).
type TaskClientView struct {
	ID               string
	Status           string
	LayananID        string
	Judul            string
	DetailPermintaan string
	EstimasiJam      int64
	LinkDriveClient  string
	InternalData     *domain.InternalData
}

// TaskService drives the task lifecycle state machine.
type TaskService interface {
	// CreateTask reserves one unit's worth of hours on the layanan and
	// creates the task in Requested. Fails with domain.ErrInsufficientBalance
	// when the layanan cannot cover the reservation.
	CreateTask(ctx context.Context, actor string, in CreateTaskInput) (*domain.Task, error)

	// InputEstimasiAM sets the estimated hours (internal staff only) and
	// moves Requested -> AwaitingClientApproval.
	InputEstimasiAM(ctx context.Context, actor, taskID string, estimasiJam int64) error

	// ApproveEstimasiClient records the client's estimate approval. The task
	// moves to PendingPartner once a partner has been assigned; until then it
	// stays queued in AwaitingClientApproval.
	ApproveEstimasiClient(ctx context.Context, actor, taskID string) error

	// AssignPartner populates the internal data (internal staff only).
	AssignPartner(ctx context.Context, actor string, in AssignPartnerInput) error

	// ResponPartner records the assigned partner's accept/reject decision.
	// Rejection keeps the reserved hours held pending reassignment.
	ResponPartner(ctx context.Context, actor, taskID string, accept bool) error

	// UpdateStatus applies a generic transition, validated against the state
	// graph. Completed is never reachable through this path.
	UpdateStatus(ctx context.Context, actor, taskID string, next domain.TaskStatus) error

	// CompleteTask burns the reserved hours, settles fees, and freezes the
	// task. A second call fails with domain.ErrAlreadyCompleted without
	// touching the ledger.
	CompleteTask(ctx context.Context, actor, taskID string) (*domain.FinancialResult, error)

	// Settlement returns the financial result recorded for a completed task.
	// Fails with domain.ErrResultNotFound while the task is unsettled.
	Settlement(ctx context.Context, actor, taskID string) (*domain.FinancialResult, error)

	// ClientTasks lists the client's tasks with masked statuses.
	ClientTasks(ctx context.Context, actor, clientID string) ([]TaskClientView, error)
}
