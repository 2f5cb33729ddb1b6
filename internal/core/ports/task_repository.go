package ports

import (
	"context"
	"time"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// TaskUpdate is the set of fields applied together with a status transition.
// Nil pointer fields are left untouched.
type TaskUpdate struct {
	Status            domain.TaskStatus
	History           domain.TaskHistoryEntry
	EstimasiJam       *int64
	EstimasiDisetujui *bool
	InternalData      *domain.InternalData
	CompletedAt       *time.Time
}

// TaskRepository defines persistence for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Task, error)

	// Transition atomically applies update iff the task is currently in
	// expect, appending the history entry. Returns domain.ErrIllegalTransition
	// when the task moved out of expect concurrently, domain.ErrTaskNotFound
	// when the task does not exist.
	Transition(ctx context.Context, id string, expect domain.TaskStatus, update TaskUpdate) error
}
