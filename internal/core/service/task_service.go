package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// TaskService drives the task lifecycle state machine and the settlement
// that fires at completion.
type TaskService struct {
	tasks   ports.TaskRepository
	layanan ports.LayananRepository
	users   ports.UserRepository
	finance ports.FinanceRepository
	audit   ports.AuditPublisher
	log     zerolog.Logger
}

func NewTaskService(
	tasks ports.TaskRepository,
	layanan ports.LayananRepository,
	users ports.UserRepository,
	finance ports.FinanceRepository,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:   tasks,
		layanan: layanan,
		users:   users,
		finance: finance,
		audit:   auditOrNop(audit),
		log:     log,
	}
}

// CreateTask reserves one unit's worth of hours and creates the task in
// Requested. The reservation is the atomic admission check: when two clients
// race for the last unit, the repository's conditional update lets exactly
// one through.
func (s *TaskService) CreateTask(ctx context.Context, actor string, in ports.CreateTaskInput) (*domain.Task, error) {
	client, err := requireActor(ctx, s.users, actor, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	if in.ClientID != "" && in.ClientID != client.Principal {
		return nil, domain.ErrUnauthorized
	}

	l, err := s.layanan.FindByID(ctx, in.LayananID)
	if err != nil {
		return nil, err
	}
	if l.ClientID != client.Principal {
		return nil, domain.ErrUnauthorized
	}
	if l.Status != domain.LayananActive {
		return nil, domain.ErrLayananInactive
	}

	reserve := domain.HoursPerUnit
	if err := s.layanan.ReserveHours(ctx, l.ID, reserve); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.Task{
		ID:               uuid.NewString(),
		ClientID:         client.Principal,
		LayananID:        l.ID,
		Judul:            in.Judul,
		DetailPermintaan: in.DetailPermintaan,
		Status:           domain.TaskRequested,
		JamReserved:      reserve,
		CreatedAt:        now,
		StatusHistory: []domain.TaskHistoryEntry{
			{Status: domain.TaskRequested, Timestamp: now, Actor: client.Principal},
		},
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		// Compensate: the admission reservation must not leak.
		if relErr := s.layanan.ReleaseHours(ctx, l.ID, reserve); relErr != nil {
			s.log.Error().Err(relErr).Str("layanan_id", l.ID).Msg("failed to release hours after create failure")
		}
		return nil, err
	}

	s.log.Info().Str("task_id", t.ID).Str("client_id", t.ClientID).Str("layanan_id", l.ID).Msg("task created")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: t.ID, Action: "create",
		Actor: client.Principal, Detail: t.Judul, Timestamp: now,
	})
	return t, nil
}

// InputEstimasiAM sets the estimated hours and sends the task to the client
// for estimate approval.
func (s *TaskService) InputEstimasiAM(ctx context.Context, actor, taskID string, estimasiJam int64) error {
	staff, err := requireActor(ctx, s.users, actor, internalStaffRoles...)
	if err != nil {
		return err
	}
	if estimasiJam <= 0 {
		return fmt.Errorf("%w: estimasi must be positive", domain.ErrIllegalTransition)
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !t.Status.CanTransitionTo(domain.TaskAwaitingClientApproval) {
		return fmt.Errorf("%w (from %s)", domain.ErrIllegalTransition, t.Status)
	}

	now := time.Now().UTC()
	err = s.tasks.Transition(ctx, taskID, t.Status, ports.TaskUpdate{
		Status:      domain.TaskAwaitingClientApproval,
		History:     domain.TaskHistoryEntry{Status: domain.TaskAwaitingClientApproval, Timestamp: now, Actor: staff.Principal},
		EstimasiJam: &estimasiJam,
	})
	if err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: taskID, Action: "input_estimasi",
		Actor: staff.Principal, Detail: fmt.Sprintf("%d jam", estimasiJam), Timestamp: now,
	})
	return nil
}

// ApproveEstimasiClient records the client's estimate approval. The task only
// advances to PendingPartner once a partner has been delegated; otherwise it
// stays queued in AwaitingClientApproval with the approval flag set.
func (s *TaskService) ApproveEstimasiClient(ctx context.Context, actor, taskID string) error {
	client, err := requireActor(ctx, s.users, actor, domain.RoleClient)
	if err != nil {
		return err
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.ClientID != client.Principal {
		return domain.ErrUnauthorized
	}
	if t.Status != domain.TaskAwaitingClientApproval {
		return fmt.Errorf("%w (from %s)", domain.ErrIllegalTransition, t.Status)
	}
	if t.EstimasiJam <= 0 {
		return domain.ErrEstimasiNotSet
	}

	next := domain.TaskAwaitingClientApproval
	if t.InternalData != nil {
		next = domain.TaskPendingPartner
	}

	now := time.Now().UTC()
	approved := true
	err = s.tasks.Transition(ctx, taskID, t.Status, ports.TaskUpdate{
		Status:            next,
		History:           domain.TaskHistoryEntry{Status: next, Timestamp: now, Actor: client.Principal},
		EstimasiDisetujui: &approved,
	})
	if err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: taskID, Action: "approve_estimasi",
		Actor: client.Principal, Timestamp: now,
	})
	return nil
}

// AssignPartner populates the internal delegation data. Reassignment after a
// partner rejection goes through the same path with a new candidate.
func (s *TaskService) AssignPartner(ctx context.Context, actor string, in ports.AssignPartnerInput) error {
	staff, err := requireActor(ctx, s.users, actor, internalStaffRoles...)
	if err != nil {
		return err
	}

	partner, err := s.users.FindByPrincipal(ctx, in.PartnerID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	if !partner.IsActive() || !partner.HasRole(domain.RolePartner) {
		return domain.ErrInvalidRole
	}

	t, err := s.tasks.FindByID(ctx, in.TaskID)
	if err != nil {
		return err
	}

	var next domain.TaskStatus
	switch t.Status {
	case domain.TaskAwaitingClientApproval:
		// Before the client signs off on the estimate the delegation is
		// staged only; the status moves once the approval lands.
		next = domain.TaskAwaitingClientApproval
		if t.EstimasiDisetujui {
			next = domain.TaskPendingPartner
		}
	case domain.TaskRejectedByPartner:
		next = domain.TaskPendingPartner
	default:
		return fmt.Errorf("%w (from %s)", domain.ErrIllegalTransition, t.Status)
	}

	now := time.Now().UTC()
	data := &domain.InternalData{
		PartnerID:         partner.Principal,
		ScopeKerja:        in.ScopeKerja,
		Deadline:          in.Deadline,
		LinkDriveInternal: in.LinkDriveInternal,
		JamEfektif:        in.JamEfektif,
		LevelPartner:      in.LevelPartner,
	}
	err = s.tasks.Transition(ctx, in.TaskID, t.Status, ports.TaskUpdate{
		Status:       next,
		History:      domain.TaskHistoryEntry{Status: next, Timestamp: now, Actor: staff.Principal},
		InternalData: data,
	})
	if err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: in.TaskID, Action: "assign_partner",
		Actor: staff.Principal, Detail: partner.Principal, Timestamp: now,
	})
	return nil
}

// ResponPartner records the assigned partner's decision. Rejection keeps the
// reserved hours on hold pending reassignment to a different partner.
func (s *TaskService) ResponPartner(ctx context.Context, actor, taskID string, accept bool) error {
	partner, err := requireActor(ctx, s.users, actor, domain.RolePartner)
	if err != nil {
		return err
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.InternalData == nil {
		return domain.ErrPartnerNotAssigned
	}
	if t.InternalData.PartnerID != partner.Principal {
		return domain.ErrUnauthorized
	}
	if t.Status != domain.TaskPendingPartner {
		return fmt.Errorf("%w (from %s)", domain.ErrIllegalTransition, t.Status)
	}

	next := domain.TaskOnProgress
	action := "partner_accept"
	if !accept {
		next = domain.TaskRejectedByPartner
		action = "partner_reject"
	}

	now := time.Now().UTC()
	err = s.tasks.Transition(ctx, taskID, t.Status, ports.TaskUpdate{
		Status:  next,
		History: domain.TaskHistoryEntry{Status: next, Timestamp: now, Actor: partner.Principal},
	})
	if err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: taskID, Action: action,
		Actor: partner.Principal, Timestamp: now,
	})
	return nil
}

// UpdateStatus applies a generic transition for the working cycle
// (OnProgress -> InQA -> ClientReview -> Revision -> OnProgress). Completion
// never goes through here; it requires settlement via CompleteTask.
func (s *TaskService) UpdateStatus(ctx context.Context, actor, taskID string, next domain.TaskStatus) error {
	u, err := requireActor(ctx, s.users, actor)
	if err != nil {
		return err
	}
	if !domain.ValidTaskStatus(next) || next == domain.TaskCompleted {
		return domain.ErrIllegalTransition
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !s.actorMayDrive(t, u) {
		return domain.ErrUnauthorized
	}
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", domain.ErrIllegalTransition, t.Status, next)
	}

	now := time.Now().UTC()
	err = s.tasks.Transition(ctx, taskID, t.Status, ports.TaskUpdate{
		Status:  next,
		History: domain.TaskHistoryEntry{Status: next, Timestamp: now, Actor: u.Principal},
	})
	if err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: taskID, Action: "update_status",
		Actor: u.Principal, Detail: string(next), Timestamp: now,
	})
	return nil
}

// actorMayDrive reports whether u participates in the task: owning client,
// assigned partner, or internal staff.
func (s *TaskService) actorMayDrive(t *domain.Task, u *domain.User) bool {
	if t.ClientID == u.Principal {
		return true
	}
	if t.InternalData != nil && t.InternalData.PartnerID == u.Principal {
		return true
	}
	return u.HasRole(internalStaffRoles...)
}

// CompleteTask settles a task that passed client review: it records the
// financial result, burns the held hours, and credits the partner. The status
// transition is the idempotency gate: a second call observes Completed and
// fails with ErrAlreadyCompleted without touching the ledger again. When a
// settlement step fails after the transition, the task is moved back to
// client review so a retry can complete it.
func (s *TaskService) CompleteTask(ctx context.Context, actor, taskID string) (*domain.FinancialResult, error) {
	u, err := requireActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.actorMayDrive(t, u) {
		return nil, domain.ErrUnauthorized
	}
	if t.Status == domain.TaskCompleted {
		return nil, domain.ErrAlreadyCompleted
	}
	if t.Status != domain.TaskClientReview {
		return nil, fmt.Errorf("%w (from %s)", domain.ErrIllegalTransition, t.Status)
	}

	l, err := s.layanan.FindByID(ctx, t.LayananID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.tasks.Transition(ctx, taskID, domain.TaskClientReview, ports.TaskUpdate{
		Status:      domain.TaskCompleted,
		History:     domain.TaskHistoryEntry{Status: domain.TaskCompleted, Timestamp: now, Actor: u.Principal},
		CompletedAt: &now,
	})
	if err != nil {
		// A concurrent completion won the transition.
		if errors.Is(err, domain.ErrIllegalTransition) {
			return nil, domain.ErrAlreadyCompleted
		}
		return nil, err
	}

	result := domain.Settle(taskID, t.JamReserved, l.PricePerUnit, now)
	if err := s.finance.InsertResult(ctx, &result); err != nil {
		if errors.Is(err, domain.ErrResultExists) {
			// A prior attempt recorded the settlement before failing partway.
			// Reuse it so the retry can finish the remaining steps.
			stored, findErr := s.finance.FindResultByTask(ctx, taskID)
			if findErr != nil {
				s.revertCompletion(ctx, taskID, u.Principal)
				return nil, findErr
			}
			result = *stored
		} else {
			s.revertCompletion(ctx, taskID, u.Principal)
			return nil, err
		}
	}

	if _, err := s.layanan.BurnHours(ctx, t.LayananID, t.JamReserved); err != nil {
		s.log.Error().Err(err).Str("task_id", taskID).Str("layanan_id", t.LayananID).Msg("failed to burn reserved hours")
		s.revertCompletion(ctx, taskID, u.Principal)
		return nil, err
	}

	if t.InternalData != nil && result.PartnerFee > 0 {
		if err := s.finance.CreditPartner(ctx, t.InternalData.PartnerID, result.PartnerFee, domain.EntryTaskEarning, taskID); err != nil {
			s.log.Error().Err(err).Str("task_id", taskID).Str("partner_id", t.InternalData.PartnerID).Msg("failed to credit partner fee")
		}
	}

	s.log.Info().
		Str("task_id", taskID).
		Int64("jam_dibakar", result.JamDibakar).
		Int64("jumlah_bayar", result.JumlahBayar).
		Msg("task completed and settled")
	s.audit.Publish(domain.AuditEvent{
		EntityKind: "task", EntityID: taskID, Action: "complete",
		Actor: u.Principal, Detail: fmt.Sprintf("bayar=%d", result.JumlahBayar), Timestamp: now,
	})
	return &result, nil
}

// revertCompletion moves a task that won the completion transition back to
// client review after a settlement step failed, so the task is not frozen in
// Completed with its hours still held.
func (s *TaskService) revertCompletion(ctx context.Context, taskID, actor string) {
	err := s.tasks.Transition(ctx, taskID, domain.TaskCompleted, ports.TaskUpdate{
		Status:  domain.TaskClientReview,
		History: domain.TaskHistoryEntry{Status: domain.TaskClientReview, Timestamp: time.Now().UTC(), Actor: actor},
	})
	if err != nil {
		s.log.Error().Err(err).Str("task_id", taskID).Msg("failed to revert completion after settlement failure")
	}
}

// Settlement returns the financial result of a settled task to anyone who
// participates in it.
func (s *TaskService) Settlement(ctx context.Context, actor, taskID string) (*domain.FinancialResult, error) {
	u, err := requireActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.actorMayDrive(t, u) {
		return nil, domain.ErrUnauthorized
	}

	return s.finance.FindResultByTask(ctx, taskID)
}

// ClientTasks lists a client's tasks with the client-facing status mask
// applied. Internal staff may inspect any client's list.
func (s *TaskService) ClientTasks(ctx context.Context, actor, clientID string) ([]ports.TaskClientView, error) {
	u, err := requireActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if u.Principal != clientID && !u.HasRole(internalStaffRoles...) {
		return nil, domain.ErrUnauthorized
	}

	tasks, err := s.tasks.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	views := make([]ports.TaskClientView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, ports.TaskClientView{
			ID:               t.ID,
			Status:           t.Status.MaskForClient(),
			LayananID:        t.LayananID,
			Judul:            t.Judul,
			DetailPermintaan: t.DetailPermintaan,
			EstimasiJam:      t.EstimasiJam,
			LinkDriveClient:  t.LinkDriveClient,
			InternalData:     t.InternalData,
		})
	}
	return views, nil
}
