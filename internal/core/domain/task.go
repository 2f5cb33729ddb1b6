package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lifecycle state of a task as it moves between
// client, asistenmu, and partner actors.
type TaskStatus string

const (
	TaskRequested              TaskStatus = "Requested"
	TaskAwaitingClientApproval TaskStatus = "AwaitingClientApproval"
	TaskPendingPartner         TaskStatus = "PendingPartner"
	TaskRejectedByPartner      TaskStatus = "RejectedByPartner"
	TaskOnProgress             TaskStatus = "OnProgress"
	TaskInQA                   TaskStatus = "InQA"
	TaskClientReview           TaskStatus = "ClientReview"
	TaskRevision               TaskStatus = "Revision"
	TaskCompleted              TaskStatus = "Completed"
)

// StatusDidelegasikan is the client-facing label that collapses
// {PendingPartner, RejectedByPartner} to hide partner-assignment churn.
// View-layer only; the underlying states stay distinct.
const StatusDidelegasikan = "Sedang Didelegasikan"

// validTaskTransitions defines the allowed state machine transitions.
// Completed is deliberately absent as a target: a task only completes
// through settlement, never through a generic status update.
var validTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskRequested:              {TaskAwaitingClientApproval},
	TaskAwaitingClientApproval: {TaskPendingPartner},
	TaskPendingPartner:         {TaskOnProgress, TaskRejectedByPartner},
	TaskRejectedByPartner:      {TaskPendingPartner},
	TaskOnProgress:             {TaskInQA},
	TaskInQA:                   {TaskClientReview},
	TaskClientReview:           {TaskRevision, TaskCompleted},
	TaskRevision:               {TaskOnProgress},
}

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrIllegalTransition = errors.New("illegal task status transition")
	ErrAlreadyCompleted  = errors.New("task already completed")
	ErrEstimasiNotSet    = errors.New("estimasi has not been set")
	ErrPartnerNotAssigned = errors.New("no partner assigned to task")
)

// CanTransitionTo reports whether a transition from s to next is valid.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range validTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidTaskStatus reports whether s is a member of the status enum.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskRequested, TaskAwaitingClientApproval, TaskPendingPartner,
		TaskRejectedByPartner, TaskOnProgress, TaskInQA, TaskClientReview,
		TaskRevision, TaskCompleted:
		return true
	}
	return false
}

// MaskForClient returns the client-facing display label for s.
func (s TaskStatus) MaskForClient() string {
	if s == TaskPendingPartner || s == TaskRejectedByPartner {
		return StatusDidelegasikan
	}
	return string(s)
}

// InternalData is populated once an asistenmu delegates the task to a partner.
type InternalData struct {
	PartnerID        string    `json:"partner_id" bson:"partner_id"`
	ScopeKerja       string    `json:"scope_kerja" bson:"scope_kerja"`
	Deadline         time.Time `json:"deadline" bson:"deadline"`
	LinkDriveInternal string   `json:"link_drive_internal" bson:"link_drive_internal"`
	JamEfektif       int64     `json:"jam_efektif" bson:"jam_efektif"`
	LevelPartner     string    `json:"level_partner" bson:"level_partner"`
}

// TaskHistoryEntry records a single status transition on a task.
type TaskHistoryEntry struct {
	Status    TaskStatus `json:"status" bson:"status"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
	Actor     string     `json:"actor,omitempty" bson:"actor,omitempty"`
}

// Task is the core aggregate root of the lifecycle engine.
type Task struct {
	ID               string             `json:"id" bson:"_id"`
	ClientID         string             `json:"client_id" bson:"client_id"`
	LayananID        string             `json:"layanan_id" bson:"layanan_id"`
	Judul            string             `json:"judul" bson:"judul"`
	DetailPermintaan string             `json:"detail_permintaan" bson:"detail_permintaan"`
	Status           TaskStatus         `json:"status" bson:"status"`
	EstimasiJam      int64              `json:"estimasi_jam" bson:"estimasi_jam"`
	EstimasiDisetujui bool              `json:"estimasi_disetujui" bson:"estimasi_disetujui"`
	JamReserved      int64              `json:"jam_reserved" bson:"jam_reserved"`
	InternalData     *InternalData      `json:"internal_data,omitempty" bson:"internal_data,omitempty"`
	LinkDriveClient  string             `json:"link_drive_client,omitempty" bson:"link_drive_client,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	CompletedAt      time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	StatusHistory    []TaskHistoryEntry `json:"status_history" bson:"status_history"`
}
