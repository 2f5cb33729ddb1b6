package domain

import (
	"errors"
	"time"
)

// HoursPerUnit is the fixed billing conversion: 1 unit = 2 effective hours.
const HoursPerUnit int64 = 2

// LayananType is the kind of service package sold to a client.
type LayananType string

const (
	LayananReportWriting LayananType = "reportWriting"
	LayananAssistance    LayananType = "assistance"
	LayananDataEntry     LayananType = "dataEntry"
)

// ResourceType distinguishes a dedicated asistenmu from the shared pool.
type ResourceType string

const (
	ResourceDedicated ResourceType = "dedicated"
	ResourceStandard  ResourceType = "standard"
)

// LayananStatus is the lifecycle state of a service package.
type LayananStatus string

const (
	LayananPendingApproval LayananStatus = "pendingApproval"
	LayananActive          LayananStatus = "active"
	LayananDormant         LayananStatus = "dormant"
	LayananDepleted        LayananStatus = "depleted"
)

var (
	ErrLayananNotFound     = errors.New("layanan not found")
	ErrLayananInactive     = errors.New("layanan is not active")
	ErrInsufficientBalance = errors.New("insufficient service balance")
)

// Layanan is a client's purchased service package with an hour balance.
//
// Invariants, enforced atomically by the repository:
//   - SaldoJamEfektif >= 0
//   - JamOnHold <= SaldoJamEfektif (a hold never exceeds the spendable pool)
//   - JamOnHold <= SaldoOriginal
//
// A layanan is never deleted; it becomes dormant or depleted instead.
type Layanan struct {
	ID              string        `json:"id" bson:"_id"`
	ClientID        string        `json:"client_id" bson:"client_id"`
	Type            LayananType   `json:"type" bson:"type"`
	ResourceType    ResourceType  `json:"resource_type" bson:"resource_type"`
	Status          LayananStatus `json:"status" bson:"status"`
	PricePerUnit    int64         `json:"price_per_unit" bson:"price_per_unit"`
	SaldoOriginal   int64         `json:"saldo_original" bson:"saldo_original"`
	SaldoJamEfektif int64         `json:"saldo_jam_efektif" bson:"saldo_jam_efektif"`
	JamOnHold       int64         `json:"jam_on_hold" bson:"jam_on_hold"`
	Deadline        time.Time     `json:"deadline,omitempty" bson:"deadline,omitempty"`
	AsistenmuID     string        `json:"asistenmu_id" bson:"asistenmu_id"`
	Scope           string        `json:"scope,omitempty" bson:"scope,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// Available returns the hours that can still be reserved.
func (l *Layanan) Available() int64 {
	return l.SaldoJamEfektif - l.JamOnHold
}

// Exhausted reports whether the layanan should transition to depleted.
func (l *Layanan) Exhausted() bool {
	return l.SaldoJamEfektif == 0 && l.JamOnHold == 0
}
