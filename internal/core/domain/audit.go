package domain

import "time"

// AuditEvent is an append-only record of a mutating operation, persisted
// asynchronously by the journal dispatcher.
type AuditEvent struct {
	EntityKind string    `json:"entity_kind" bson:"entity_kind"`
	EntityID   string    `json:"entity_id" bson:"entity_id"`
	Action     string    `json:"action" bson:"action"`
	Actor      string    `json:"actor" bson:"actor"`
	Detail     string    `json:"detail,omitempty" bson:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}
