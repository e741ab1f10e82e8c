// Package audit records append-only operational audit events. Writes go
// through the detached task runner so a failed append never surfaces to the
// request that caused it.
package audit

import (
	"context"
	"strings"
	"time"
)

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is one recorded audit entry.
type Event struct {
	ActorUserID string
	TenantID    string
	Action      string
	EntityKind  string
	EntityID    string
	Severity    Severity
	Detail      string
	Timestamp   time.Time
}

// Store is the persistence boundary for audit events.
type Store interface {
	AppendAuditEvent(ctx context.Context, event Event) error
}

// Emitter records audit events.
type Emitter struct {
	store Store
	clock func() time.Time
}

// NewEmitter creates a new audit emitter.
func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if e == nil || e.store == nil {
		return nil
	}
	if strings.TrimSpace(event.Action) == "" {
		return nil
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}
	if event.Timestamp.IsZero() {
		if e.clock == nil {
			event.Timestamp = time.Now().UTC()
		} else {
			event.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendAuditEvent(ctx, event)
}
