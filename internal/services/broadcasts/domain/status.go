package domain

import (
	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
)

// Status is one broadcast lifecycle state.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusScheduled       Status = "scheduled"
	StatusSending         Status = "sending"
	StatusSent            Status = "sent"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
)

// transitions lists the allowed lifecycle edges. Cancellation is allowed
// from every state that has not started sending.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusPendingApproval, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {StatusScheduled, StatusCancelled},
	StatusScheduled:       {StatusSending, StatusCancelled},
	StatusSending:         {StatusSent},
	StatusSent:            {},
	StatusCancelled:       {},
	StatusRejected:        {},
}

// ValidStatus reports whether status names a lifecycle state.
func ValidStatus(status Status) bool {
	_, ok := transitions[status]
	return ok
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another.
func CanTransition(from Status, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates one lifecycle move and returns the new status.
func Transition(from Status, to Status) (Status, error) {
	if !ValidStatus(from) || !ValidStatus(to) {
		return "", apperrors.WithMetadata(
			apperrors.CodeBroadcastInvalidTransition,
			"unknown broadcast status",
			map[string]string{"from": string(from), "to": string(to)},
		)
	}
	if !CanTransition(from, to) {
		return "", apperrors.WithMetadata(
			apperrors.CodeBroadcastInvalidTransition,
			"broadcast transition not allowed",
			map[string]string{"from": string(from), "to": string(to)},
		)
	}
	return to, nil
}
