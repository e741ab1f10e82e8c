package domain

import (
	"testing"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusPendingApproval, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusApproved, false},
		{StatusPendingApproval, StatusApproved, true},
		{StatusPendingApproval, StatusRejected, true},
		{StatusPendingApproval, StatusCancelled, true},
		{StatusPendingApproval, StatusScheduled, false},
		{StatusApproved, StatusScheduled, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusSending, false},
		{StatusScheduled, StatusSending, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusSent, false},
		{StatusSending, StatusSent, true},
		{StatusSending, StatusCancelled, false},
		{StatusSent, StatusDraft, false},
		{StatusCancelled, StatusDraft, false},
		{StatusRejected, StatusPendingApproval, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTransitionRejectsDisallowedMove(t *testing.T) {
	t.Parallel()

	_, err := Transition(StatusSent, StatusDraft)
	if err == nil {
		t.Fatal("expected error for sent -> draft")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeBroadcastInvalidTransition {
		t.Fatalf("code = %v, want %v", code, apperrors.CodeBroadcastInvalidTransition)
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	_, err := Transition(Status("archived"), StatusSent)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeBroadcastInvalidTransition {
		t.Fatalf("code = %v, want %v", code, apperrors.CodeBroadcastInvalidTransition)
	}
}

func TestTransitionAllowsLifecyclePath(t *testing.T) {
	t.Parallel()

	path := []Status{StatusPendingApproval, StatusApproved, StatusScheduled, StatusSending, StatusSent}
	current := StatusDraft
	for _, next := range path {
		got, err := Transition(current, next)
		if err != nil {
			t.Fatalf("transition %s -> %s: %v", current, next, err)
		}
		current = got
	}
	if current != StatusSent {
		t.Fatalf("final status = %s, want %s", current, StatusSent)
	}
}

func TestValidStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusDraft, StatusPendingApproval, StatusApproved, StatusScheduled, StatusSending, StatusSent, StatusCancelled, StatusRejected} {
		if !ValidStatus(status) {
			t.Errorf("ValidStatus(%s) = false", status)
		}
	}
	if ValidStatus(Status("archived")) {
		t.Error("ValidStatus(archived) = true")
	}
}
