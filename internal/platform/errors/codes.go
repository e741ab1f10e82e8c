// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Access errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"

	// Validation errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"

	// Document errors
	CodeDocumentEmptyTitle Code = "DOCUMENT_EMPTY_TITLE"
	CodeDocumentEmptyBody  Code = "DOCUMENT_EMPTY_BODY"

	// Property errors
	CodePropertyEmptyName     Code = "PROPERTY_EMPTY_NAME"
	CodePropertyInvalidRooms  Code = "PROPERTY_INVALID_ROOMS"
	CodePropertyInvalidLedger Code = "PROPERTY_INVALID_LEDGER"

	// Practice errors
	CodePracticeEmptyTitle      Code = "PRACTICE_EMPTY_TITLE"
	CodePracticeInvalidCategory Code = "PRACTICE_INVALID_CATEGORY"
	CodePracticeInvalidPhase    Code = "PRACTICE_INVALID_PHASE"

	// Assessment errors
	CodeAssessmentNoAnswers      Code = "ASSESSMENT_NO_ANSWERS"
	CodeAssessmentUnknownPattern Code = "ASSESSMENT_UNKNOWN_PATTERN"
	CodeAssessmentUnknownKind    Code = "ASSESSMENT_UNKNOWN_KIND"

	// Broadcast errors
	CodeBroadcastEmptySubject       Code = "BROADCAST_EMPTY_SUBJECT"
	CodeBroadcastNoRecipients       Code = "BROADCAST_NO_RECIPIENTS"
	CodeBroadcastInvalidTransition  Code = "BROADCAST_INVALID_STATUS_TRANSITION"
	CodeBroadcastScheduleInPast     Code = "BROADCAST_SCHEDULE_IN_PAST"
	CodeBroadcastDeliveryUnderway   Code = "BROADCAST_DELIVERY_UNDERWAY"
	CodeBroadcastApprovalSelfReview Code = "BROADCAST_APPROVAL_SELF_REVIEW"

	// Binder errors
	CodeBinderEmptyTitle  Code = "BINDER_EMPTY_TITLE"
	CodeBinderNoSections  Code = "BINDER_NO_SECTIONS"
	CodeBinderNotRendered Code = "BINDER_NOT_RENDERED"

	// Preference errors
	CodePreferenceEmptyKey Code = "PREFERENCE_EMPTY_KEY"

	// Edge/upstream errors
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamBadPayload  Code = "UPSTREAM_BAD_PAYLOAD"
)

// HTTPStatus maps an error code to the HTTP status the API surfaces.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict,
		CodeBroadcastInvalidTransition,
		CodeBroadcastDeliveryUnderway:
		return http.StatusConflict
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case CodeUpstreamBadPayload:
		return http.StatusBadGateway
	case CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
