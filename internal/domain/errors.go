package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific sentinels below wrap one of these so callers can
// classify with errors.Is and the transport layer can pick a status code.
var (
	ErrValidation  = errors.New("validation failed")
	ErrAuth        = errors.New("authentication failed")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrConflict    = errors.New("conflict")
)

var (
	// ErrEmptyMessage is returned when a message text is empty after trimming.
	ErrEmptyMessage = fmt.Errorf("%w: message text is required", ErrValidation)
	// ErrMissingRecipient is returned when a send request names no recipient.
	ErrMissingRecipient = fmt.Errorf("%w: recipient is required", ErrValidation)
	// ErrEmptyQuestion is returned when a doubt carries no question text.
	ErrEmptyQuestion = fmt.Errorf("%w: question is required", ErrValidation)
	// ErrEmptyComment is returned when a submission comment is blank.
	ErrEmptyComment = fmt.Errorf("%w: comment is required", ErrValidation)

	// ErrUserNotFound indicates an unknown user id.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	// ErrTestNotFound indicates the referenced test does not exist or is not
	// owned by the caller.
	ErrTestNotFound = fmt.Errorf("%w: test", ErrNotFound)
	// ErrSubmissionNotFound indicates an unknown submission id.
	ErrSubmissionNotFound = fmt.Errorf("%w: submission", ErrNotFound)
	// ErrNotificationNotFound indicates the notification is absent or owned
	// by another user. Ownership is enforced by filtering on the caller.
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)
	// ErrDoubtNotFound indicates an unknown doubt id.
	ErrDoubtNotFound = fmt.Errorf("%w: doubt", ErrNotFound)

	// ErrTestNotLive is returned when submitting to a missing or unpublished
	// test. The operation is well-formed but domain-blocked.
	ErrTestNotLive = fmt.Errorf("%w: test is not accepting submissions", ErrUnavailable)
	// ErrAIUnavailable is returned when the AI collaborator is not configured
	// or fails upstream.
	ErrAIUnavailable = fmt.Errorf("%w: AI service", ErrUnavailable)

	// ErrInvalidToken is returned when a credential cannot be resolved to an
	// identity.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrAuth)
	// ErrNotAssignedTutor is returned when a tutor acts on a doubt assigned
	// to someone else.
	ErrNotAssignedTutor = fmt.Errorf("%w: doubt is assigned to another tutor", ErrAuth)
)
