// Package services holds the business rules of the chat backend: account
// registration and login, the chat directory, direct-chat creation, message
// posting with its membership check, profile edits and idempotent replays.
//
// This file centralizes the service-level error values. Handlers classify
// them with errors.Is and translate them into HTTP statuses; nothing here
// knows about HTTP.
package services

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors below wrap one of these.
var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is the single answer for an unknown username and
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrForbidden means the identity is valid but not a participant.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced chat or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness rule would be broken.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable means the store did not answer within the store timeout.
	ErrUnavailable = errors.New("store unavailable")
)

// Specific errors.
var (
	ErrChatNotFound   = fmt.Errorf("chat %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrUsernameTaken  = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrNotParticipant = fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
	ErrSelfChat       = fmt.Errorf("%w: cannot start a chat with yourself", ErrValidation)
	ErrEmptyMessage   = fmt.Errorf("%w: message is empty", ErrValidation)
	ErrMessageTooLong = fmt.Errorf("%w: message too long", ErrValidation)
)
