package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrUserMismatch    = errors.New("session belongs to another user")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrEmptyReply      = errors.New("llm returned empty reply")
)
