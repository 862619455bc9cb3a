package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflictingEntity = errors.New("conflicting entity")
	ErrAlreadySigned     = errors.New("already signed")
	ErrAlreadyResponded  = errors.New("already responded")
	ErrValidation        = errors.New("invalid input")
	ErrPermissionDenied  = errors.New("permission denied")
)
