package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound              = errors.New("session not found")
	ErrInvalidPages          = errors.New("page count out of range")
	ErrTooManyFiles          = errors.New("attachment limit reached")
	ErrFileTooLarge          = errors.New("attachment exceeds size limit")
	ErrUnsupportedAttachment = errors.New("unsupported attachment kind")
	ErrUnknownAction         = errors.New("unknown action")
)
