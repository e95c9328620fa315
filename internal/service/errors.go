package service

import "errors"

var (
	ErrInvalidTask         = errors.New("invalid task")
	ErrTaskNotFound        = errors.New("task not found")
	ErrOccurrenceNotFound  = errors.New("occurrence not found")
	ErrAlreadyCompleted    = errors.New("occurrence already completed")
	ErrUnknownCadence      = errors.New("unknown cadence")
	ErrAbsenceOverlap      = errors.New("absence overlaps an existing period")
	ErrInvalidAbsenceRange = errors.New("absence end is before its start")
)
