package domain

import "github.com/pkg/errors"

var (
	// ErrInvalidSnapshot snapshot rejected before any computation.
	ErrInvalidSnapshot = errors.New("invalid asset snapshot")
	// ErrInsufficientHistory series shorter than an indicator window.
	ErrInsufficientHistory = errors.New("insufficient history")
)
