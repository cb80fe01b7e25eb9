package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("frame queue full")
	ErrUnavailable  = errors.New("service shutting down")
	ErrMissingMatch = errors.New("missing match id")
)
