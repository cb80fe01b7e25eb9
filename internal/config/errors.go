package config

import "errors"

var (
	// ErrInvalidConfig marks a value that failed validation.
	ErrInvalidConfig = errors.New("config: invalid value")
	// ErrLoadConfig marks a source, file or environment, that could not be read.
	ErrLoadConfig = errors.New("config: load failed")
)
