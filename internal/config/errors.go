package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure; the message names the key.
	ErrInvalidConfig = errors.New("invalid crease config")
	// ErrLoadConfig wraps failures reading the YAML file or the CREASE_ environment.
	ErrLoadConfig = errors.New("load crease config")
)
