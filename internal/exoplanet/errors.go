package exoplanet

import "errors"

var (
	ErrIOFailure      = errors.New("io failure")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrNotConnected   = errors.New("store not connected")
	ErrQuery          = errors.New("query rejected by store")
	ErrInvalidFilter  = errors.New("invalid filter")
)
