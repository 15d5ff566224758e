package domain

import "errors"

var (
	// ErrConfiguration marks missing or invalid external credentials.
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid input")
	// ErrUpstream wraps failures of the inference endpoint or the remote data store.
	ErrUpstream = errors.New("upstream error")
)
