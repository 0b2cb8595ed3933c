package services

import "errors"

var (
	// ErrValidation marks malformed caller input. Returned before any external call is made.
	ErrValidation = errors.New("validation error")
	// ErrUpstream marks a failed completion, embedding or vector store call, including
	// completion output that does not parse into the expected shape.
	ErrUpstream = errors.New("upstream service error")
	// ErrConfiguration marks invalid service parameters such as overlap >= chunk size.
	ErrConfiguration = errors.New("configuration error")
)
