package storage

import "errors"

var (
	// ErrCredentialNotFound is returned when a provider has no stored
	// credential
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrRecordNotFound is returned when a generation record is not found
	ErrRecordNotFound = errors.New("generation record not found")
)
