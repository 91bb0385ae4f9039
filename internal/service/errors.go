package service

import (
	"errors"
	"fmt"

	"github.com/emrgen/sweater/internal/command"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/oid"
)

var (
	// ErrUnknownReference is returned when a reference inside a text resolves to no thesis.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrUnknownThesis is returned when a command targets a thesis that does not exist.
	ErrUnknownThesis = errors.New("unknown thesis")
	// ErrUnknownRelationKind is returned when a relation kind is malformed or not allowed.
	ErrUnknownRelationKind = errors.New("unknown relation kind")
	// ErrStoreFailure is returned when the underlying store fails.
	ErrStoreFailure = errors.New("store failure")
)

var known = []error{
	ErrUnknownReference,
	ErrUnknownThesis,
	ErrUnknownRelationKind,
	ErrStoreFailure,
	command.ErrParse,
	oid.ErrMalformedIdentifier,
	domain.ErrInvalidText,
	domain.ErrInvalidTag,
	domain.ErrInvalidAlias,
	domain.ErrInvalidRelationKind,
	domain.ErrInvalidContent,
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

// classify wraps errors from outside the taxonomy, such as a failed commit,
// as store failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range known {
		if errors.Is(err, target) {
			return err
		}
	}
	return storeFailure(err)
}
