package store

import (
	"context"
	"errors"

	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/oid"
)

var (
	// ErrNotFound is returned when a thesis or alias does not exist.
	ErrNotFound = errors.New("not found")
	// ErrReadOnly is returned when a write is attempted inside a read transaction.
	ErrReadOnly = errors.New("read only transaction")
)

type Store interface {
	ThesisStore
	// Transaction runs f in a serializable write transaction, committed when f returns nil.
	Transaction(ctx context.Context, f func(tx Store) error) error
	// ReadTransaction runs f in a read only snapshot transaction.
	ReadTransaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type ThesisStore interface {
	// GetThesis retrieves a thesis by ID.
	GetThesis(ctx context.Context, id oid.ID) (*domain.Thesis, error)
	// HasThesis reports whether a thesis with the ID exists.
	HasThesis(ctx context.Context, id oid.ID) (bool, error)
	// PutThesis inserts or updates a thesis, keyed by its derived ID.
	PutThesis(ctx context.Context, thesis *domain.Thesis) error
	// DeleteThesis deletes a thesis with its tags and its outgoing references.
	DeleteThesis(ctx context.Context, id oid.ID) error
	// FindByAlias retrieves the ID of the thesis bound to alias.
	FindByAlias(ctx context.Context, alias string) (oid.ID, error)
	// FindByTag retrieves the IDs of theses tagged with tag.
	FindByTag(ctx context.Context, tag string) ([]oid.ID, error)
	// FindRelationsMentioning retrieves relations having id as an endpoint.
	FindRelationsMentioning(ctx context.Context, id oid.ID) ([]oid.ID, error)
	// FindReferencing retrieves texts embedding a reference to id.
	FindReferencing(ctx context.Context, id oid.ID) ([]oid.ID, error)
	// EachThesis calls f for every thesis, loading them lazily in batches.
	EachThesis(ctx context.Context, f func(thesis *domain.Thesis) error) error
	// Revision returns the number of committed write transactions.
	Revision(ctx context.Context) (int64, error)
	// Instance returns the identifier of the database, stable across restarts.
	Instance(ctx context.Context) (string, error)
}
