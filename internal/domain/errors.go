package domain

import "errors"

var (
	// ErrInvalidText is returned when text content has forbidden characters or malformed references.
	ErrInvalidText = errors.New("invalid text")
	// ErrInvalidTag is returned when a tag is not a sequence of word characters.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrInvalidAlias is returned when an alias is empty or has whitespace or brackets.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrInvalidRelationKind is returned when a relation kind is not a sequence of words.
	ErrInvalidRelationKind = errors.New("invalid relation kind")
	// ErrInvalidContent is returned when content is neither text nor relation, or both.
	ErrInvalidContent = errors.New("invalid content")
)
