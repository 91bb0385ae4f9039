package oid

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Size is the number of bytes in an ID.
const Size = 16

// EncodedLen is the length of the text form of an ID.
var EncodedLen = encoding.EncodedLen(Size)

var encoding = base64.RawURLEncoding.Strict()

// ErrMalformedIdentifier is returned when a string is not a valid ID text form.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// ID is a content derived identifier. The hash function and the byte layout
// are part of the stored data format and must not change.
type ID [Size]byte

// Nil is the zero ID, never produced by Sum for stored content.
var Nil ID

// Sum derives the ID of the given canonical content bytes.
func Sum(data []byte) ID {
	h := xxh3.Hash128(data)

	var id ID
	binary.BigEndian.PutUint64(id[:8], h.Hi)
	binary.BigEndian.PutUint64(id[8:], h.Lo)
	return id
}

// Parse decodes the text form of an ID.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != EncodedLen {
		return id, fmt.Errorf("%w: %q has length %d, expected %d", ErrMalformedIdentifier, s, len(s), EncodedLen)
	}

	n, err := encoding.Decode(id[:], []byte(s))
	if err != nil || n != Size {
		return id, fmt.Errorf("%w: %q is not url-safe base64", ErrMalformedIdentifier, s)
	}

	return id, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	return encoding.EncodeToString(id[:])
}

func (id ID) IsNil() bool {
	return id == Nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Strings returns the text form of every id.
func Strings(ids []ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
