package domain

import (
	"encoding/binary"
	"math"

	"github.com/emrgen/sweater/internal/oid"
)

// RelationSource is a relation as written by a user, endpoints not yet resolved.
type RelationSource struct {
	From string
	Kind string
	To   string
}

// Relation is a typed directed edge between two existing theses.
type Relation struct {
	From oid.ID `json:"from"`
	To   oid.ID `json:"to"`
	Kind string `json:"kind"`
}

func (r Relation) Validate() error {
	return ValidateRelationKind(r.Kind)
}

// Canonical is the binary encoding the relation identity is derived from:
// from, to, then the kind as a varint length prefixed string.
func (r Relation) Canonical() []byte {
	buf := make([]byte, 0, 2*oid.Size+9+len(r.Kind))
	buf = append(buf, r.From[:]...)
	buf = append(buf, r.To[:]...)
	buf = appendVarint(buf, uint64(len(r.Kind)))
	buf = append(buf, r.Kind...)
	return buf
}

func (r Relation) ID() oid.ID {
	return oid.Sum(r.Canonical())
}

// appendVarint writes v in the bincode standard variable integer format.
func appendVarint(buf []byte, v uint64) []byte {
	switch {
	case v < 251:
		return append(buf, byte(v))
	case v <= math.MaxUint16:
		buf = append(buf, 251)
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case v <= math.MaxUint32:
		buf = append(buf, 252)
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	default:
		buf = append(buf, 253)
		return binary.LittleEndian.AppendUint64(buf, v)
	}
}
