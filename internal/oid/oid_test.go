package oid

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSum_Deterministic(t *testing.T) {
	a := Sum([]byte("Socrates is a man"))
	b := Sum([]byte("Socrates is a man"))
	c := Sum([]byte("Socrates is mortal"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsNil())
}

func TestEncodedLen(t *testing.T) {
	assert.Equal(t, 22, EncodedLen)
	assert.Len(t, Sum(nil).String(), 22)
}

func TestParse(t *testing.T) {
	id := Sum([]byte("text"))

	tests := []struct {
		name  string
		input string
		want  ID
		err   bool
	}{
		{name: "valid", input: id.String(), want: id},
		{name: "empty", input: "", err: true},
		{name: "too short", input: id.String()[:21], err: true},
		{name: "too long", input: id.String() + "A", err: true},
		{name: "padded", input: id.String()[:20] + "==", err: true},
		{name: "standard alphabet", input: "++++++++++++++++++++++", err: true},
		{name: "non canonical trailing bits", input: "AAAAAAAAAAAAAAAAAAAAAB", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.err {
				assert.True(t, errors.Is(err, ErrMalformedIdentifier), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestID_JSON(t *testing.T) {
	id := Sum([]byte("json"))

	data, err := json.Marshal(map[string]ID{"id": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(data))

	var decoded map[string]ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded["id"])

	assert.Error(t, json.Unmarshal([]byte(`{"id":"nope"}`), &decoded))
}

func TestID_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var id ID
		copy(id[:], rapid.SliceOfN(rapid.Byte(), Size, Size).Draw(t, "bytes"))

		parsed, err := Parse(id.String())
		if err != nil {
			t.Fatalf("parse %q: %v", id.String(), err)
		}
		if parsed != id {
			t.Fatalf("round trip mismatch: %v != %v", parsed, id)
		}
	})
}

func TestID_EncodeDecodedString(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// the last character carries only 2 data bits, the low 4 bits must be zero
		s := rapid.StringMatching(`[A-Za-z0-9_-]{21}[AQgw]`).Draw(t, "encoded")

		id, err := Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if id.String() != s {
			t.Fatalf("encode(decode(%q)) = %q", s, id.String())
		}
	})
}
