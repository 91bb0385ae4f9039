package service

import (
	"context"
	"errors"
	"testing"

	"github.com/emrgen/sweater/internal/command"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const socrates = `
+ man
Socrates is a man

+ mortal
[man] is mortal

+ syllogism
man
therefore
mortal

#
man
greek
philosopher

@ socrates
man
`

func TestThesisService_Apply(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.TODO()

	results, err := s.Apply(ctx, socrates)
	require.NoError(t, err)
	require.Len(t, results, 5)

	man := domain.Text{Parts: []string{"Socrates is a man"}}.ID()
	mortal := domain.Text{Parts: []string{"", " is mortal"}, References: []oid.ID{man}}.ID()
	syllogism := domain.Relation{From: man, To: mortal, Kind: "therefore"}.ID()

	assert.Equal(t, []oid.ID{man, mortal, syllogism, man, man}, []oid.ID{
		results[0].ID, results[1].ID, results[2].ID, results[3].ID, results[4].ID,
	})
	for i, result := range results {
		assert.Equal(t, i+1, result.Block)
	}
	assert.Equal(t, command.OpSetAlias, results[4].Op)

	thesis, err := s.Get(ctx, "socrates")
	require.NoError(t, err)
	assert.Equal(t, []string{"greek", "philosopher"}, thesis.Tags)

	// the alias moved, references stored as ids are unaffected
	_, err = s.Resolve(ctx, "man")
	assert.ErrorIs(t, err, ErrUnknownThesis)
	thesis, err = s.Get(ctx, "mortal")
	require.NoError(t, err)
	assert.Equal(t, []oid.ID{man}, thesis.Content.Text.References)

	results, err = s.Apply(ctx, "-\nsocrates")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ElementsMatch(t, []oid.ID{man, mortal, syllogism}, results[0].Removed)
	assert.Equal(t, 0, count(t, st))
}

func TestThesisService_ApplyStopsAtFirstFailure(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.TODO()

	results, err := s.Apply(ctx, "+ a\nA is so\n\n+\na\ntherefore\nnobody\n\n+ b\nB is so")
	assert.ErrorIs(t, err, ErrUnknownThesis)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, count(t, st))

	results, err = s.Apply(ctx, "+ b\nB is so\n\n*\nbroken\n\n+ c\nC is so")
	assert.ErrorIs(t, err, command.ErrParse)
	var perr *command.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Block)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, count(t, st))
}

func TestThesisService_ApplyAtomic(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.TODO()

	before, err := st.Revision(ctx)
	require.NoError(t, err)

	_, err = s.ApplyAtomic(ctx, "+ a\nA is so\n\n+ b\nB is so\n\n+\na\nimplies\nb")
	assert.ErrorIs(t, err, ErrUnknownRelationKind)
	assert.Equal(t, 0, count(t, st))

	_, err = s.ApplyAtomic(ctx, "+ a\nA is so\n\n*\nbroken")
	assert.ErrorIs(t, err, command.ErrParse)
	assert.Equal(t, 0, count(t, st))

	after, err := st.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	results, err := s.ApplyAtomic(ctx, socrates)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, 3, count(t, st))

	after, err = st.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestThesisService_Execute(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.TODO()

	_, err := s.Execute(ctx, command.Command{Op: command.OpAdd, Block: 7})
	assert.ErrorIs(t, err, command.ErrParse)
	assert.ErrorIs(t, err, command.ErrUnknownOperation)

	result, err := s.Execute(ctx, command.Command{Op: command.OpAdd, Alias: "a", Text: &domain.TextSource{Parts: []string{"A is so"}}})
	require.NoError(t, err)
	assert.False(t, result.Existed)

	result, err = s.Execute(ctx, command.Command{Op: command.OpTag, Ref: "a", Tags: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, command.OpTag, result.Op)

	ids, err := s.Tagged(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []oid.ID{result.ID}, ids)
}
