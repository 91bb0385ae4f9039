package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/emrgen/sweater/internal/store"
	"github.com/sirupsen/logrus"
)

// NewThesisService creates a new ThesisService accepting relations of the given kinds.
func NewThesisService(store store.Store, relationKinds []string) *ThesisService {
	return &ThesisService{
		store:         store,
		relationKinds: mapset.NewSet(relationKinds...),
	}
}

// ThesisService applies mutations to the thesis graph. Every mutation runs in
// exactly one write transaction.
type ThesisService struct {
	store         store.Store
	relationKinds mapset.Set[string]
}

// RelationKinds returns the allowed relation kinds, sorted.
func (s *ThesisService) RelationKinds() []string {
	kinds := s.relationKinds.ToSlice()
	slices.Sort(kinds)
	return kinds
}

// AddText adds a text thesis, resolving its references. Adding a text that
// already exists returns the existing id.
func (s *ThesisService) AddText(ctx context.Context, alias string, src domain.TextSource) (oid.ID, error) {
	var id oid.ID
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		id, _, err = s.addText(ctx, tx, alias, src)
		return err
	})

	return id, classify(err)
}

// AddRelation adds a relation thesis between two existing theses.
func (s *ThesisService) AddRelation(ctx context.Context, alias string, src domain.RelationSource) (oid.ID, error) {
	var id oid.ID
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		id, _, err = s.addRelation(ctx, tx, alias, src)
		return err
	})

	return id, classify(err)
}

// RemoveThesis removes a thesis with every thesis depending on it, directly
// or transitively. The removed ids are returned, the target first.
func (s *ThesisService) RemoveThesis(ctx context.Context, ref string) ([]oid.ID, error) {
	var removed []oid.ID
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		removed, err = s.remove(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return removed, nil
}

// Tag adds tags to a thesis.
func (s *ThesisService) Tag(ctx context.Context, ref string, tags ...string) (oid.ID, error) {
	return s.retag(ctx, ref, tags, true)
}

// Untag removes tags from a thesis. Removing an absent tag is not an error.
func (s *ThesisService) Untag(ctx context.Context, ref string, tags ...string) (oid.ID, error) {
	return s.retag(ctx, ref, tags, false)
}

func (s *ThesisService) retag(ctx context.Context, ref string, tags []string, add bool) (oid.ID, error) {
	var id oid.ID
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		id, err = s.tag(ctx, tx, ref, tags, add)
		return err
	})

	return id, classify(err)
}

// SetAlias binds alias to the thesis ref resolves to. The alias is moved away
// from any other thesis holding it.
func (s *ThesisService) SetAlias(ctx context.Context, alias string, ref string) (oid.ID, error) {
	var id oid.ID
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		id, err = s.setAlias(ctx, tx, alias, ref)
		return err
	})

	return id, classify(err)
}

// Get returns the thesis ref resolves to.
func (s *ThesisService) Get(ctx context.Context, ref string) (*domain.Thesis, error) {
	var thesis *domain.Thesis
	err := s.store.ReadTransaction(ctx, func(tx store.Store) error {
		id, err := s.resolve(ctx, tx, ref, ErrUnknownThesis)
		if err != nil {
			return err
		}
		thesis, err = tx.GetThesis(ctx, id)
		if err != nil {
			return storeFailure(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	return thesis, nil
}

// Resolve returns the id of the thesis ref names, either by id or by alias.
func (s *ThesisService) Resolve(ctx context.Context, ref string) (oid.ID, error) {
	var id oid.ID
	err := s.store.ReadTransaction(ctx, func(tx store.Store) error {
		var err error
		id, err = s.resolve(ctx, tx, ref, ErrUnknownThesis)
		return err
	})

	return id, classify(err)
}

// Tagged returns the ids of the theses carrying tag.
func (s *ThesisService) Tagged(ctx context.Context, tag string) ([]oid.ID, error) {
	if err := domain.ValidateTag(tag); err != nil {
		return nil, err
	}

	var ids []oid.ID
	err := s.store.ReadTransaction(ctx, func(tx store.Store) error {
		var err error
		ids, err = tx.FindByTag(ctx, tag)
		if err != nil {
			return storeFailure(err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	return ids, nil
}

func (s *ThesisService) addText(ctx context.Context, tx store.Store, alias string, src domain.TextSource) (oid.ID, bool, error) {
	if alias != "" {
		if err := domain.ValidateAlias(alias); err != nil {
			return oid.Nil, false, err
		}
	}
	if err := src.Validate(); err != nil {
		return oid.Nil, false, err
	}

	references := make([]oid.ID, 0, len(src.Tokens))
	for _, token := range src.Tokens {
		id, err := s.resolve(ctx, tx, token, ErrUnknownReference)
		if err != nil {
			return oid.Nil, false, err
		}
		references = append(references, id)
	}

	thesis := &domain.Thesis{Content: domain.TextContent(domain.Text{
		Parts:      slices.Clone(src.Parts),
		References: references,
	})}

	return s.insert(ctx, tx, thesis, alias)
}

func (s *ThesisService) addRelation(ctx context.Context, tx store.Store, alias string, src domain.RelationSource) (oid.ID, bool, error) {
	if alias != "" {
		if err := domain.ValidateAlias(alias); err != nil {
			return oid.Nil, false, err
		}
	}

	from, err := s.resolve(ctx, tx, src.From, ErrUnknownThesis)
	if err != nil {
		return oid.Nil, false, err
	}
	to, err := s.resolve(ctx, tx, src.To, ErrUnknownThesis)
	if err != nil {
		return oid.Nil, false, err
	}

	if err := domain.ValidateRelationKind(src.Kind); err != nil {
		return oid.Nil, false, fmt.Errorf("%w: %w", ErrUnknownRelationKind, err)
	}
	if !s.relationKinds.Contains(src.Kind) {
		return oid.Nil, false, fmt.Errorf("%w: %q is not one of %v", ErrUnknownRelationKind, src.Kind, s.RelationKinds())
	}

	thesis := &domain.Thesis{Content: domain.RelationContent(domain.Relation{
		From: from,
		To:   to,
		Kind: src.Kind,
	})}

	return s.insert(ctx, tx, thesis, alias)
}

// insert puts a new thesis, or keeps the existing one with the same content.
// The alias is bound in both cases.
func (s *ThesisService) insert(ctx context.Context, tx store.Store, thesis *domain.Thesis, alias string) (oid.ID, bool, error) {
	id := thesis.ID()

	ok, err := tx.HasThesis(ctx, id)
	if err != nil {
		return oid.Nil, false, storeFailure(err)
	}

	if ok {
		logrus.Debugf("thesis %s already exists", id)
	} else {
		if err := tx.PutThesis(ctx, thesis); err != nil {
			return oid.Nil, false, storeFailure(err)
		}
		logrus.Infof("added thesis %s", id)
	}

	if alias != "" {
		if err := s.bindAlias(ctx, tx, alias, id); err != nil {
			return oid.Nil, false, err
		}
	}

	return id, ok, nil
}

func (s *ThesisService) remove(ctx context.Context, tx store.Store, ref string) ([]oid.ID, error) {
	root, err := s.resolve(ctx, tx, ref, ErrUnknownThesis)
	if err != nil {
		return nil, err
	}

	visited := mapset.NewThreadUnsafeSet(root)
	removed := []oid.ID{root}
	for next := 0; next < len(removed); next++ {
		id := removed[next]

		relations, err := tx.FindRelationsMentioning(ctx, id)
		if err != nil {
			return nil, storeFailure(err)
		}
		referencing, err := tx.FindReferencing(ctx, id)
		if err != nil {
			return nil, storeFailure(err)
		}

		for _, dependent := range append(relations, referencing...) {
			if visited.Add(dependent) {
				removed = append(removed, dependent)
			}
		}
	}

	for _, id := range removed {
		if err := tx.DeleteThesis(ctx, id); err != nil {
			return nil, storeFailure(err)
		}
	}

	logrus.Infof("removed thesis %s with %d dependents", root, len(removed)-1)

	return removed, nil
}

func (s *ThesisService) tag(ctx context.Context, tx store.Store, ref string, tags []string, add bool) (oid.ID, error) {
	if err := domain.ValidateTags(tags); err != nil {
		return oid.Nil, err
	}

	id, err := s.resolve(ctx, tx, ref, ErrUnknownThesis)
	if err != nil {
		return oid.Nil, err
	}

	thesis, err := tx.GetThesis(ctx, id)
	if err != nil {
		return oid.Nil, storeFailure(err)
	}

	current := mapset.NewThreadUnsafeSet(thesis.Tags...)
	updated := current.Clone()
	for _, tag := range tags {
		if add {
			updated.Add(tag)
		} else {
			updated.Remove(tag)
		}
	}
	if updated.Equal(current) {
		return id, nil
	}

	thesis.Tags = updated.ToSlice()
	slices.Sort(thesis.Tags)
	if err := tx.PutThesis(ctx, thesis); err != nil {
		return oid.Nil, storeFailure(err)
	}

	return id, nil
}

func (s *ThesisService) setAlias(ctx context.Context, tx store.Store, alias string, ref string) (oid.ID, error) {
	if err := domain.ValidateAlias(alias); err != nil {
		return oid.Nil, err
	}

	id, err := s.resolve(ctx, tx, ref, ErrUnknownThesis)
	if err != nil {
		return oid.Nil, err
	}

	return id, s.bindAlias(ctx, tx, alias, id)
}

// bindAlias makes id the only holder of alias, replacing any alias id had.
func (s *ThesisService) bindAlias(ctx context.Context, tx store.Store, alias string, id oid.ID) error {
	holder, err := tx.FindByAlias(ctx, alias)
	switch {
	case err == nil && holder == id:
		return nil
	case err == nil:
		previous, err := tx.GetThesis(ctx, holder)
		if err != nil {
			return storeFailure(err)
		}
		previous.Alias = ""
		if err := tx.PutThesis(ctx, previous); err != nil {
			return storeFailure(err)
		}
		logrus.Infof("alias %q moved from %s to %s", alias, holder, id)
	case !errors.Is(err, store.ErrNotFound):
		return storeFailure(err)
	}

	thesis, err := tx.GetThesis(ctx, id)
	if err != nil {
		return storeFailure(err)
	}
	thesis.Alias = alias

	if err := tx.PutThesis(ctx, thesis); err != nil {
		return storeFailure(err)
	}

	return nil
}

// resolve finds the thesis a token names: an identifier of an existing
// thesis first, an alias otherwise.
func (s *ThesisService) resolve(ctx context.Context, tx store.Store, token string, unknown error) (oid.ID, error) {
	if id, err := oid.Parse(token); err == nil {
		ok, err := tx.HasThesis(ctx, id)
		if err != nil {
			return oid.Nil, storeFailure(err)
		}
		if ok {
			return id, nil
		}
	}

	id, err := tx.FindByAlias(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return oid.Nil, fmt.Errorf("%w: %q", unknown, token)
	}
	if err != nil {
		return oid.Nil, storeFailure(err)
	}

	return id, nil
}
