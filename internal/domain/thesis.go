package domain

import (
	"fmt"
	"slices"

	"github.com/emrgen/sweater/internal/oid"
)

// Content is either a text or a relation, never both. It is set when a thesis
// is created and never changes afterwards.
type Content struct {
	Text     *Text     `json:"text,omitempty"`
	Relation *Relation `json:"relation,omitempty"`
}

func TextContent(text Text) Content {
	return Content{Text: &text}
}

func RelationContent(relation Relation) Content {
	return Content{Relation: &relation}
}

func (c Content) Validate() error {
	switch {
	case c.Text != nil && c.Relation == nil:
		return c.Text.Validate()
	case c.Relation != nil && c.Text == nil:
		return c.Relation.Validate()
	default:
		return fmt.Errorf("%w: content must be exactly one of text or relation", ErrInvalidContent)
	}
}

// ID derives the identifier of the content. Content must be valid.
func (c Content) ID() oid.ID {
	if c.Relation != nil {
		return c.Relation.ID()
	}
	if c.Text != nil {
		return c.Text.ID()
	}
	return oid.Nil
}

// Mentions returns every thesis the content depends on.
func (c Content) Mentions() []oid.ID {
	switch {
	case c.Relation != nil:
		return []oid.ID{c.Relation.From, c.Relation.To}
	case c.Text != nil:
		return slices.Clone(c.Text.References)
	}
	return nil
}

// Thesis is the unit of storage. Tags and alias are mutable and carry no
// identity weight.
type Thesis struct {
	Content Content  `json:"content"`
	Alias   string   `json:"alias,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (t *Thesis) ID() oid.ID {
	return t.Content.ID()
}

func (t *Thesis) IsRelation() bool {
	return t.Content.Relation != nil
}

func (t *Thesis) Validate() error {
	if t.Alias != "" {
		if err := ValidateAlias(t.Alias); err != nil {
			return err
		}
	}
	if err := ValidateTags(t.Tags); err != nil {
		return err
	}
	return t.Content.Validate()
}

// Name is the alias when there is one, else the identifier text form.
func (t *Thesis) Name() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.ID().String()
}

func (t *Thesis) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}
