package model

import (
	"encoding/json"
	"time"

	"github.com/emrgen/sweater/internal/domain"
	"gorm.io/datatypes"
)

const (
	KindText     = "text"
	KindRelation = "relation"
)

// Thesis is the stored row of a thesis. The content column keeps the whole
// content document, the relation columns only exist to be indexed.
type Thesis struct {
	ID           string         `gorm:"primaryKey;size:22;not null"`
	Kind         string         `gorm:"size:16;not null"`
	Alias        *string        `gorm:"uniqueIndex:idx_theses_alias"`
	Content      datatypes.JSON `gorm:"not null"`
	RelationFrom *string        `gorm:"size:22;index:idx_theses_relation_from"`
	RelationTo   *string        `gorm:"size:22;index:idx_theses_relation_to"`
	RelationKind *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Thesis) TableName() string {
	return "theses"
}

// NewThesis builds the row for a thesis, without tags and references.
func NewThesis(thesis *domain.Thesis) (*Thesis, error) {
	content, err := json.Marshal(thesis.Content)
	if err != nil {
		return nil, err
	}

	row := &Thesis{
		ID:      thesis.ID().String(),
		Kind:    KindText,
		Content: datatypes.JSON(content),
	}
	if thesis.Alias != "" {
		alias := thesis.Alias
		row.Alias = &alias
	}
	if rel := thesis.Content.Relation; rel != nil {
		from, to, kind := rel.From.String(), rel.To.String(), rel.Kind
		row.Kind = KindRelation
		row.RelationFrom = &from
		row.RelationTo = &to
		row.RelationKind = &kind
	}

	return row, nil
}

// IntoThesis decodes the row back into a thesis with the given tags.
func (t *Thesis) IntoThesis(tags []string) (*domain.Thesis, error) {
	thesis := &domain.Thesis{Tags: tags}
	if err := json.Unmarshal(t.Content, &thesis.Content); err != nil {
		return nil, err
	}
	if t.Alias != nil {
		thesis.Alias = *t.Alias
	}

	return thesis, nil
}

// ThesisTag binds a tag to a thesis.
type ThesisTag struct {
	ThesisID string `gorm:"primaryKey;size:22;not null"`
	Tag      string `gorm:"primaryKey;not null;index:idx_thesis_tags_tag"`
}

func (ThesisTag) TableName() string {
	return "thesis_tags"
}

// ThesisReference records that the text of the source thesis embeds the target.
// It is the reverse index used to find what has to go when the target is removed.
type ThesisReference struct {
	SourceID string `gorm:"primaryKey;size:22;not null"`
	TargetID string `gorm:"primaryKey;size:22;not null;index:idx_thesis_references_target_id"`
}

func (ThesisReference) TableName() string {
	return "thesis_references"
}

// Revision counts committed write transactions. Instance identifies the
// database, it is set once by Migrate.
type Revision struct {
	ID       uint   `gorm:"primaryKey"`
	Value    int64  `gorm:"not null;default:0"`
	Instance string `gorm:"size:36"`
}

func (Revision) TableName() string {
	return "revisions"
}

// RevisionID is the id of the single revision row.
const RevisionID = 1
