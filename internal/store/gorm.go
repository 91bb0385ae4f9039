package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/model"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const eachThesisBatchSize = 200

func NewGormStore(db *gorm.DB) *GormStore {
	g := &GormStore{
		db: db,
	}

	// sqlite has a single writer and snapshot reads in WAL mode,
	// other databases are asked for the isolation explicitly
	if db.Dialector.Name() != "sqlite" {
		g.writeOptions = []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
		g.readOptions = []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
	}

	return g
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db           *gorm.DB
	readOnly     bool
	writeOptions []*sql.TxOptions
	readOptions  []*sql.TxOptions
}

func (g *GormStore) GetThesis(ctx context.Context, id oid.ID) (*domain.Thesis, error) {
	var rows []model.Thesis
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("thesis %s: %w", id, ErrNotFound)
	}

	tags, err := g.tags(ctx, []string{rows[0].ID})
	if err != nil {
		return nil, err
	}

	return rows[0].IntoThesis(tags[rows[0].ID])
}

func (g *GormStore) HasThesis(ctx context.Context, id oid.ID) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Thesis{}).Where("id = ?", id.String()).Count(&count).Error
	return count > 0, err
}

func (g *GormStore) PutThesis(ctx context.Context, thesis *domain.Thesis) error {
	if g.readOnly {
		return ErrReadOnly
	}
	if err := thesis.Validate(); err != nil {
		return err
	}

	row, err := model.NewThesis(thesis)
	if err != nil {
		return err
	}

	db := g.db.WithContext(ctx)

	// content never changes for an id, only the alias can
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"alias", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return err
	}

	if err := db.Where("thesis_id = ?", row.ID).Delete(&model.ThesisTag{}).Error; err != nil {
		return err
	}
	tags := mapset.NewSet(thesis.Tags...)
	if tags.Cardinality() > 0 {
		rows := make([]model.ThesisTag, 0, tags.Cardinality())
		for _, tag := range sorted(tags) {
			rows = append(rows, model.ThesisTag{ThesisID: row.ID, Tag: tag})
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}

	if thesis.Content.Text == nil {
		return nil
	}

	if err := db.Where("source_id = ?", row.ID).Delete(&model.ThesisReference{}).Error; err != nil {
		return err
	}
	targets := mapset.NewSet(oid.Strings(thesis.Content.Text.References)...)
	if targets.Cardinality() > 0 {
		rows := make([]model.ThesisReference, 0, targets.Cardinality())
		for _, target := range sorted(targets) {
			rows = append(rows, model.ThesisReference{SourceID: row.ID, TargetID: target})
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}

	return nil
}

func (g *GormStore) DeleteThesis(ctx context.Context, id oid.ID) error {
	if g.readOnly {
		return ErrReadOnly
	}

	db := g.db.WithContext(ctx)
	key := id.String()

	if err := db.Where("thesis_id = ?", key).Delete(&model.ThesisTag{}).Error; err != nil {
		return err
	}

	if err := db.Where("source_id = ?", key).Delete(&model.ThesisReference{}).Error; err != nil {
		return err
	}

	logrus.Debugf("deleting thesis %s", key)

	return db.Where("id = ?", key).Delete(&model.Thesis{}).Error
}

func (g *GormStore) FindByAlias(ctx context.Context, alias string) (oid.ID, error) {
	var ids []string
	err := g.db.WithContext(ctx).Model(&model.Thesis{}).Where("alias = ?", alias).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return oid.Nil, err
	}
	if len(ids) == 0 {
		return oid.Nil, fmt.Errorf("alias %q: %w", alias, ErrNotFound)
	}

	return oid.Parse(ids[0])
}

func (g *GormStore) FindByTag(ctx context.Context, tag string) ([]oid.ID, error) {
	var ids []string
	err := g.db.WithContext(ctx).Model(&model.ThesisTag{}).Where("tag = ?", tag).Order("thesis_id").Pluck("thesis_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return parseIDs(ids)
}

func (g *GormStore) FindRelationsMentioning(ctx context.Context, id oid.ID) ([]oid.ID, error) {
	var ids []string
	key := id.String()
	err := g.db.WithContext(ctx).Model(&model.Thesis{}).
		Where("relation_from = ? OR relation_to = ?", key, key).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	return parseIDs(ids)
}

func (g *GormStore) FindReferencing(ctx context.Context, id oid.ID) ([]oid.ID, error) {
	var ids []string
	err := g.db.WithContext(ctx).Model(&model.ThesisReference{}).Where("target_id = ?", id.String()).Order("source_id").Pluck("source_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return parseIDs(ids)
}

func (g *GormStore) EachThesis(ctx context.Context, f func(thesis *domain.Thesis) error) error {
	var rows []model.Thesis
	return g.db.WithContext(ctx).FindInBatches(&rows, eachThesisBatchSize, func(tx *gorm.DB, batch int) error {
		keys := make([]string, 0, len(rows))
		for _, row := range rows {
			keys = append(keys, row.ID)
		}

		tags, err := g.tags(ctx, keys)
		if err != nil {
			return err
		}

		for i := range rows {
			thesis, err := rows[i].IntoThesis(tags[rows[i].ID])
			if err != nil {
				return err
			}
			if err := f(thesis); err != nil {
				return err
			}
		}

		return nil
	}).Error
}

func (g *GormStore) Revision(ctx context.Context) (int64, error) {
	var revision model.Revision
	err := g.db.WithContext(ctx).Where("id = ?", model.RevisionID).First(&revision).Error
	return revision.Value, err
}

func (g *GormStore) Instance(ctx context.Context) (string, error) {
	var revision model.Revision
	err := g.db.WithContext(ctx).Where("id = ?", model.RevisionID).First(&revision).Error
	return revision.Instance, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

// Transaction runs f in a write transaction. The revision is bumped first so
// the transaction holds the write lock before it reads anything. On sqlite the
// transaction itself is deferred: readers never take the write lock and keep
// their WAL snapshots while a writer commits.
func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	if g.readOnly {
		return ErrReadOnly
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Revision{}).
			Where("id = ?", model.RevisionID).
			UpdateColumn("value", gorm.Expr("value + ?", 1)).Error
		if err != nil {
			return err
		}

		return f(g.with(tx, false))
	}, g.writeOptions...)
}

func (g *GormStore) ReadTransaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(g.with(tx, true))
	}, g.readOptions...)
}

func (g *GormStore) with(db *gorm.DB, readOnly bool) *GormStore {
	return &GormStore{
		db:           db,
		readOnly:     readOnly,
		writeOptions: g.writeOptions,
		readOptions:  g.readOptions,
	}
}

func (g *GormStore) tags(ctx context.Context, keys []string) (map[string][]string, error) {
	var rows []model.ThesisTag
	err := g.db.WithContext(ctx).Where("thesis_id IN ?", keys).Order("thesis_id, tag").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tags := make(map[string][]string, len(keys))
	for _, row := range rows {
		tags[row.ThesisID] = append(tags[row.ThesisID], row.Tag)
	}

	return tags, nil
}

func parseIDs(keys []string) ([]oid.ID, error) {
	ids := make([]oid.ID, 0, len(keys))
	for _, key := range keys {
		id, err := oid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("stored id %q: %w", key, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func sorted(set mapset.Set[string]) []string {
	items := set.ToSlice()
	slices.Sort(items)
	return items
}
