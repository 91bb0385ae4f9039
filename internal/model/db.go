package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Thesis{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ThesisTag{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ThesisReference{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&Revision{}); err != nil {
		return err
	}

	instance := uuid.New().String()
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&Revision{ID: RevisionID, Instance: instance}).Error
	if err != nil {
		return err
	}

	// databases migrated before the instance column existed
	return db.Model(&Revision{}).
		Where("id = ? AND (instance IS NULL OR instance = ?)", RevisionID, "").
		UpdateColumn("instance", instance).Error
}
