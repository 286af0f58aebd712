package store

import (
	"context"
	"errors"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/entities"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormMedium struct {
	db         *gorm.DB
	quotaBytes int
}

// NewGormMedium stores each collection as one row of collection_blobs.
func NewGormMedium(db *gorm.DB, quotaBytes int) Medium {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &gormMedium{db: db, quotaBytes: quotaBytes}
}

func (r *gormMedium) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var row entities.CollectionBlob
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(row.Data), true, nil
}

func (r *gormMedium) Set(ctx context.Context, name string, blob []byte, schemaVersion int) error {
	if len(blob) > r.quotaBytes {
		return domain.ErrStorageFull
	}

	row := &entities.CollectionBlob{
		Name:          name,
		SchemaVersion: schemaVersion,
		Data:          datatypes.JSON(blob),
		SizeBytes:     len(blob),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"schema_version", "data", "size_bytes", "updated_at"}),
		}).
		Create(row).Error
}

func (r *gormMedium) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&entities.CollectionBlob{}).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
