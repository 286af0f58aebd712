package entities

import (
	"time"

	"gorm.io/datatypes"
)

type Timestamp struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CollectionBlob holds one named collection as a single JSON document,
// mirroring a key in browser local storage.
type CollectionBlob struct {
	Name          string         `gorm:"primaryKey;size:128" json:"name"`
	SchemaVersion int            `gorm:"not null;default:0" json:"schema_version"`
	Data          datatypes.JSON `gorm:"not null" json:"data"`
	SizeBytes     int            `gorm:"not null;default:0" json:"size_bytes"`

	Timestamp
}
