package models

import "time"

// Snapshot is the key-value row the entity store persists itself into.
// There is one row per storage name; the whole state is one JSON blob.
type Snapshot struct {
	Name      string `gorm:"primaryKey;size:64"`
	Data      []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}
