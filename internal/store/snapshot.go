package store

import (
	"errors"
	"fmt"

	"github.com/jeffersontgc/anastore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSnapshotNotFound means no snapshot has been saved yet under the
// configured storage name; the store then starts empty.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotKV is the local key-value storage the store persists itself
// into. One fixed name maps to the whole serialized state.
type SnapshotKV interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
}

// DBSnapshotKV keeps snapshots in a single-row-per-name sqlite table.
type DBSnapshotKV struct {
	DB *gorm.DB
}

func NewDBSnapshotKV(db *gorm.DB) *DBSnapshotKV {
	return &DBSnapshotKV{DB: db}
}

func (s *DBSnapshotKV) Save(name string, data []byte) error {
	snap := models.Snapshot{Name: name, Data: data}
	if err := s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&snap).Error; err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	return nil
}

func (s *DBSnapshotKV) Load(name string) ([]byte, error) {
	var snap models.Snapshot
	if err := s.DB.First(&snap, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return snap.Data, nil
}
