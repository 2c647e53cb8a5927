package cache

import (
	"context"
	"time"

	"github.com/disasterlabs/beacon/model"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound signals an absent key from Store.Select.
var ErrNotFound = errors.New("cache entry not found")

// GormStore persists cache entries in the shared cache_entries table so the
// cache survives restarts and is shared across instances.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Select(ctx context.Context, key string) ([]byte, time.Time, error) {
	var entry model.CacheEntry
	res := s.db.WithContext(ctx).Where("key = ?", key).First(&entry)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, ErrNotFound
	}
	if res.Error != nil {
		return nil, time.Time{}, errors.Wrap(res.Error, "select cache entry")
	}
	return []byte(entry.Value), entry.ExpiresAt, nil
}

func (s *GormStore) Upsert(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	entry := model.CacheEntry{
		Key:       key,
		Value:     datatypes.JSON(value),
		ExpiresAt: expiresAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry)
	return errors.Wrap(res.Error, "upsert cache entry")
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.CacheEntry{})
	return errors.Wrap(res.Error, "delete cache entry")
}
