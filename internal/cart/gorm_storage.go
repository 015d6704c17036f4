package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/fest-cart/internal/clock"
	"github.com/angelmondragon/fest-cart/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage keeps snapshots in the cart_snapshots table, one row per session.
type GormStorage struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewGormStorage(db *gorm.DB, c clock.Clock) (*GormStorage, error) {
	if db == nil {
		return nil, errors.New("gorm db required for cart storage")
	}
	if c == nil {
		c = clock.NewSystem()
	}
	return &GormStorage{db: db, clock: c}, nil
}

func (s *GormStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var snap models.CartSnapshot
	err := s.db.WithContext(ctx).Where("cart_key = ?", key).Take(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return []byte(snap.Payload), nil
}

func (s *GormStorage) Save(ctx context.Context, key string, data []byte) error {
	snap := models.CartSnapshot{
		CartKey:   key,
		Payload:   string(data),
		UpdatedAt: s.clock.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DeleteOlderThan removes snapshots last written before cutoff.
func (s *GormStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&models.CartSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete stale cart snapshots: %w", res.Error)
	}
	return res.RowsAffected, nil
}
