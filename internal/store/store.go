package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-analytics-backend/internal/analytics"
	"hotel-analytics-backend/internal/model"
)

const batchSize = 200

// ErrNoSnapshot is returned when no sync has completed yet.
var ErrNoSnapshot = errors.New("store: no snapshot")

// Store defines the interface for all database operations.
type Store interface {
	ReplaceSnapshot(ctx context.Context, batch Batch) (int64, error)
	LoadSnapshot(ctx context.Context) (analytics.Snapshot, error)
	Revision(ctx context.Context) (int64, error)
	RecordOccupancy(ctx context.Context, sample model.OccupancySample) (*model.OccupancySample, error)
	OccupancyHistory(ctx context.Context, from, to time.Time) ([]model.OccupancySample, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ReplaceSnapshot makes the database mirror the batch: records are upserted,
// records missing from the batch are deleted, and a SyncRun is appended. The
// new revision is returned.
func (s *gormStore) ReplaceSnapshot(ctx context.Context, batch Batch) (int64, error) {
	run := model.SyncRun{
		RunID:      batch.RunID,
		StartedAt:  batch.StartedAt,
		FinishedAt: time.Now().UTC(),
		Stays:      len(batch.Stays),
		Orders:     len(batch.Orders),
		Services:   len(batch.Services),
		Rooms:      len(batch.Rooms),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertAndPrune(tx, batch.Stays, &model.Stay{}, stayID); err != nil {
			return fmt.Errorf("failed to replace stays: %w", err)
		}
		if err := replaceOrders(tx, batch.Orders); err != nil {
			return fmt.Errorf("failed to replace orders: %w", err)
		}
		if err := upsertAndPrune(tx, batch.Services, &model.ScheduledService{}, serviceID); err != nil {
			return fmt.Errorf("failed to replace scheduled services: %w", err)
		}
		if err := upsertAndPrune(tx, batch.Rooms, &model.Room{}, roomID); err != nil {
			return fmt.Errorf("failed to replace rooms: %w", err)
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to record sync run: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}

func stayID(m model.Stay) string               { return m.ID }
func serviceID(m model.ScheduledService) string { return m.ID }
func roomID(m model.Room) string                { return m.ID }

// upsertAndPrune upserts rows by primary key and deletes every row of the
// table whose id is not in rows.
func upsertAndPrune[T any](tx *gorm.DB, rows []T, table any, id func(T) string) error {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, id(r))
	}

	if len(rows) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&rows, batchSize).Error; err != nil {
			return err
		}
	}
	return pruneMissing(tx, table, "id", ids)
}

// pruneChunk bounds the ids bound into one DELETE, well under the
// placeholder limits of postgres and sqlite.
var pruneChunk = 1000

// pruneMissing deletes the rows of table whose column value is not in keep.
// Stale ids are worked out in memory and deleted in chunks.
func pruneMissing(tx *gorm.DB, table any, column string, keep []string) error {
	if len(keep) == 0 {
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error
	}

	var existing []string
	if err := tx.Model(table).Pluck(column, &existing).Error; err != nil {
		return err
	}
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	stale := make([]string, 0)
	for _, id := range existing {
		if _, ok := kept[id]; !ok {
			stale = append(stale, id)
		}
	}

	for chunk := range slices.Chunk(stale, pruneChunk) {
		if err := tx.Where(column+" IN ?", chunk).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

// replaceOrders upserts orders and rewrites their items wholesale.
func replaceOrders(tx *gorm.DB, orders []model.Order) error {
	ids := make([]string, 0, len(orders))
	var items []model.OrderItem
	for _, o := range orders {
		ids = append(ids, o.ID)
		for _, it := range o.Items {
			it.ID = 0
			it.OrderID = o.ID
			items = append(items, it)
		}
	}

	// Items are always rewritten, so drop them first; this also covers
	// orders that disappeared upstream.
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}

	if len(orders) > 0 {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&orders, batchSize).Error; err != nil {
			return err
		}
	}
	if len(items) > 0 {
		if err := tx.CreateInBatches(&items, batchSize).Error; err != nil {
			return err
		}
	}
	return pruneMissing(tx, &model.Order{}, "id", ids)
}

// LoadSnapshot reads every record into an analytics snapshot. Collections are
// never nil.
func (s *gormStore) LoadSnapshot(ctx context.Context) (analytics.Snapshot, error) {
	db := s.db.WithContext(ctx)

	var stays []model.Stay
	if err := db.Find(&stays).Error; err != nil {
		return analytics.Snapshot{}, fmt.Errorf("failed to load stays: %w", err)
	}
	var orders []model.Order
	if err := db.Preload("Items").Find(&orders).Error; err != nil {
		return analytics.Snapshot{}, fmt.Errorf("failed to load orders: %w", err)
	}
	var services []model.ScheduledService
	if err := db.Find(&services).Error; err != nil {
		return analytics.Snapshot{}, fmt.Errorf("failed to load scheduled services: %w", err)
	}
	var rooms []model.Room
	if err := db.Find(&rooms).Error; err != nil {
		return analytics.Snapshot{}, fmt.Errorf("failed to load rooms: %w", err)
	}

	return toSnapshot(stays, orders, services, rooms), nil
}

// Revision returns the id of the latest sync run.
func (s *gormStore) Revision(ctx context.Context) (int64, error) {
	var run model.SyncRun
	err := s.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&run).Error
	if err != nil {
		return 0, err
	}
	if run.ID == 0 {
		return 0, ErrNoSnapshot
	}
	return run.ID, nil
}

// RecordOccupancy appends a sample and returns the one before it, if any.
func (s *gormStore) RecordOccupancy(ctx context.Context, sample model.OccupancySample) (*model.OccupancySample, error) {
	var previous *model.OccupancySample
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last []model.OccupancySample
		if err := tx.Order("observed_at DESC").Limit(1).Find(&last).Error; err != nil {
			return fmt.Errorf("failed to fetch last occupancy sample: %w", err)
		}
		if len(last) == 1 {
			previous = &last[0]
		}
		if err := tx.Create(&sample).Error; err != nil {
			return fmt.Errorf("failed to record occupancy sample: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// OccupancyHistory returns samples observed in [from, to], oldest first.
func (s *gormStore) OccupancyHistory(ctx context.Context, from, to time.Time) ([]model.OccupancySample, error) {
	var samples []model.OccupancySample
	err := s.db.WithContext(ctx).
		Where("observed_at >= ? AND observed_at <= ?", from, to).
		Order("observed_at ASC").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}
