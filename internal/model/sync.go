package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SyncRun records one completed ingest cycle. Its ID doubles as the snapshot
// revision used to key cached reports.
type SyncRun struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	RunID      string    `gorm:"size:36;uniqueIndex;not null"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time `gorm:"not null"`
	Stays      int       `gorm:"not null"`
	Orders     int       `gorm:"not null"`
	Services   int       `gorm:"not null"`
	Rooms      int       `gorm:"not null"`
}

// OccupancySample is the occupancy observed after a sync (cold table).
type OccupancySample struct {
	ObservedAt time.Time       `gorm:"primaryKey"`
	Revision   int64           `gorm:"not null;index"`
	TotalRooms int             `gorm:"not null"`
	Occupied   int             `gorm:"not null"`
	Available  int             `gorm:"not null"`
	Rate       decimal.Decimal `gorm:"type:decimal(5,1);not null"`
}
