package models

import "time"

// Sequence is a named monotonically increasing counter.
type Sequence struct {
	SeriesKey string `gorm:"primaryKey;size:64"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}
