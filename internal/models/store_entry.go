package models

import "time"

// StoreEntry is one key/value row of the local fallback store.
type StoreEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time
}
