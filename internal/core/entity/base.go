// Package entity provides the base fields shared by all persisted records.
package entity

import (
	"time"

	"supplyfin/internal/core/id"
)

// BaseEntity contains common fields for all entities.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreationDate time.Time `db:"creation_date" json:"creationDate"`
	UpdateDate   time.Time `db:"update_date" json:"updateDate"`
}

// NewBaseEntity creates a new BaseEntity with generated ID and timestamps.
func NewBaseEntity(now time.Time) BaseEntity {
	now = now.UTC()
	return BaseEntity{
		ID:           id.New(),
		Version:      1,
		CreationDate: now,
		UpdateDate:   now,
	}
}

// Touch stamps UpdateDate. Version is bumped by the repository on save.
func (b *BaseEntity) Touch(now time.Time) {
	b.UpdateDate = now.UTC()
}

// GetID returns the entity identifier.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// GetVersion returns the optimistic-lock version.
func (b *BaseEntity) GetVersion() int {
	return b.Version
}

// SetVersion updates the version number (used by repository after save).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// Versioned is implemented by entities saved with optimistic locking.
type Versioned interface {
	GetID() id.ID
	GetVersion() int
	SetVersion(v int)
}
