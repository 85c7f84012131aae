// Package entity holds the embeddable base shared by every persisted record.
package entity

import (
	"time"

	"gorm.io/gorm"
)

// Audited carries the audit, soft-delete and optimistic-lock fields every
// table inherits. CreatedBy/UpdatedBy are populated by services from the
// acting user in the request context.
type Audited struct {
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	CreatedBy string         `gorm:"type:text" json:"created_by,omitempty"`
	UpdatedBy string         `gorm:"type:text" json:"updated_by,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Version   int64          `gorm:"not null;default:0" json:"version"`
}
