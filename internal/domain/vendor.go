package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is an external consumer with its own parameter naming convention.
// Code is the immutable business key.
type Vendor struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code        string    `gorm:"column:code;not null;uniqueIndex:idx_vendor_code" json:"code"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Description *string   `gorm:"column:description;type:text" json:"description"`
	// No gorm default here: a false IsActive must be written as false.
	IsActive  bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Vendor) TableName() string { return "vendor" }
