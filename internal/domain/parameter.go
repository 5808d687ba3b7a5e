package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Parameter is a catalog entry. Rules reference parameters by Key only;
// AllowedValues is informational and not enforced during resolution.
type Parameter struct {
	ID            uuid.UUID                `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Key           string                   `gorm:"column:key;not null;uniqueIndex:idx_parameter_key" json:"key"`
	Description   *string                  `gorm:"column:description;type:text" json:"description"`
	DataType      *string                  `gorm:"column:data_type" json:"dataType"`
	AllowedValues datatypes.JSONSlice[any] `gorm:"column:allowed_values;type:jsonb" json:"allowedValues"`
	CreatedAt     time.Time                `gorm:"not null;default:now()" json:"-"`
	UpdatedAt     time.Time                `gorm:"not null;default:now()" json:"-"`
}

func (Parameter) TableName() string { return "parameter" }
