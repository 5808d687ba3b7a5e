package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// MappingHistory is one immutable audit entry. Version is the mapping version
// after the change, or the last live version for a delete. Diff is reserved
// for field-level diffs and is currently always empty.
type MappingHistory struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MappingID  uuid.UUID         `gorm:"type:uuid;column:mapping_id;not null;index" json:"mapping_id"`
	VendorID   uuid.UUID         `gorm:"type:uuid;column:vendor_id;not null;index" json:"vendor_id"`
	ChangeType ChangeType        `gorm:"column:change_type;not null" json:"change_type"`
	Version    int               `gorm:"column:version;not null" json:"version"`
	ChangedAt  time.Time         `gorm:"column:changed_at;not null;default:now();index" json:"changed_at"`
	Diff       datatypes.JSONMap `gorm:"column:diff;type:jsonb" json:"diff"`
}

func (MappingHistory) TableName() string { return "mapping_history" }

// NewHistoryRecord snapshots m for the given change.
func NewHistoryRecord(m *Mapping, change ChangeType, at time.Time) *MappingHistory {
	return &MappingHistory{
		ID:         uuid.New(),
		MappingID:  m.ID,
		VendorID:   m.VendorID,
		ChangeType: change,
		Version:    m.Version,
		ChangedAt:  at,
		Diff:       datatypes.JSONMap{},
	}
}
