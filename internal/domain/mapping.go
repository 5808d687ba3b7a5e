package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Rule translates one input parameter into a vendor output parameter.
// A nil Transform is identity pass-through.
type Rule struct {
	InputParam  string  `json:"input_param"`
	OutputParam string  `json:"output_param"`
	Transform   *string `json:"transform"`
}

// TransformSpec returns the transform or "" for identity.
func (r Rule) TransformSpec() string {
	if r.Transform == nil {
		return ""
	}
	return *r.Transform
}

// ValidateRules checks that every rule names both sides.
func ValidateRules(op string, rules []Rule) error {
	for i, r := range rules {
		if strings.TrimSpace(r.InputParam) == "" {
			return NewError(CodeValidation, op, fmt.Sprintf("rules[%d].input_param is required", i), nil)
		}
		if strings.TrimSpace(r.OutputParam) == "" {
			return NewError(CodeValidation, op, fmt.Sprintf("rules[%d].output_param is required", i), nil)
		}
	}
	return nil
}

// Mapping is the versioned rule list for one (vendor, namespace) pair.
type Mapping struct {
	ID        uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VendorID  uuid.UUID                 `gorm:"type:uuid;column:vendor_id;not null;uniqueIndex:idx_mapping_vendor_namespace,priority:1" json:"vendor_id"`
	Namespace string                    `gorm:"column:namespace;not null;uniqueIndex:idx_mapping_vendor_namespace,priority:2" json:"namespace"`
	Rules     datatypes.JSONSlice[Rule] `gorm:"column:rules;type:jsonb;not null" json:"rules"`
	Version   int                       `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time                 `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time                 `gorm:"not null;default:now()" json:"updated_at"`
}

func (Mapping) TableName() string { return "mapping" }

// RuleList returns the rules in stored order, never nil.
func (m *Mapping) RuleList() []Rule {
	if m == nil || len(m.Rules) == 0 {
		return []Rule{}
	}
	out := make([]Rule, len(m.Rules))
	copy(out, m.Rules)
	return out
}
