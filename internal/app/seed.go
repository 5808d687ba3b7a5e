package app

import (
	"context"
	"reflect"

	"github.com/yungbote/parammap-backend/internal/domain"
	"github.com/yungbote/parammap-backend/internal/platform/dbctx"
	"github.com/yungbote/parammap-backend/internal/services"
)

const seedVendorCode = "ACME"

func seedRules() []domain.Rule {
	upper, toInt := "uppercase", "to_int"
	return []domain.Rule{
		{InputParam: "first_name", OutputParam: "fname", Transform: &upper},
		{InputParam: "last_name", OutputParam: "lname"},
		{InputParam: "age", OutputParam: "age_years", Transform: &toInt},
	}
}

func seedParameters() []services.ParameterInput {
	str := func(s string) *string { return &s }
	return []services.ParameterInput{
		{Key: "first_name", Description: str("First Name"), DataType: str("string")},
		{Key: "last_name", Description: str("Last Name"), DataType: str("string")},
		{Key: "age", Description: str("Age"), DataType: str("int")},
	}
}

// Seed inserts the sample ACME vendor, its parameters and default mapping.
// Running it again changes nothing.
func (a *App) Seed(ctx context.Context) error {
	log := a.Log.With("component", "seed")

	vendor, err := a.Repos.Vendor.GetByCode(dbctx.New(ctx), seedVendorCode)
	if err != nil {
		return err
	}
	if vendor == nil {
		desc, active := "Sample vendor", true
		vendor, err = a.Services.Vendor.Create(ctx, services.VendorCreate{
			Code:        seedVendorCode,
			Name:        "ACME Corp",
			Description: &desc,
			IsActive:    &active,
		})
		if err != nil {
			return err
		}
		log.Info("Seeded vendor", "vendor_id", vendor.ID)
	}

	if _, err := a.Services.Parameter.BulkUpsert(ctx, seedParameters()); err != nil {
		return err
	}

	rules := seedRules()
	existing, err := a.Repos.Mapping.GetByVendorAndNamespace(dbctx.New(ctx), vendor.ID, domain.DefaultNamespace)
	if err != nil {
		return err
	}
	switch {
	case existing == nil:
		ns := domain.DefaultNamespace
		m, err := a.Services.Mapping.Create(ctx, services.MappingCreate{
			VendorID:  vendor.ID.String(),
			Namespace: &ns,
			Rules:     rules,
		})
		if err != nil {
			return err
		}
		log.Info("Seeded mapping", "mapping_id", m.ID, "version", m.Version)
	case !reflect.DeepEqual(existing.RuleList(), rules):
		m, err := a.Services.Mapping.Update(ctx, existing.ID.String(), services.MappingPatch{Rules: rules})
		if err != nil {
			return err
		}
		log.Info("Reset seeded mapping rules", "mapping_id", m.ID, "version", m.Version)
	}
	log.Info("Seed complete.")
	return nil
}
