package compliance

import "rentbook/internal/core"

var categories = map[core.PropertyType]core.Category{
	core.House:      core.Residential,
	core.Flat:       core.Residential,
	core.HMO:        core.Residential,
	core.Room:       core.Residential,
	core.Office:     core.Commercial,
	core.Retail:     core.Commercial,
	core.Restaurant: core.Commercial,
	core.Warehouse:  core.Commercial,
	core.MixedUse:   core.Commercial,
}

var defaultItems = map[core.Category][]core.ComplianceType{
	core.Residential: {
		core.GasSafety, core.EICR, core.EPC, core.SmokeCOAlarm,
		core.DepositProtection, core.RightToRent, core.Legionella,
		core.PropertyLicence, core.FireSafety, core.LandlordInsurance,
		core.RentAgreement,
	},
	core.Commercial: {
		core.GasSafety, core.EICR, core.CommercialEPC, core.FireRiskAssessment,
		core.AsbestosSurvey, core.PremisesLicence, core.FoodHygiene,
		core.Legionella, core.LandlordInsurance, core.PropertyLicence,
	},
}

// CategoryOf maps a property type to its category. Unrecognised types are
// residential.
func CategoryOf(t core.PropertyType) core.Category {
	if c, ok := categories[t]; ok {
		return c
	}
	return core.Residential
}

// DefaultItemsFor returns the compliance kinds expected for a category.
// Unrecognised categories get the residential set.
func DefaultItemsFor(c core.Category) []core.ComplianceType {
	items, ok := defaultItems[c]
	if !ok {
		items = defaultItems[core.Residential]
	}
	return append([]core.ComplianceType(nil), items...)
}

// RelevantItemsFor returns the kinds that count towards p's score: the
// owner's override when it is non-empty, otherwise the category default.
// Unknown and repeated kinds in the override are dropped, so an override
// naming only unknown kinds yields an empty set.
func RelevantItemsFor(p core.Property) []core.ComplianceType {
	if len(p.EnabledComplianceTypes) == 0 {
		return DefaultItemsFor(CategoryOf(p.Type))
	}
	seen := make(map[core.ComplianceType]bool, len(p.EnabledComplianceTypes))
	out := make([]core.ComplianceType, 0, len(p.EnabledComplianceTypes))
	for _, t := range p.EnabledComplianceTypes {
		if !t.IsValid() || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// AllTypes is the full catalog in display order.
func AllTypes() []core.ComplianceType {
	return core.ComplianceTypes()
}
