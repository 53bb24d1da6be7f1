package compliance

import (
	"reflect"
	"testing"

	"rentbook/internal/core"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		typ  core.PropertyType
		want core.Category
	}{
		{core.House, core.Residential},
		{core.Flat, core.Residential},
		{core.HMO, core.Residential},
		{core.Room, core.Residential},
		{core.Office, core.Commercial},
		{core.Retail, core.Commercial},
		{core.Restaurant, core.Commercial},
		{core.Warehouse, core.Commercial},
		{core.MixedUse, core.Commercial},
		{"houseboat", core.Residential},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.typ); got != tt.want {
			t.Errorf("CategoryOf(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestDefaultItemsFor(t *testing.T) {
	res := DefaultItemsFor(core.Residential)
	com := DefaultItemsFor(core.Commercial)
	if len(res) != 11 || len(com) != 10 {
		t.Fatalf("default sizes = %d/%d, want 11/10", len(res), len(com))
	}
	if !reflect.DeepEqual(DefaultItemsFor("industrial"), res) {
		t.Fatalf("unknown category must fall back to residential")
	}
	for _, set := range [][]core.ComplianceType{res, com} {
		for _, ct := range set {
			if !ct.IsValid() {
				t.Fatalf("default item %q not in catalog", ct)
			}
		}
	}
	res[0] = "mutated"
	if DefaultItemsFor(core.Residential)[0] != core.GasSafety {
		t.Fatalf("DefaultItemsFor must return a copy")
	}
}

func TestRelevantItemsFor(t *testing.T) {
	restaurant := core.Property{ID: "r", Type: core.Restaurant}
	if got := RelevantItemsFor(restaurant); !reflect.DeepEqual(got, DefaultItemsFor(core.Commercial)) {
		t.Fatalf("restaurant without override = %v", got)
	}

	override := core.Property{
		ID:                     "o",
		Type:                   core.House,
		EnabledComplianceTypes: []core.ComplianceType{core.EPC, "jacuzzi", core.GasSafety, core.EPC},
	}
	want := []core.ComplianceType{core.EPC, core.GasSafety}
	if got := RelevantItemsFor(override); !reflect.DeepEqual(got, want) {
		t.Fatalf("override = %v, want %v", got, want)
	}

	unknownOnly := core.Property{ID: "u", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{"jacuzzi"}}
	if got := RelevantItemsFor(unknownOnly); len(got) != 0 {
		t.Fatalf("override of unknown kinds only = %v, want empty (no fallback to defaults)", got)
	}
}
