package compliance

import (
	"testing"
	"time"

	"rentbook/internal/core"
)

var today = core.NewDate(2024, time.June, 1)

func record(id, propertyID string, typ core.ComplianceType, due *core.Date) core.ComplianceRecord {
	return core.ComplianceRecord{ID: id, PropertyID: propertyID, Type: typ, DueDate: due}
}

func validDue() *core.Date   { return datePtr(today.AddDays(200)) }
func dueSoon() *core.Date    { return datePtr(today.AddDays(10)) }
func overdueDue() *core.Date { return datePtr(today.AddDays(-10)) }

func TestScoreOfResidentialPartial(t *testing.T) {
	p := core.Property{ID: "p1", Type: core.House}
	records := []core.ComplianceRecord{
		record("a", "p1", core.GasSafety, validDue()),
		record("b", "p1", core.EICR, dueSoon()),
	}
	// (1 + 0.5) * 100/11 = 13.64
	if got := ScoreOf(p, records, today); got != 14 {
		t.Fatalf("ScoreOf() = %d, want 14", got)
	}
}

func TestScoreOfEdges(t *testing.T) {
	tests := []struct {
		name    string
		p       core.Property
		records []core.ComplianceRecord
		want    int
	}{
		{
			name: "no records",
			p:    core.Property{ID: "p", Type: core.Flat},
			want: 0,
		},
		{
			name: "empty relevant set",
			p:    core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{"unknown"}},
			want: 0,
		},
		{
			name: "all valid",
			p:    core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC, core.EICR}},
			records: []core.ComplianceRecord{
				record("1", "p", core.EPC, validDue()),
				record("2", "p", core.EICR, validDue()),
			},
			want: 100,
		},
		{
			name: "half point rounds up",
			p:    core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC, core.EICR, core.GasSafety, core.RightToRent}},
			records: []core.ComplianceRecord{
				record("1", "p", core.EPC, dueSoon()),
			},
			want: 13, // 12.5
		},
		{
			name: "overdue and not set earn nothing",
			p:    core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC, core.EICR}},
			records: []core.ComplianceRecord{
				record("1", "p", core.EPC, overdueDue()),
				record("2", "p", core.EICR, nil),
			},
			want: 0,
		},
		{
			name: "unknown kinds and other properties ignored",
			p:    core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC}},
			records: []core.ComplianceRecord{
				record("1", "p", "retired_kind", validDue()),
				record("2", "other", core.EPC, validDue()),
			},
			want: 0,
		},
		{
			name: "stale stored status is recomputed",
			p:    core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC}},
			records: []core.ComplianceRecord{
				{ID: "1", PropertyID: "p", Type: core.EPC, DueDate: overdueDue(), Status: core.StatusValid},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreOf(tt.p, tt.records, today); got != tt.want {
				t.Errorf("ScoreOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreOfCommercialUsesCommercialDefault(t *testing.T) {
	p := core.Property{ID: "r", Type: core.Restaurant}
	var records []core.ComplianceRecord
	for i, ct := range DefaultItemsFor(core.Commercial) {
		records = append(records, record(string(rune('a'+i)), "r", ct, validDue()))
	}
	if got := ScoreOf(p, records, today); got != 100 {
		t.Fatalf("ScoreOf() = %d, want 100", got)
	}
	// A residential-only kind does not count for a restaurant.
	only := []core.ComplianceRecord{record("x", "r", core.DepositProtection, validDue())}
	if got := ScoreOf(p, only, today); got != 0 {
		t.Fatalf("ScoreOf() = %d, want 0", got)
	}
}

func TestScoreWithFullCatalog(t *testing.T) {
	p := core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC}}
	records := []core.ComplianceRecord{record("1", "p", core.EPC, validDue())}
	if got := ScoreWith(p, records, today, RelevantItems); got != 100 {
		t.Fatalf("relevant score = %d, want 100", got)
	}
	// 100/16 = 6.25
	if got := ScoreWith(p, records, today, FullCatalog); got != 6 {
		t.Fatalf("full catalog score = %d, want 6", got)
	}
}

func TestScoreMonotonic(t *testing.T) {
	p := core.Property{ID: "p", Type: core.House}
	steps := []*core.Date{nil, overdueDue(), dueSoon(), validDue()}
	prev := -1
	for _, due := range steps {
		records := []core.ComplianceRecord{
			record("1", "p", core.GasSafety, validDue()),
			record("2", "p", core.EPC, due),
		}
		got := ScoreOf(p, records, today)
		if got < prev || got < 0 || got > 100 {
			t.Fatalf("score %d after %d breaks monotonicity", got, prev)
		}
		prev = got
	}
}

func TestRepresentatives(t *testing.T) {
	early := datePtr(today.AddDays(5))
	late := datePtr(today.AddDays(100))

	tests := []struct {
		name    string
		records []core.ComplianceRecord
		wantID  string
	}{
		{"soonest due wins", []core.ComplianceRecord{record("a", "p", core.EPC, late), record("b", "p", core.EPC, early)}, "b"},
		{"dated beats undated", []core.ComplianceRecord{record("a", "p", core.EPC, nil), record("b", "p", core.EPC, late)}, "b"},
		{"same date lowest id", []core.ComplianceRecord{record("z", "p", core.EPC, early), record("m", "p", core.EPC, early)}, "m"},
		{"full tie keeps first", []core.ComplianceRecord{{PropertyID: "p", Type: core.EPC, Notes: "first"}, {PropertyID: "p", Type: core.EPC, Notes: "second"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Representatives("p", tt.records)[core.EPC]
			if got.ID != tt.wantID {
				t.Errorf("representative = %q, want %q", got.ID, tt.wantID)
			}
			if tt.wantID == "" && got.Notes != "first" {
				t.Errorf("full tie picked %q", got.Notes)
			}
		})
	}

	// The representative decides the score: soonest is overdue.
	p := core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC}}
	dups := []core.ComplianceRecord{record("1", "p", core.EPC, validDue()), record("2", "p", core.EPC, overdueDue())}
	if got := ScoreOf(p, dups, today); got != 0 {
		t.Fatalf("duplicate score = %d, want 0", got)
	}
}

func TestMissingItems(t *testing.T) {
	p := core.Property{ID: "p", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC, core.EICR, core.GasSafety}}
	records := []core.ComplianceRecord{record("1", "p", core.EICR, nil)}
	got := MissingItems(p, records)
	if len(got) != 2 || got[0] != core.EPC || got[1] != core.GasSafety {
		t.Fatalf("MissingItems() = %v", got)
	}
}

func TestPortfolioScoreOf(t *testing.T) {
	if got := PortfolioScoreOf(nil, nil, today); got != 0 {
		t.Fatalf("empty portfolio = %d, want 0", got)
	}

	single := core.Property{ID: "p", Type: core.House}
	recs := []core.ComplianceRecord{record("1", "p", core.GasSafety, validDue()), record("2", "p", core.EICR, dueSoon())}
	if got, want := PortfolioScoreOf([]core.Property{single}, recs, today), ScoreOf(single, recs, today); got != want {
		t.Fatalf("single portfolio = %d, want %d", got, want)
	}

	if got := Mean([]int{80, 40}); got != 60 {
		t.Fatalf("Mean(80, 40) = %d, want 60", got)
	}
	if got := Mean([]int{50, 51}); got != 51 {
		t.Fatalf("Mean(50, 51) = %d, want 51", got)
	}

	// Unweighted: a 1-item property and an 11-item property count equally.
	small := core.Property{ID: "s", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC}}
	big := core.Property{ID: "b", Type: core.House}
	mixed := []core.ComplianceRecord{record("1", "s", core.EPC, validDue())}
	if got := PortfolioScoreOf([]core.Property{small, big}, mixed, today); got != 50 {
		t.Fatalf("portfolio = %d, want 50", got)
	}
}

func TestPortfolioScoreWith(t *testing.T) {
	small := core.Property{ID: "s", Type: core.Flat, EnabledComplianceTypes: []core.ComplianceType{core.EPC}}
	big := core.Property{ID: "b", Type: core.House}
	props := []core.Property{small, big}
	recs := []core.ComplianceRecord{record("1", "s", core.EPC, validDue())}

	tests := []struct {
		name string
		d    Denominator
		want int
	}{
		{"relevant items", RelevantItems, 50},
		// (6 + 0) / 2
		{"full catalog", FullCatalog, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PortfolioScoreWith(props, recs, today, tt.d); got != tt.want {
				t.Errorf("PortfolioScoreWith() = %d, want %d", got, tt.want)
			}
		})
	}
	if got := PortfolioScoreWith(nil, recs, today, FullCatalog); got != 0 {
		t.Errorf("empty portfolio = %d, want 0", got)
	}
}

func TestRankByRisk(t *testing.T) {
	scores := []PropertyScore{
		{Property: core.Property{ID: "1", Nickname: "Oak"}, Score: 80},
		{Property: core.Property{ID: "2", Nickname: "Elm"}, Score: 40},
		{Property: core.Property{ID: "3", Nickname: "Ash"}, Score: 80},
	}
	RankByRisk(scores)
	order := []string{scores[0].Property.Nickname, scores[1].Property.Nickname, scores[2].Property.Nickname}
	if order[0] != "Elm" || order[1] != "Ash" || order[2] != "Oak" {
		t.Fatalf("RankByRisk order = %v", order)
	}
}
