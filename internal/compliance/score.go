package compliance

import (
	"sort"

	"rentbook/internal/core"
)

// Denominator selects which compliance kinds a score is measured against.
type Denominator int

const (
	// RelevantItems scores against the property's override or category default.
	RelevantItems Denominator = iota
	// FullCatalog scores every property against all known kinds.
	FullCatalog
)

func (d Denominator) items(p core.Property) []core.ComplianceType {
	if d == FullCatalog {
		return AllTypes()
	}
	return RelevantItemsFor(p)
}

// ScoreOf is ScoreWith using the relevant item set.
func ScoreOf(p core.Property, records []core.ComplianceRecord, now core.Date) int {
	return ScoreWith(p, records, now, RelevantItems)
}

// ScoreWith returns p's compliance score in [0,100].
//
// Each kind in the denominator carries an equal share of 100. A valid
// record earns the full share, a due soon record half, anything else
// nothing. Records of other properties and of unknown kinds are ignored.
// The total is rounded half up; an empty denominator scores 0.
func ScoreWith(p core.Property, records []core.ComplianceRecord, now core.Date, d Denominator) int {
	items := d.items(p)
	n := len(items)
	if n == 0 {
		return 0
	}
	reps := Representatives(p.ID, records)

	// Count in half shares to keep the arithmetic exact.
	halves := 0
	for _, t := range items {
		r, ok := reps[t]
		if !ok {
			continue
		}
		switch Classify(r.DueDate, now) {
		case core.StatusValid:
			halves += 2
		case core.StatusDueSoon:
			halves++
		}
	}
	// round(halves*100 / (2n)), half up
	return (halves*100 + n) / (2 * n)
}

// Representatives picks one record per compliance kind for property
// propertyID. Among duplicates the record with the soonest due date wins; a
// record with a due date beats one without; remaining ties go to the lowest
// ID, then to the earlier position in records.
func Representatives(propertyID string, records []core.ComplianceRecord) map[core.ComplianceType]core.ComplianceRecord {
	out := make(map[core.ComplianceType]core.ComplianceRecord)
	for _, r := range records {
		if r.PropertyID != propertyID || !r.Type.IsValid() {
			continue
		}
		cur, ok := out[r.Type]
		if !ok || preferred(r, cur) {
			out[r.Type] = r
		}
	}
	return out
}

// preferred reports whether a should replace b as representative. Strict, so
// earlier records win full ties.
func preferred(a, b core.ComplianceRecord) bool {
	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && !a.DueDate.Equal(b.DueDate.Time):
		return a.DueDate.Before(b.DueDate.Time)
	}
	return a.ID < b.ID
}

// MissingItems returns the relevant kinds of p that have no record at all,
// in the order of the relevant set.
func MissingItems(p core.Property, records []core.ComplianceRecord) []core.ComplianceType {
	reps := Representatives(p.ID, records)
	var missing []core.ComplianceType
	for _, t := range RelevantItemsFor(p) {
		if _, ok := reps[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// PortfolioScoreOf is the unweighted mean of the property scores, rounded
// half up. An empty portfolio scores 0.
func PortfolioScoreOf(properties []core.Property, records []core.ComplianceRecord, now core.Date) int {
	return PortfolioScoreWith(properties, records, now, RelevantItems)
}

// PortfolioScoreWith is PortfolioScoreOf with each property scored against
// the item set d selects.
func PortfolioScoreWith(properties []core.Property, records []core.ComplianceRecord, now core.Date, d Denominator) int {
	scores := make([]int, 0, len(properties))
	for _, p := range properties {
		scores = append(scores, ScoreWith(p, records, now, d))
	}
	return Mean(scores)
}

// Mean averages scores rounded half up; zero scores yield 0.
func Mean(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return (2*sum + len(scores)) / (2 * len(scores))
}

// PropertyScore pairs a property with its score for ranking.
type PropertyScore struct {
	Property core.Property
	Score    int
}

// RankByRisk orders scores lowest first, breaking ties by nickname then ID.
func RankByRisk(scores []PropertyScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Property.Nickname != b.Property.Nickname {
			return a.Property.Nickname < b.Property.Nickname
		}
		return a.Property.ID < b.Property.ID
	})
}
