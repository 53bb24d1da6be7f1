// Package compliance derives certificate statuses and compliance scores.
//
// Every function takes the reference day explicitly; nothing here reads the
// clock. Callers scoring a whole portfolio must pass the same day to every
// call so that one pass sees one snapshot.
package compliance

import "rentbook/internal/core"

// DueSoonWindow is the number of days before the due date during which a
// record is reported as due soon. Per-record reminder days do not change it.
const DueSoonWindow = 30

// Classify derives the status of a record due on due, as seen on now.
// A nil due date is not set; the due day itself is still due soon.
func Classify(due *core.Date, now core.Date) core.ComplianceStatus {
	if due == nil {
		return core.StatusNotSet
	}
	days := now.DaysUntil(*due)
	switch {
	case days < 0:
		return core.StatusOverdue
	case days <= DueSoonWindow:
		return core.StatusDueSoon
	default:
		return core.StatusValid
	}
}

// Reclassify returns a copy of r with Status recomputed for now.
func Reclassify(r core.ComplianceRecord, now core.Date) core.ComplianceRecord {
	r.Status = Classify(r.DueDate, now)
	return r
}

// NeedsAttention reports whether moving from one status to another should
// alert the owner: a change into due soon or overdue.
func NeedsAttention(from, to core.ComplianceStatus) bool {
	if from == to {
		return false
	}
	return to == core.StatusDueSoon || to == core.StatusOverdue
}
