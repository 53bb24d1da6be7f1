package services

import (
	"context"
	"fmt"
	"time"

	"rentbook/internal/amqp"
	"rentbook/internal/compliance"
	"rentbook/internal/core"
	"rentbook/internal/log"
	"rentbook/internal/records"
)

// ComplianceService orchestrates properties and their certificates across
// the record store and the alert queue.
type ComplianceService struct {
	store     records.Store
	publisher Publisher

	// Denominator selects the item set scores are weighted against.
	Denominator compliance.Denominator
}

func NewComplianceService(store records.Store, publisher Publisher) *ComplianceService {
	return &ComplianceService{
		store:       store,
		publisher:   publisher,
		Denominator: compliance.RelevantItems,
	}
}

// AddProperty validates and stores a new property.
func (s *ComplianceService) AddProperty(ctx context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, fmt.Errorf("invalid property: %w", err)
	}
	saved, err := s.store.CreateProperty(ctx, p)
	if err != nil {
		return core.Property{}, fmt.Errorf("save property: %w", err)
	}
	logger(ctx, log.ComponentCompliance).InfoContext(ctx, "Property added",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithProperty(saved.ID).
			ToSlice()...)
	return saved, nil
}

// RecordCompliance stores a certificate with its status derived against now.
func (s *ComplianceService) RecordCompliance(ctx context.Context, r core.ComplianceRecord, now core.Date) (core.ComplianceRecord, error) {
	if err := r.Validate(); err != nil {
		return core.ComplianceRecord{}, fmt.Errorf("invalid compliance record: %w", err)
	}
	if _, err := s.store.GetProperty(ctx, r.PropertyID); err != nil {
		return core.ComplianceRecord{}, fmt.Errorf("get property: %w", err)
	}
	r.Status = compliance.Classify(r.DueDate, now)
	saved, err := s.store.CreateCompliance(ctx, r)
	if err != nil {
		return core.ComplianceRecord{}, fmt.Errorf("save compliance record: %w", err)
	}
	logger(ctx, log.ComponentCompliance).InfoContext(ctx, "Compliance record added",
		log.FieldRecordID, saved.ID,
		log.FieldPropertyID, saved.PropertyID,
		log.FieldType, saved.Type,
		log.FieldStatus, saved.Status)
	return saved, nil
}

// SetEnabledTypes replaces the tracked item kinds of a property. Unknown kinds
// are rejected; duplicates are dropped. An empty list restores the category
// default.
func (s *ComplianceService) SetEnabledTypes(ctx context.Context, propertyID string, kinds []core.ComplianceType) (core.Property, error) {
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return core.Property{}, fmt.Errorf("get property: %w", err)
	}

	var enabled []core.ComplianceType
	seen := make(map[core.ComplianceType]bool, len(kinds))
	for _, k := range kinds {
		if !k.IsValid() {
			return core.Property{}, fmt.Errorf("%w: %q", core.ErrUnknownComplianceType, k)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		enabled = append(enabled, k)
	}

	p.EnabledComplianceTypes = enabled
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return core.Property{}, fmt.Errorf("update property: %w", err)
	}
	logger(ctx, log.ComponentCompliance).InfoContext(ctx, "Enabled compliance types updated",
		log.FieldPropertyID, p.ID,
		log.FieldCount, len(enabled))
	return p, nil
}

// RefreshResult summarises one RefreshStatuses pass.
type RefreshResult struct {
	Checked int
	Changed int
	Alerts  int
}

// RefreshStatuses recomputes every stored status against now, persists the
// ones that changed and publishes an alert for each record that moved into
// due soon or overdue. A failed update is logged and the pass continues.
func (s *ComplianceService) RefreshStatuses(ctx context.Context, now core.Date) (RefreshResult, error) {
	l := logger(ctx, log.ComponentCompliance)
	start := time.Now()

	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list properties: %w", err)
	}
	byID := make(map[string]core.Property, len(properties))
	for _, p := range properties {
		byID[p.ID] = p
	}

	recs, err := s.store.ListCompliance(ctx, "")
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list compliance records: %w", err)
	}

	var res RefreshResult
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		next := compliance.Classify(r.DueDate, now)
		if next == r.Status {
			continue
		}
		if err := s.store.UpdateComplianceStatus(ctx, r.ID, next); err != nil {
			l.ErrorContext(ctx, "Failed to update compliance status",
				log.NewFields().
					WithOperation(log.OpRefresh).
					WithTransition(r.ID, string(r.Status), string(next)).
					WithError(err).
					ToSlice()...)
			continue
		}
		res.Changed++
		l.InfoContext(ctx, "Compliance status changed",
			log.NewFields().
				WithOperation(log.OpRefresh).
				WithProperty(r.PropertyID).
				WithTransition(r.ID, string(r.Status), string(next)).
				ToSlice()...)

		if !compliance.NeedsAttention(r.Status, next) {
			continue
		}
		sent, err := s.publishAlert(ctx, alertFor(r, byID[r.PropertyID], next, now))
		if err != nil {
			l.ErrorContext(ctx, "Failed to publish compliance alert",
				log.FieldRecordID, r.ID,
				log.FieldError, err)
			continue
		}
		if sent {
			res.Alerts++
		}
	}

	l.InfoContext(ctx, "Compliance refresh completed",
		log.FieldCount, res.Checked,
		"changed", res.Changed,
		"alerts", res.Alerts,
		log.FieldDurationMs, time.Since(start).Milliseconds())
	return res, nil
}

func alertFor(r core.ComplianceRecord, p core.Property, status core.ComplianceStatus, now core.Date) *amqp.ComplianceAlertMessage {
	msg := &amqp.ComplianceAlertMessage{
		RecordID:       r.ID,
		PropertyID:     r.PropertyID,
		Property:       p.Nickname,
		ComplianceType: string(r.Type),
		Label:          r.Type.Label(),
		FromStatus:     string(r.Status),
		Status:         string(status),
		AsOf:           now.String(),
		Timestamp:      time.Now(),
	}
	if r.DueDate != nil {
		msg.DueDate = r.DueDate.String()
	}
	return msg
}

func (s *ComplianceService) publishAlert(ctx context.Context, msg *amqp.ComplianceAlertMessage) (bool, error) {
	if s.publisher == nil {
		logger(ctx, log.ComponentCompliance).WarnContext(ctx, "AMQP client not available, skipping compliance alert",
			log.FieldRecordID, msg.RecordID)
		return false, nil
	}
	if err := s.publisher.PublishComplianceAlert(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// PropertyReport is the compliance picture of one property at one day.
type PropertyReport struct {
	Property core.Property
	Category core.Category
	Score    int
	Relevant []core.ComplianceType
	Missing  []core.ComplianceType
	// Records carry statuses recomputed against the report day.
	Records []core.ComplianceRecord
}

// Counts returns how many records are in each status.
func (r PropertyReport) Counts() map[core.ComplianceStatus]int {
	counts := make(map[core.ComplianceStatus]int)
	for _, rec := range r.Records {
		counts[rec.Status]++
	}
	return counts
}

// PortfolioReport lists active properties lowest score first.
type PortfolioReport struct {
	AsOf         core.Date
	Properties   []PropertyReport
	OverallScore int
}

func (s *ComplianceService) PropertyReport(ctx context.Context, propertyID string, now core.Date) (PropertyReport, error) {
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return PropertyReport{}, fmt.Errorf("get property: %w", err)
	}
	recs, err := s.store.ListCompliance(ctx, propertyID)
	if err != nil {
		return PropertyReport{}, fmt.Errorf("list compliance records: %w", err)
	}
	return s.reportFor(p, recs, now), nil
}

// Portfolio scores every active property under the same now.
func (s *ComplianceService) Portfolio(ctx context.Context, now core.Date) (PortfolioReport, error) {
	properties, err := s.activeProperties(ctx)
	if err != nil {
		return PortfolioReport{}, err
	}
	recs, err := s.store.ListCompliance(ctx, "")
	if err != nil {
		return PortfolioReport{}, fmt.Errorf("list compliance records: %w", err)
	}

	byProperty := make(map[string]PropertyReport, len(properties))
	ranked := make([]compliance.PropertyScore, 0, len(properties))
	scores := make([]int, 0, len(properties))
	for _, p := range properties {
		rep := s.reportFor(p, recs, now)
		byProperty[p.ID] = rep
		ranked = append(ranked, compliance.PropertyScore{Property: p, Score: rep.Score})
		scores = append(scores, rep.Score)
	}
	compliance.RankByRisk(ranked)

	out := PortfolioReport{AsOf: now, OverallScore: compliance.Mean(scores)}
	for _, ps := range ranked {
		out.Properties = append(out.Properties, byProperty[ps.Property.ID])
	}
	logger(ctx, log.ComponentCompliance).DebugContext(ctx, "Portfolio scored",
		log.FieldOperation, log.OpScore,
		log.FieldCount, len(out.Properties),
		log.FieldScore, out.OverallScore)
	return out, nil
}

// reportFor accepts records of any property and keeps only p's.
func (s *ComplianceService) reportFor(p core.Property, recs []core.ComplianceRecord, now core.Date) PropertyReport {
	own := make([]core.ComplianceRecord, 0)
	for _, r := range recs {
		if r.PropertyID == p.ID {
			own = append(own, compliance.Reclassify(r, now))
		}
	}
	return PropertyReport{
		Property: p,
		Category: compliance.CategoryOf(p.Type),
		Score:    compliance.ScoreWith(p, own, now, s.Denominator),
		Relevant: compliance.RelevantItemsFor(p),
		Missing:  compliance.MissingItems(p, own),
		Records:  own,
	}
}

// Properties lists every property, inactive ones included, by nickname.
func (s *ComplianceService) Properties(ctx context.Context) ([]core.Property, error) {
	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return properties, nil
}

func (s *ComplianceService) activeProperties(ctx context.Context) ([]core.Property, error) {
	all, err := s.store.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	active := all[:0]
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func logger(ctx context.Context, component string) *log.Logger {
	return log.FromContext(ctx).WithComponent(component)
}
