package services

import (
	"context"
	"fmt"

	"rentbook/internal/core"
	"rentbook/internal/fiscal"
	"rentbook/internal/log"
	"rentbook/internal/records"
)

// MoneyService records income, expenses and tenancies. Entries are saved to
// the store first; the ledger sync message is best effort.
type MoneyService struct {
	store     records.Store
	publisher Publisher
}

func NewMoneyService(store records.Store, publisher Publisher) *MoneyService {
	return &MoneyService{
		store:     store,
		publisher: publisher,
	}
}

// RecordEntry validates e, stamps its tax year and quarter from its date,
// saves it and publishes a ledger sync message.
func (s *MoneyService) RecordEntry(ctx context.Context, e core.MoneyEntry) (core.MoneyEntry, error) {
	if e.Type == "" {
		e.Type = e.Category.EntryType()
	}
	// amounts are kept in pence on every backend
	e.Amount = e.Amount.Round(2)
	if err := e.Validate(); err != nil {
		return core.MoneyEntry{}, fmt.Errorf("invalid money entry: %w", err)
	}
	if e.PropertyID != "" {
		if _, err := s.store.GetProperty(ctx, e.PropertyID); err != nil {
			return core.MoneyEntry{}, fmt.Errorf("get property: %w", err)
		}
	}
	fiscal.Assign(&e)

	saved, err := s.store.CreateEntry(ctx, e)
	if err != nil {
		return core.MoneyEntry{}, fmt.Errorf("save money entry: %w", err)
	}

	l := logger(ctx, log.ComponentMoney)
	l.InfoContext(ctx, "Money entry recorded",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithEntry(saved.ID, string(saved.Category), saved.Amount, saved.TaxYear, saved.Quarter).
			ToSlice()...)

	if err := s.publishSync(ctx, saved); err != nil {
		// The entry is stored; the worker's pending scan picks it up later.
		l.ErrorContext(ctx, "Failed to publish ledger sync message",
			log.FieldEntryID, saved.ID,
			log.FieldError, err)
	}
	return saved, nil
}

func (s *MoneyService) publishSync(ctx context.Context, e core.MoneyEntry) error {
	if s.publisher == nil {
		logger(ctx, log.ComponentMoney).WarnContext(ctx, "AMQP client not available, skipping sync message",
			log.FieldEntryID, e.ID)
		return nil
	}
	return s.publisher.PublishEntrySync(ctx, e.ID, e.TaxYear)
}

// Entries lists entries matching f, oldest first.
func (s *MoneyService) Entries(ctx context.Context, f records.EntryFilter) ([]core.MoneyEntry, error) {
	entries, err := s.store.ListEntries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list money entries: %w", err)
	}
	return entries, nil
}

// AddTenancy stores a tenancy against an existing property.
func (s *MoneyService) AddTenancy(ctx context.Context, t core.Tenancy) (core.Tenancy, error) {
	if err := t.Validate(); err != nil {
		return core.Tenancy{}, fmt.Errorf("invalid tenancy: %w", err)
	}
	if _, err := s.store.GetProperty(ctx, t.PropertyID); err != nil {
		return core.Tenancy{}, fmt.Errorf("get property: %w", err)
	}
	saved, err := s.store.CreateTenancy(ctx, t)
	if err != nil {
		return core.Tenancy{}, fmt.Errorf("save tenancy: %w", err)
	}
	logger(ctx, log.ComponentMoney).InfoContext(ctx, "Tenancy added",
		log.FieldPropertyID, saved.PropertyID,
		log.FieldAmount, saved.RentAmount.StringFixed(2),
		"frequency", saved.Frequency)
	return saved, nil
}
