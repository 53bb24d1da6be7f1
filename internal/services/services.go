// Package services orchestrates the compliance and fiscal engines across the
// record store and the message broker. Every operation that depends on the
// current day takes it as an explicit now so one pass sees one snapshot.
package services

import (
	"fmt"
	"io"

	"rentbook/internal/records"
)

// Services bundles the services sharing one store and one publisher.
type Services struct {
	Compliance *ComplianceService
	Money      *MoneyService
	Report     *ReportService

	store     records.Store
	publisher Publisher
}

func New(store records.Store, publisher Publisher) *Services {
	cs := NewComplianceService(store, publisher)
	return &Services{
		Compliance: cs,
		Money:      NewMoneyService(store, publisher),
		Report:     NewReportService(store, cs),
		store:      store,
		publisher:  publisher,
	}
}

// Close closes both the store and the publisher connection.
func (s *Services) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close services: %v", errs)
	}

	return nil
}
