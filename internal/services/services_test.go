package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"rentbook/internal/amqp"
	"rentbook/internal/core"
	"rentbook/internal/records/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	syncs  []string
	alerts []*amqp.ComplianceAlertMessage
	closed bool
}

func (f *fakePublisher) PublishEntrySync(_ context.Context, entryID, taxYear string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.syncs = append(f.syncs, entryID+"@"+taxYear)
	return nil
}

func (f *fakePublisher) PublishComplianceAlert(_ context.Context, msg *amqp.ComplianceAlertMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func date(y int, m time.Month, d int) core.Date {
	return core.NewDate(y, m, d)
}

func datePtr(y int, m time.Month, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func TestServices_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := New(memory.New(), pub)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !pub.closed {
		t.Error("publisher should be closed")
	}

	// nil publisher is allowed
	if err := New(memory.New(), nil).Close(); err != nil {
		t.Fatalf("Close() with nil publisher error = %v", err)
	}
}

func TestNew_SharesComplianceWithReport(t *testing.T) {
	svc := New(memory.New(), nil)
	if svc.Report.compliance != svc.Compliance {
		t.Error("report service should score through the compliance service")
	}
}
