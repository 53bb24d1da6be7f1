package services

import (
	"context"

	"rentbook/internal/amqp"
)

// Publisher carries change notifications to the message broker.
// *amqp.Client satisfies it. A nil Publisher disables publishing.
type Publisher interface {
	PublishEntrySync(ctx context.Context, entryID, taxYear string) error
	PublishComplianceAlert(ctx context.Context, msg *amqp.ComplianceAlertMessage) error
}
