package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flussi/internal/amqp"
)

// DuePublisher carries due reminders out of the worker.
type DuePublisher interface {
	PublishFlowDue(ctx context.Context, msg *amqp.FlowDueMessage) error
}

// DueProcessor periodically surfaces projected flows whose next due date
// has arrived. It never mutates the ledger: executing a due flow is a
// human decision, the processor only reminds.
type DueProcessor struct {
	ledgers   *LedgerService
	publisher DuePublisher
}

func NewDueProcessor(ledgers *LedgerService, publisher DuePublisher) *DueProcessor {
	return &DueProcessor{
		ledgers:   ledgers,
		publisher: publisher,
	}
}

// ProcessDueFlows publishes one reminder per flow due on now's date and
// returns the number published. A failed publish is logged and skipped so
// the remaining reminders still go out.
func (p *DueProcessor) ProcessDueFlows(ctx context.Context, now time.Time) (int, error) {
	if p.ledgers == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	due := p.ledgers.DueFlows(now)

	slog.InfoContext(ctx, "Processing due flows",
		"due_count", len(due),
		"processing_date", now.Format("2006-01-02"))

	published := 0
	for _, f := range due {
		msg := amqp.NewFlowDueMessage(
			f.ID,
			f.Category,
			f.Amount.Cents,
			f.EveryDays,
			f.NextDue().Format("2006-01-02"),
		)
		if err := p.publisher.PublishFlowDue(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish due reminder",
				"flow_id", f.ID,
				"category", f.Category,
				"error", err)
			continue
		}
		published++
	}

	slog.InfoContext(ctx, "Due flow processing complete",
		"published", published,
		"total_due", len(due))
	return published, nil
}
