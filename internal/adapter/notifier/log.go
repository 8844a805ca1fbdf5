// Package notifier delivers wallet events to the user and to downstream
// consumers.
package notifier

import (
	"context"
	"errors"
	"log/slog"

	"prxwallet/internal/domain/model"
	"prxwallet/internal/domain/port"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, e model.Event) error {
	n.log.Info("wallet event",
		"type", e.Type,
		"receipt_id", e.ReceiptID,
		"route", e.Route,
		"amount", e.Amount,
		"currency", e.Currency)
	return nil
}

// Multi fans an event out to every sink and joins their errors.
type Multi []port.Notifier

func (m Multi) Notify(ctx context.Context, e model.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
