package port

import (
	"context"

	"prxwallet/internal/domain/model"
)

// JournalPort keeps a local record of submission attempts.
type JournalPort interface {
	SaveReceipt(ctx context.Context, r model.Receipt) error
	ListReceipts(ctx context.Context, limit int) ([]model.Receipt, error)
	Ping(ctx context.Context) error
	Close() error
}
