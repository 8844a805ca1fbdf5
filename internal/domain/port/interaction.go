package port

import (
	"context"

	"prxwallet/internal/domain/model"
)

// Authenticator is the local identity check run before a submission.
type Authenticator interface {
	Available(ctx context.Context) bool
	Authenticate(ctx context.Context, reason string) error
}

// Confirmer shows the summary and reports whether the user accepted it.
type Confirmer interface {
	Confirm(ctx context.Context, s model.Summary) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, e model.Event) error
}
