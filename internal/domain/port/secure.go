package port

import "context"

// SecretStore is a small string key/value store kept encrypted at rest.
// Get returns "", nil for a missing key.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
