// Package keyvalue implements the per-identity key-value scratch table.
package keyvalue

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Get returns the value for key, or (nil, nil) when absent.
	Get(ctx context.Context, identityID uuid.UUID, key []byte) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, identityID uuid.UUID, key, value []byte) error

	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, identityID uuid.UUID, key []byte) error

	// Clear removes every key of the identity.
	Clear(ctx context.Context, identityID uuid.UUID) error
}
