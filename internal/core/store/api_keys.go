package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateAPIKey records the HMAC hash of a newly minted key for shopID and
// returns the key's record ID. The key itself is never stored.
func (s *Store) CreateAPIKey(ctx context.Context, shopID int64, name string, keyHash []byte) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	if _, err := s.queries.Exec(ctx, "insert-api-key", id, shopID, name, keyHash, s.now().UTC()); err != nil {
		return "", fmt.Errorf("failed to insert api key: %w", err)
	}
	return id, nil
}

// RevokeAPIKey marks a key revoked. Revoking twice is a no-op.
func (s *Store) RevokeAPIKey(ctx context.Context, apiKeyID string) error {
	if _, err := s.queries.Exec(ctx, "revoke-api-key", s.now().UTC(), apiKeyID); err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return nil
}
