// Package panelstore persists filter panel snapshots between requests.
package panelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

// Store keeps one snapshot per session and list view in Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Store.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Load returns the stored snapshot or an empty one.
func (s *Store) Load(ctx context.Context, sessionID, view string) (filters.Snapshot, error) {
	payload, err := s.client.Get(ctx, key(sessionID, view)).Bytes()
	if errors.Is(err, redis.Nil) {
		return filters.Snapshot{}, nil
	}
	if err != nil {
		return filters.Snapshot{}, fmt.Errorf("panelstore: load: %w", err)
	}
	var snap filters.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return filters.Snapshot{}, fmt.Errorf("panelstore: decode: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot and refreshes its expiry.
func (s *Store) Save(ctx context.Context, sessionID, view string, snap filters.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("panelstore: encode: %w", err)
	}
	if err := s.client.Set(ctx, key(sessionID, view), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("panelstore: save: %w", err)
	}
	return nil
}

// Delete drops the snapshot of a view.
func (s *Store) Delete(ctx context.Context, sessionID, view string) error {
	if err := s.client.Del(ctx, key(sessionID, view)).Err(); err != nil {
		return fmt.Errorf("panelstore: delete: %w", err)
	}
	return nil
}

func key(sessionID, view string) string {
	return "listview:panel:" + sessionID + ":" + view
}
