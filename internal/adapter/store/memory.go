package store

import (
	"context"
	"sync"
	"time"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

// MemoryStore is an in-process channel store used when no DATABASE_URL
// is configured. Records do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	channels map[string]*domain.ChannelRecord
}

// NewMemoryStore creates an empty in-memory channel store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{channels: make(map[string]*domain.ChannelRecord)}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// SaveChannel inserts or replaces a channel record by channel id.
func (s *MemoryStore) SaveChannel(_ context.Context, rec *domain.ChannelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.channels[cp.ChannelID] = &cp
	return nil
}

// GetChannel retrieves a channel record by channel id.
func (s *MemoryStore) GetChannel(_ context.Context, channelID string) (*domain.ChannelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.channels[channelID]
	if !ok {
		return nil, port.ErrChannelNotFound
	}
	cp := *rec
	return &cp, nil
}

// DeleteChannel removes a channel record by channel id.
func (s *MemoryStore) DeleteChannel(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.channels, channelID)
	return nil
}

// ListExpired returns channels whose expiration is at or before the
// given time.
func (s *MemoryStore) ListExpired(_ context.Context, before time.Time) ([]*domain.ChannelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []*domain.ChannelRecord
	for _, rec := range s.channels {
		if !rec.Expiration.After(before) {
			cp := *rec
			recs = append(recs, &cp)
		}
	}
	return recs, nil
}
