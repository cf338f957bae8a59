package port

import (
	"context"
	"time"

	"github.com/meetbridge/meetbridge/internal/domain"
)

// ChannelStore keeps watch channel records so inbound notifications can
// be verified against the per-channel secret issued at registration.
// GetChannel returns ErrChannelNotFound when the id is unknown.
type ChannelStore interface {
	SaveChannel(ctx context.Context, rec *domain.ChannelRecord) error
	GetChannel(ctx context.Context, channelID string) (*domain.ChannelRecord, error)
	DeleteChannel(ctx context.Context, channelID string) error

	// ListExpired returns channels whose expiration is at or before the
	// given time, for periodic cleanup.
	ListExpired(ctx context.Context, before time.Time) ([]*domain.ChannelRecord, error)

	Close() error
}
