package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

// Google caps channel lifetime for calendar resources at 24 hours.
const maxWatchTTL = 24 * time.Hour

// WatchService manages push-notification channels for the primary
// calendar. Each channel gets a generated id and its own verification
// secret; both are recorded in the channel store so inbound
// notifications can be authenticated.
type WatchService struct {
	calendar port.CalendarProvider
	store    port.ChannelStore
	address  string
	ttl      time.Duration
	timeout  time.Duration
}

// NewWatchService creates a new watch service. address is the publicly
// reachable callback URL the provider will push to; ttl bounds channel
// lifetime and is capped at the provider maximum.
func NewWatchService(calendar port.CalendarProvider, store port.ChannelStore, address string, ttl, timeout time.Duration) *WatchService {
	if ttl <= 0 || ttl > maxWatchTTL {
		ttl = maxWatchTTL
	}
	return &WatchService{
		calendar: calendar,
		store:    store,
		address:  address,
		ttl:      ttl,
		timeout:  timeout,
	}
}

func (s *WatchService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Start registers a new watch channel with the provider and records it
// in the channel store. owner is an opaque caller identifier, typically
// the session id.
func (s *WatchService) Start(ctx context.Context, tokens *domain.TokenSet, owner string) (*domain.WatchResult, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}

	channelID := uuid.NewString()
	secret := uuid.NewString()

	channel := &calendar.Channel{
		Id:      channelID,
		Type:    "web_hook",
		Address: s.address,
		Token:   secret,
		Params: map[string]string{
			"ttl": strconv.Itoa(int(s.ttl.Seconds())),
		},
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.calendar.Watch(ctx, tokens, channel)
	if err != nil {
		return nil, err
	}

	rec := &domain.ChannelRecord{
		ChannelID:  channelID,
		ResourceID: resp.ResourceId,
		Secret:     secret,
		Owner:      owner,
		Expiration: time.UnixMilli(resp.Expiration),
	}
	if err := s.store.SaveChannel(ctx, rec); err != nil {
		return nil, fmt.Errorf("record watch channel: %w", err)
	}

	slog.Info("watch channel registered",
		"channel_id", channelID,
		"resource_id", resp.ResourceId,
		"expiration", rec.Expiration,
	)

	return &domain.WatchResult{
		ChannelID:  channelID,
		ResourceID: resp.ResourceId,
		Expiration: resp.Expiration,
	}, nil
}

// Stop tears down a channel. Both identifiers from the creation
// response must be supplied together.
func (s *WatchService) Stop(ctx context.Context, tokens *domain.TokenSet, channelID, resourceID string) error {
	if !tokens.HasAccessToken() {
		return port.ErrUnauthenticated
	}
	if channelID == "" || resourceID == "" {
		return fmt.Errorf("channel id and resource id: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if err := s.calendar.StopWatch(ctx, tokens, channelID, resourceID); err != nil {
		return err
	}

	if err := s.store.DeleteChannel(ctx, channelID); err != nil {
		slog.Warn("failed to drop channel record", "channel_id", channelID, "error", err)
	}
	return nil
}

// VerifyNotification authenticates an inbound push by comparing the
// presented token against the per-channel secret issued at creation.
func (s *WatchService) VerifyNotification(ctx context.Context, channelID, token string) error {
	if channelID == "" {
		return port.ErrChannelNotFound
	}

	rec, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if rec.Secret != token {
		return port.ErrChannelTokenMismatch
	}
	return nil
}

// PruneExpired drops records for channels past their expiration. The
// provider tears those channels down on its own; this only keeps the
// store tidy.
func (s *WatchService) PruneExpired(ctx context.Context) (int, error) {
	expired, err := s.store.ListExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, rec := range expired {
		if err := s.store.DeleteChannel(ctx, rec.ChannelID); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
