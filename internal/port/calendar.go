package port

import (
	"context"

	"google.golang.org/api/calendar/v3"

	"github.com/meetbridge/meetbridge/internal/domain"
)

// CalendarProvider is the outbound port for the calendar service. Every
// call builds a short-lived authenticated client from the supplied
// TokenSet; no client state is shared across requests. All operations
// target the primary calendar.
type CalendarProvider interface {
	GetEvent(ctx context.Context, tokens *domain.TokenSet, eventID string) (*calendar.Event, error)

	// InsertEvent creates an event. conferenceVersion must be 1 when the
	// event carries a conference create request, 0 otherwise.
	InsertEvent(ctx context.Context, tokens *domain.TokenSet, event *calendar.Event, conferenceVersion int64) (*calendar.Event, error)

	// UpdateEvent replaces an event by id, full-resource semantics.
	UpdateEvent(ctx context.Context, tokens *domain.TokenSet, eventID string, event *calendar.Event, conferenceVersion int64) (*calendar.Event, error)

	DeleteEvent(ctx context.Context, tokens *domain.TokenSet, eventID string) error

	// ListUpcoming returns up to maxResults events starting at or after
	// now, ordered by start time, with recurring events expanded.
	ListUpcoming(ctx context.Context, tokens *domain.TokenSet, maxResults int64) ([]*calendar.Event, error)

	// Watch registers a push-notification channel for the primary
	// calendar and returns the provider's channel descriptor, which
	// carries the resource id and expiration.
	Watch(ctx context.Context, tokens *domain.TokenSet, channel *calendar.Channel) (*calendar.Channel, error)

	// StopWatch tears down a channel; both identifiers from the creation
	// response are required.
	StopWatch(ctx context.Context, tokens *domain.TokenSet, channelID, resourceID string) error
}
