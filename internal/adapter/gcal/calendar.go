package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

const calendarID = "primary"

// Provider implements port.CalendarProvider against Google Calendar v3.
// A fresh service is built per call from the request's TokenSet, so no
// credential state leaks across requests.
type Provider struct{}

// NewProvider creates a new Google Calendar provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) service(ctx context.Context, tokens *domain.TokenSet) (*calendar.Service, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}
	src := oauth2.StaticTokenSource(tokens.OAuth2Token())
	svc, err := calendar.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("gcal: create calendar service: %w", err)
	}
	return svc, nil
}

// GetEvent fetches a single event by id from the primary calendar.
func (p *Provider) GetEvent(ctx context.Context, tokens *domain.TokenSet, eventID string) (*calendar.Event, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	ev, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: get event %s: %w", eventID, err)
	}
	return ev, nil
}

// InsertEvent creates an event on the primary calendar.
func (p *Provider) InsertEvent(ctx context.Context, tokens *domain.TokenSet, event *calendar.Event, conferenceVersion int64) (*calendar.Event, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	created, err := svc.Events.Insert(calendarID, event).
		ConferenceDataVersion(conferenceVersion).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: insert event: %w", err)
	}
	return created, nil
}

// UpdateEvent replaces an event by id, full-resource semantics.
func (p *Provider) UpdateEvent(ctx context.Context, tokens *domain.TokenSet, eventID string, event *calendar.Event, conferenceVersion int64) (*calendar.Event, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	updated, err := svc.Events.Update(calendarID, eventID, event).
		ConferenceDataVersion(conferenceVersion).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: update event %s: %w", eventID, err)
	}
	return updated, nil
}

// DeleteEvent deletes an event by id.
func (p *Provider) DeleteEvent(ctx context.Context, tokens *domain.TokenSet, eventID string) error {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcal: delete event %s: %w", eventID, err)
	}
	return nil
}

// ListUpcoming returns upcoming events ordered by start time, recurring
// events expanded into single instances.
func (p *Provider) ListUpcoming(ctx context.Context, tokens *domain.TokenSet, maxResults int64) ([]*calendar.Event, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	res, err := svc.Events.List(calendarID).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		ShowDeleted(false).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}
	return res.Items, nil
}

// Watch registers a push-notification channel for the primary calendar.
func (p *Provider) Watch(ctx context.Context, tokens *domain.TokenSet, channel *calendar.Channel) (*calendar.Channel, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Events.Watch(calendarID, channel).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: watch calendar: %w", err)
	}
	return resp, nil
}

// StopWatch tears down a previously registered channel.
func (p *Provider) StopWatch(ctx context.Context, tokens *domain.TokenSet, channelID, resourceID string) error {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return err
	}
	stop := &calendar.Channel{Id: channelID, ResourceId: resourceID}
	if err := svc.Channels.Stop(stop).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcal: stop channel %s: %w", channelID, err)
	}
	return nil
}
