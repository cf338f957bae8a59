package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

const (
	meetingSummary     = "Task-level Meet"
	meetingDescription = "Auto-generated Google Meet link"

	listMaxResults = 10
)

// CalendarService orchestrates event operations against the calendar
// provider. Every operation requires a TokenSet with a usable access
// token; absence fails before any provider call.
type CalendarService struct {
	calendar port.CalendarProvider
	timeout  time.Duration
}

// NewCalendarService creates a new calendar service. timeout bounds
// each provider call; zero means no explicit deadline.
func NewCalendarService(calendar port.CalendarProvider, timeout time.Duration) *CalendarService {
	return &CalendarService{calendar: calendar, timeout: timeout}
}

func (s *CalendarService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// newConferenceData builds a Meet creation request with a fresh
// idempotency key. No two calls share a request id.
func newConferenceData() *calendar.ConferenceData {
	return &calendar.ConferenceData{
		CreateRequest: &calendar.CreateConferenceRequest{
			RequestId:             uuid.NewString(),
			ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
		},
	}
}

// MeetLink extracts the video entry point URI from an event, or nil
// when the provider returned none.
func MeetLink(ev *calendar.Event) *string {
	if ev == nil || ev.ConferenceData == nil {
		return nil
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" {
			uri := ep.Uri
			return &uri
		}
	}
	return nil
}

// CreateMeeting creates a calendar event whose sole purpose is carrying
// a Meet link. A missing video entry point in the provider response is
// an absence, not an error.
func (s *CalendarService) CreateMeeting(ctx context.Context, tokens *domain.TokenSet, req domain.MeetingRequest) (*domain.MeetingDetails, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}

	start, err := parseWhen(req.StartTime, "")
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := parseWhen(req.EndTime, "")
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	ev := &calendar.Event{
		Summary:        meetingSummary,
		Description:    meetingDescription,
		Start:          start,
		End:            end,
		Attendees:      toAttendees(req.Attendees),
		ConferenceData: newConferenceData(),
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	created, err := s.calendar.InsertEvent(ctx, tokens, ev, 1)
	if err != nil {
		return nil, err
	}

	details := &domain.MeetingDetails{
		MeetLink: MeetLink(created),
		Event:    created,
	}
	if created.ConferenceData != nil {
		details.EntryPoints = created.ConferenceData.EntryPoints
	}

	slog.Info("meet event created", "event_id", created.Id, "has_link", details.MeetLink != nil)
	return details, nil
}

// CreateEvent creates an event from caller-supplied fields, attaching
// conference data only when isMeeting is explicitly true.
func (s *CalendarService) CreateEvent(ctx context.Context, tokens *domain.TokenSet, in domain.EventInput) (*calendar.Event, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}

	start, err := parseWhen(in.StartTime, "")
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}
	end, err := parseWhen(in.EndTime, "")
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	ev := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start:       start,
		End:         end,
		Attendees:   toAttendees(in.Attendees),
	}

	var conferenceVersion int64
	if in.IsMeeting != nil && *in.IsMeeting {
		ev.ConferenceData = newConferenceData()
		conferenceVersion = 1
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.calendar.InsertEvent(ctx, tokens, ev, conferenceVersion)
}

// UpdateEvent applies read-merge-write semantics: the existing event is
// fetched and only fields present and non-empty in the patch overwrite
// it. See mergeEvent for the merge and conference rules.
func (s *CalendarService) UpdateEvent(ctx context.Context, tokens *domain.TokenSet, eventID string, in domain.EventInput) (*calendar.Event, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}
	if eventID == "" {
		return nil, fmt.Errorf("event id: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	existing, err := s.calendar.GetEvent(ctx, tokens, eventID)
	if err != nil {
		return nil, err
	}

	merged, conferenceVersion, err := mergeEvent(existing, in)
	if err != nil {
		return nil, err
	}

	return s.calendar.UpdateEvent(ctx, tokens, eventID, merged, conferenceVersion)
}

// DeleteEvent deletes an event by id.
func (s *CalendarService) DeleteEvent(ctx context.Context, tokens *domain.TokenSet, eventID string) error {
	if !tokens.HasAccessToken() {
		return port.ErrUnauthenticated
	}
	if eventID == "" {
		return fmt.Errorf("event id: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.calendar.DeleteEvent(ctx, tokens, eventID)
}

// ListEvents returns up to 10 upcoming events ordered by start time.
func (s *CalendarService) ListEvents(ctx context.Context, tokens *domain.TokenSet) ([]*calendar.Event, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.calendar.ListUpcoming(ctx, tokens, listMaxResults)
}

// mergeEvent merges a patch into an existing event. String fields
// overwrite only when non-empty; an empty string keeps the existing
// value. Attendees replace only when the field was present in the
// request (non-nil slice). Conference data is three-state: isMeeting
// true regenerates a Meet link, false strips conference data, and an
// omitted isMeeting preserves whatever the event already had.
func mergeEvent(existing *calendar.Event, in domain.EventInput) (*calendar.Event, int64, error) {
	ev := &calendar.Event{
		Summary:     pick(in.Summary, existing.Summary),
		Description: pick(in.Description, existing.Description),
		Location:    pick(in.Location, existing.Location),
		Start:       existing.Start,
		End:         existing.End,
		Attendees:   existing.Attendees,
	}

	if in.StartTime != "" {
		start, err := parseWhen(in.StartTime, timeZoneOf(existing.Start))
		if err != nil {
			return nil, 0, fmt.Errorf("startTime: %w", err)
		}
		ev.Start = start
	}
	if in.EndTime != "" {
		end, err := parseWhen(in.EndTime, timeZoneOf(existing.End))
		if err != nil {
			return nil, 0, fmt.Errorf("endTime: %w", err)
		}
		ev.End = end
	}

	if in.Attendees != nil {
		ev.Attendees = toAttendees(in.Attendees)
	}

	var conferenceVersion int64
	switch {
	case in.IsMeeting == nil:
		ev.ConferenceData = existing.ConferenceData
	case *in.IsMeeting:
		ev.ConferenceData = newConferenceData()
		conferenceVersion = 1
	default:
		// Explicit false: a full-resource update without conference
		// data removes the Meet link from the event.
		ev.ConferenceData = nil
	}

	return ev, conferenceVersion, nil
}

func pick(patch, existing string) string {
	if patch != "" {
		return patch
	}
	return existing
}

func timeZoneOf(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.TimeZone
}

func toAttendees(emails []string) []*calendar.EventAttendee {
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return attendees
}

// parseWhen normalizes a caller-supplied timestamp into an event
// date-time in UTC, keeping the existing time zone label when one is
// given.
func parseWhen(value, timeZone string) (*calendar.EventDateTime, error) {
	if value == "" {
		return nil, fmt.Errorf("timestamp: %w", port.ErrMissingInput)
	}

	t, err := parseTimestamp(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid timestamp", port.ErrInvalidInput, value)
	}

	if timeZone == "" {
		timeZone = "UTC"
	}
	return &calendar.EventDateTime{
		DateTime: t.UTC().Format(time.RFC3339),
		TimeZone: timeZone,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
