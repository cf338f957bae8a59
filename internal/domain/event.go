package domain

import "google.golang.org/api/calendar/v3"

// EventInput is the caller-supplied event payload for create and update.
// On update, string fields left empty and nil slices are treated as
// absent and keep the existing value. IsMeeting is three-valued: true
// attaches a fresh Meet link, false strips conference data, nil leaves
// it untouched.
type EventInput struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Attendees   []string `json:"attendees"`
	IsMeeting   *bool    `json:"isMeeting"`
}

// MeetingRequest describes a standalone Meet event creation.
type MeetingRequest struct {
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Attendees []string `json:"attendees"`
}

// MeetingDetails is the outcome of creating a Meet event. MeetLink is
// nil when the provider returned no video entry point, which is an
// absence rather than an error.
type MeetingDetails struct {
	MeetLink    *string                `json:"meetLink"`
	EntryPoints []*calendar.EntryPoint `json:"entryPoints"`
	Event       *calendar.Event        `json:"event"`
}
