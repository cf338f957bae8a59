package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/middleware"
	"github.com/meetbridge/meetbridge/internal/service"
)

// Resource states carried by the X-Goog-Resource-State header on push
// notifications.
const (
	resourceStateSync      = "sync"
	resourceStateExists    = "exists"
	resourceStateNotExists = "not_exists"
)

// CalendarHandler handles calendar event, meet, and watch endpoints.
type CalendarHandler struct {
	events *service.CalendarService
	watch  *service.WatchService
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(events *service.CalendarService, watch *service.WatchService) *CalendarHandler {
	return &CalendarHandler{events: events, watch: watch}
}

// Register sets up calendar routes. requireTokens guards every route
// except the provider-facing notification callback.
func (h *CalendarHandler) Register(api fiber.Router, requireTokens fiber.Handler) {
	cal := api.Group("/calendar")
	cal.Get("/events", h.ListEvents, requireTokens)
	cal.Post("/events", h.CreateEvent, requireTokens)
	cal.Put("/events/:eventId", h.UpdateEvent, requireTokens)
	cal.Delete("/events/:eventId", h.DeleteEvent, requireTokens)
	cal.Post("/meet/create", h.CreateMeeting, requireTokens)
	cal.Post("/watch", h.StartWatch, requireTokens)
	cal.Post("/stop-watch", h.StopWatch, requireTokens)
	cal.Post("/notifications", h.Notifications)
}

// ListEvents returns up to 10 upcoming events ordered by start time.
func (h *CalendarHandler) ListEvents(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	events, err := h.events.ListEvents(c.Context(), tokens)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"response": events})
}

// CreateEvent creates an event from caller-supplied fields.
func (h *CalendarHandler) CreateEvent(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	var in domain.EventInput
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ev, err := h.events.CreateEvent(c.Context(), tokens, in)
	if err != nil {
		return fail(c, err)
	}

	out, err := eventJSON(ev)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// UpdateEvent merges a patch into an existing event.
func (h *CalendarHandler) UpdateEvent(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	var in domain.EventInput
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ev, err := h.events.UpdateEvent(c.Context(), tokens, c.Params("eventId"), in)
	if err != nil {
		return fail(c, err)
	}

	out, err := eventJSON(ev)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// DeleteEvent deletes an event by id.
func (h *CalendarHandler) DeleteEvent(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	if err := h.events.DeleteEvent(c.Context(), tokens, c.Params("eventId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Event deleted successfully."})
}

// CreateMeeting creates a Meet event and returns the join link.
func (h *CalendarHandler) CreateMeeting(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	var req domain.MeetingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	details, err := h.events.CreateMeeting(c.Context(), tokens, req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"meetLink":    details.MeetLink,
		"entryPoints": details.EntryPoints,
		"event":       details.Event,
	})
}

// StartWatch registers a push-notification channel for the caller's
// primary calendar.
func (h *CalendarHandler) StartWatch(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	result, err := h.watch.Start(c.Context(), tokens, middleware.SessionID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Watch channel registered.",
		"channelId":  result.ChannelID,
		"resourceId": result.ResourceID,
		"expiration": result.Expiration,
	})
}

// StopWatch tears down a channel; channelId and resourceId must both
// come from the creation response.
func (h *CalendarHandler) StopWatch(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	var body struct {
		ChannelID  string `json:"channelId"`
		ResourceID string `json:"resourceId"`
	}
	_ = c.Bind().JSON(&body)

	if body.ChannelID == "" || body.ResourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "channelId and resourceId are required.",
		})
	}

	if err := h.watch.Stop(c.Context(), tokens, body.ChannelID, body.ResourceID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Watch channel stopped."})
}

// Notifications receives push notifications from the calendar
// provider. The resource state header classifies the push; the channel
// token header must match the per-channel secret issued at creation.
// Reacting to a change beyond acknowledging it is an extension point.
func (h *CalendarHandler) Notifications(c fiber.Ctx) error {
	state := c.Get("X-Goog-Resource-State")

	switch state {
	case resourceStateSync, resourceStateExists, resourceStateNotExists:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resource state",
		})
	}

	channelID := c.Get("X-Goog-Channel-ID")
	token := c.Get("X-Goog-Channel-Token")
	if err := h.watch.VerifyNotification(c.Context(), channelID, token); err != nil {
		return fail(c, err)
	}

	if state == resourceStateSync {
		return c.JSON(fiber.Map{"message": "sync acknowledged"})
	}

	slog.Info("calendar change notification",
		"channel_id", channelID,
		"resource_state", state,
		"resource_id", c.Get("X-Goog-Resource-ID"),
	)
	return c.JSON(fiber.Map{"message": "notification received"})
}
