package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"google.golang.org/api/calendar/v3"

	"github.com/meetbridge/meetbridge/internal/port"
	"github.com/meetbridge/meetbridge/internal/service"
)

// statusFor maps sentinel errors onto HTTP status codes. Anything else
// is a provider failure and surfaces as 500 with the raw error text in
// the body.
func statusFor(err error) int {
	switch {
	case errors.Is(err, port.ErrMissingInput), errors.Is(err, port.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, port.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, port.ErrChannelNotFound), errors.Is(err, port.ErrChannelTokenMismatch):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// eventJSON renders an event as its provider JSON with a meetLink key
// merged in, null when the event carries no video entry point.
func eventJSON(ev *calendar.Event) (fiber.Map, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var m fiber.Map
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["meetLink"] = service.MeetLink(ev)
	return m, nil
}
