package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	"github.com/meetbridge/meetbridge/internal/adapter/store"
	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/middleware"
	"github.com/meetbridge/meetbridge/internal/service"
)

// stubCalendar is a canned-response calendar provider.
type stubCalendar struct {
	calls int
	event *calendar.Event
	err   error
}

func (s *stubCalendar) GetEvent(context.Context, *domain.TokenSet, string) (*calendar.Event, error) {
	s.calls++
	return s.eventOr(), s.err
}

func (s *stubCalendar) InsertEvent(_ context.Context, _ *domain.TokenSet, ev *calendar.Event, _ int64) (*calendar.Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.event != nil {
		return s.event, nil
	}
	return ev, nil
}

func (s *stubCalendar) UpdateEvent(_ context.Context, _ *domain.TokenSet, _ string, ev *calendar.Event, _ int64) (*calendar.Event, error) {
	s.calls++
	return ev, s.err
}

func (s *stubCalendar) DeleteEvent(context.Context, *domain.TokenSet, string) error {
	s.calls++
	return s.err
}

func (s *stubCalendar) ListUpcoming(context.Context, *domain.TokenSet, int64) ([]*calendar.Event, error) {
	s.calls++
	return []*calendar.Event{s.eventOr()}, s.err
}

func (s *stubCalendar) Watch(_ context.Context, _ *domain.TokenSet, _ *calendar.Channel) (*calendar.Channel, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &calendar.Channel{ResourceId: "res-1", Expiration: time.Now().Add(time.Hour).UnixMilli()}, nil
}

func (s *stubCalendar) StopWatch(context.Context, *domain.TokenSet, string, string) error {
	s.calls++
	return s.err
}

func (s *stubCalendar) eventOr() *calendar.Event {
	if s.event != nil {
		return s.event
	}
	return &calendar.Event{Id: "ev-1", Summary: "Standup"}
}

// stubTasks is a canned-response task provider.
type stubTasks struct {
	calls int
	err   error
}

func (s *stubTasks) InsertTask(_ context.Context, _ *domain.TokenSet, task *tasks.Task) (*tasks.Task, error) {
	s.calls++
	return task, s.err
}

func (s *stubTasks) UpdateTask(_ context.Context, _ *domain.TokenSet, _ string, task *tasks.Task) (*tasks.Task, error) {
	s.calls++
	return task, s.err
}

func (s *stubTasks) DeleteTask(context.Context, *domain.TokenSet, string) error {
	s.calls++
	return s.err
}

// stubIdentity is a canned-response identity provider.
type stubIdentity struct {
	tokens *domain.TokenSet
	info   *domain.TokenInfo
	err    error
}

func (s *stubIdentity) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + state
}

func (s *stubIdentity) ExchangeCode(context.Context, string) (*domain.TokenSet, error) {
	return s.tokens, s.err
}

func (s *stubIdentity) RefreshToken(context.Context, string) (*domain.TokenSet, error) {
	return s.tokens, s.err
}

func (s *stubIdentity) ValidateToken(context.Context, string) (*domain.TokenInfo, error) {
	return s.info, s.err
}

type fixture struct {
	app      *fiber.App
	calendar *stubCalendar
	tasks    *stubTasks
	identity *stubIdentity
	channels *store.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		calendar: &stubCalendar{},
		tasks:    &stubTasks{},
		identity: &stubIdentity{tokens: &domain.TokenSet{AccessToken: "at-1", RefreshToken: "rt-1"}},
		channels: store.NewMemoryStore(),
	}

	f.app = fiber.New()
	f.app.Use(session.New())

	NewAuthHandler(service.NewAuthService(f.identity, 0)).Register(f.app)

	requireTokens := middleware.RequireTokens()
	api := f.app.Group("/api/google")
	NewCalendarHandler(
		service.NewCalendarService(f.calendar, 0),
		service.NewWatchService(f.calendar, f.channels, "https://example.com/cb", time.Hour, 0),
	).Register(api, requireTokens)
	NewTaskHandler(service.NewTaskService(f.tasks, 0)).Register(api, requireTokens)

	return f
}

func jsonReq(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

const bodyWithTokens = `{"tokens":{"access_token":"at-1"}`

func TestResourceRoutesRejectMissingTokens(t *testing.T) {
	f := newFixture(t)

	routes := []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/api/google/calendar/events"},
		{fiber.MethodPost, "/api/google/calendar/events"},
		{fiber.MethodPut, "/api/google/calendar/events/ev-1"},
		{fiber.MethodDelete, "/api/google/calendar/events/ev-1"},
		{fiber.MethodPost, "/api/google/calendar/meet/create"},
		{fiber.MethodPost, "/api/google/calendar/watch"},
		{fiber.MethodPost, "/api/google/calendar/stop-watch"},
		{fiber.MethodPost, "/api/google/tasks/"},
		{fiber.MethodPut, "/api/google/tasks/task-1"},
		{fiber.MethodDelete, "/api/google/tasks/task-1"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp, err := f.app.Test(jsonReq(route.method, route.path, `{}`))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}

	assert.Zero(t, f.calendar.calls, "no provider call may happen without a token")
	assert.Zero(t, f.tasks.calls)
}

func TestBodyTokensAccepted(t *testing.T) {
	f := newFixture(t)

	body := bodyWithTokens + `,"summary":"Standup","startTime":"2026-09-01T10:00:00Z","endTime":"2026-09-01T10:15:00Z"}`
	resp, err := f.app.Test(jsonReq(fiber.MethodPost, "/api/google/calendar/events", body))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.calendar.calls)

	out := decodeBody(t, resp)
	assert.Equal(t, "Standup", out["summary"])
	assert.Contains(t, out, "meetLink")
}

func TestSessionTokensAcceptedAfterExchange(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/auth/google/tokens?code=code-1", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	tokens := decodeBody(t, resp)
	assert.Equal(t, "at-1", tokens["access_token"])

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies, "exchange must establish a session")

	req := jsonReq(fiber.MethodGet, "/api/google/calendar/events", "")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	listResp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, listResp.StatusCode)

	out := decodeBody(t, listResp)
	assert.Contains(t, out, "response")
}

func TestExchangeMissingCode(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/auth/google/tokens", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginRedirectsToConsentScreen(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/auth/google", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "accounts.google.com")
}

func TestRefreshTokenMissingInput(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodPost, "/auth/google/refresh-token", `{}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRefreshTokenReturnsNewTokens(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodPost, "/auth/google/refresh-token", `{"refreshToken":"rt-1"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "at-1", out["access_token"])
}

func TestValidateTokenTaggedResult(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/auth/validate-token", `{}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		f := newFixture(t)
		f.identity.info = &domain.TokenInfo{ExpiresIn: 3599}

		resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/auth/validate-token", `{"access_token":"at-1"}`))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decodeBody(t, resp)
		assert.Equal(t, true, out["ok"])
		assert.Contains(t, out, "data")
	})

	t.Run("introspection failure", func(t *testing.T) {
		f := newFixture(t)
		f.identity.err = assert.AnError

		resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/auth/validate-token", `{"access_token":"bad"}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

		out := decodeBody(t, resp)
		assert.Equal(t, false, out["ok"])
		assert.Contains(t, out, "error")
	})
}

func TestStopWatchMissingIdentifiers(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodPost, "/api/google/calendar/stop-watch", bodyWithTokens+`,"channelId":"chan-1"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.calendar.calls)
}

func TestWatchLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodPost, "/api/google/calendar/watch", bodyWithTokens+`}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	channelID, _ := out["channelId"].(string)
	require.NotEmpty(t, channelID)
	assert.Equal(t, "res-1", out["resourceId"])
	assert.Contains(t, out, "expiration")

	stopBody := bodyWithTokens + `,"channelId":"` + channelID + `","resourceId":"res-1"}`
	stopResp, err := f.app.Test(jsonReq(fiber.MethodPost, "/api/google/calendar/stop-watch", stopBody))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, stopResp.StatusCode)
}

func TestNotificationsClassification(t *testing.T) {
	f := newFixture(t)

	// Register a channel so the receiver has a secret to verify against.
	watchResp, err := f.app.Test(jsonReq(fiber.MethodPost, "/api/google/calendar/watch", bodyWithTokens+`}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, watchResp.StatusCode)
	channelID, _ := decodeBody(t, watchResp)["channelId"].(string)

	rec, err := f.channels.GetChannel(context.Background(), channelID)
	require.NoError(t, err)

	notify := func(state, chanID, token string) *http.Response {
		req := jsonReq(fiber.MethodPost, "/api/google/calendar/notifications", "")
		if state != "" {
			req.Header.Set("X-Goog-Resource-State", state)
		}
		req.Header.Set("X-Goog-Channel-ID", chanID)
		req.Header.Set("X-Goog-Channel-Token", token)
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		return resp
	}

	for _, state := range []string{"sync", "exists", "not_exists"} {
		resp := notify(state, channelID, rec.Secret)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "state %q", state)
	}

	assert.Equal(t, fiber.StatusBadRequest, notify("bogus", channelID, rec.Secret).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, notify("", channelID, rec.Secret).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, notify("exists", channelID, "wrong-secret").StatusCode)
	assert.Equal(t, fiber.StatusForbidden, notify("exists", "unknown-channel", rec.Secret).StatusCode)
}

func TestDeleteEventMessage(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodDelete, "/api/google/calendar/events/ev-1", bodyWithTokens+`}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "Event deleted successfully.", out["message"])
}

func TestTaskRoutes(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(jsonReq(fiber.MethodPost, "/api/google/tasks/", bodyWithTokens+`,"title":"Write report","due":"2026-09-15"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "Write report", out["title"])
	assert.Equal(t, "2026-09-15T00:00:00Z", out["due"])

	delResp, err := f.app.Test(jsonReq(fiber.MethodDelete, "/api/google/tasks/task-1", bodyWithTokens+`}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, delResp.StatusCode)
	assert.Equal(t, "Task deleted successfully.", decodeBody(t, delResp)["message"])
}

func TestProviderErrorsSurfaceAs500(t *testing.T) {
	f := newFixture(t)
	f.calendar.err = assert.AnError

	resp, err := f.app.Test(jsonReq(fiber.MethodGet, "/api/google/calendar/events", bodyWithTokens+`}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Contains(t, out, "error")
}
