package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"athletics/internal/apperr"
	"athletics/internal/auth"
	"athletics/internal/config"
	"athletics/internal/importer"
	"athletics/internal/model"
	"athletics/internal/schedule"
	"athletics/internal/store"
)

const adminPassword = "letmein-admin"

var testNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) Run(ctx context.Context, req importer.Request) (importer.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(importer.Result), args.Error(1)
}

type fixture struct {
	srv      *Server
	stores   *store.Stores
	codec    *auth.Codec
	importer *mockImporter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := auth.NewCodec("test-secret")
	require.NoError(t, err)
	codec = codec.WithClock(func() time.Time { return testNow })

	cfg := config.DefaultConfig()
	st := store.Open(t.TempDir())
	imp := &mockImporter{}
	srv := NewServer(Deps{
		Config:   cfg,
		Secrets:  &config.Secrets{CookieSecret: "test-secret", AdminPassword: adminPassword},
		Codec:    codec,
		Stores:   st,
		Importer: imp,
		Now:      func() time.Time { return testNow },
	})
	return &fixture{srv: srv, stores: st, codec: codec, importer: imp}
}

func (f *fixture) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func (f *fixture) adminCookie() *http.Cookie {
	return &http.Cookie{Name: auth.AdminCookie, Value: f.codec.GenerateAdminToken()}
}

func (f *fixture) ownerCookie(sport string) *http.Cookie {
	return &http.Cookie{Name: auth.SportCookie, Value: f.codec.GenerateSportToken(sport)}
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func cookieNamed(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())
}

func TestAdminAuth(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/admin-auth", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Incorrect password.", decode(t, rr)["message"])
	assert.Nil(t, cookieNamed(rr, auth.AdminCookie))

	rr = f.do(t, http.MethodPost, "/api/admin-auth", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/admin-auth", `{"password":"`+adminPassword+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["success"])
	ck := cookieNamed(rr, auth.AdminCookie)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, int(auth.SessionTTL.Seconds()), ck.MaxAge)

	rr = f.do(t, http.MethodGet, "/api/session-info", "", ck)
	assert.Equal(t, "admin", decode(t, rr)["role"])

	rr = f.do(t, http.MethodDelete, "/api/admin-auth", "", ck)
	assert.Equal(t, http.StatusOK, rr.Code)
	cleared := cookieNamed(rr, auth.AdminCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, "", cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestAdminAuth_NotConfigured(t *testing.T) {
	f := newFixture(t)
	f.srv.secrets = &config.Secrets{CookieSecret: "test-secret"}

	rr := f.do(t, http.MethodPost, "/api/admin-auth", `{"password":"anything"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Server is not configured for authentication.", decode(t, rr)["message"])
}

func TestSessionInfo_None(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/session-info", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "none", body["role"])
	assert.NotContains(t, body, "sport")

	rr = f.do(t, http.MethodGet, "/api/session-info", "", &http.Cookie{Name: auth.AdminCookie, Value: "123.forged"})
	assert.Equal(t, "none", decode(t, rr)["role"])
}

func TestPageOwners(t *testing.T) {
	f := newFixture(t)
	admin := f.adminCookie()

	rr := f.do(t, http.MethodGet, "/api/page-owners", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/page-owners", `{"sport":"football","password":"short"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/page-owners", `{"sport":"curling","password":"longenough"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/page-owners", `{"sport":"football","password":"longenough"}`, admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/page-owners", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"football"}, body["sports"])

	rr = f.do(t, http.MethodGet, "/api/page-owners", "", f.ownerCookie("football"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/page-owners", `{"sport":"football"}`, admin)
	require.Equal(t, http.StatusOK, rr.Code)
	sports, err := f.stores.Owners.Sports()
	require.NoError(t, err)
	assert.Empty(t, sports)
}

func TestPageOwnerAuth(t *testing.T) {
	f := newFixture(t)
	h, err := auth.HashPassword("coach-password")
	require.NoError(t, err)
	require.NoError(t, f.stores.Owners.Set("softball", h))

	rr := f.do(t, http.MethodPost, "/api/page-owner-auth", `{"sport":"softball","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/page-owner-auth", `{"sport":"baseball","password":"coach-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/page-owner-auth", `{"sport":"softball"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/page-owner-auth", `{"sport":"softball","password":"coach-password"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	ck := cookieNamed(rr, auth.SportCookie)
	require.NotNil(t, ck)

	rr = f.do(t, http.MethodGet, "/api/session-info", "", ck)
	body := decode(t, rr)
	assert.Equal(t, "pageowner", body["role"])
	assert.Equal(t, "softball", body["sport"])

	rr = f.do(t, http.MethodDelete, "/api/page-owner-auth", "", ck)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, cookieNamed(rr, auth.SportCookie))
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]any)
	assert.Equal(t, "Crusaders", data["mascot"])
	assert.Equal(t, "max-age=0, no-cache, must-revalidate, proxy-revalidate", rr.Header().Get("Cache-Control"))

	rr = f.do(t, http.MethodPost, "/api/settings", `{"mascot":"Lions"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/settings", `{"mascot":"Lions"}`, f.ownerCookie("football"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/settings", `{"mascot":"Lions","theme":{"dark":true}}`, f.adminCookie())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got, err := f.stores.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "Lions", got.Mascot)
	assert.Equal(t, "Lancaster Catholic High School", got.SchoolName)
	theme, ok := got.Extra("theme")
	require.True(t, ok)
	assert.JSONEq(t, `{"dark":true}`, string(theme))

	rr = f.do(t, http.MethodPost, "/api/settings", `["not","an","object"]`, f.adminCookie())
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateSport(t *testing.T) {
	f := newFixture(t)

	scheduleBody := `{"sport":"football","type":"schedule","data":[{"date":"Sep 5, 2026","time":"7:00 PM","opponent":"Central","homeAway":"Home","eventType":""}]}`

	rr := f.do(t, http.MethodPost, "/api/sports", scheduleBody)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/sports", scheduleBody, f.ownerCookie("softball"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/sports", scheduleBody, f.ownerCookie("football"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/api/sports",
		`{"sport":"football","type":"info","data":{"coach":"Coach K"}}`, f.adminCookie())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/api/sports",
		`{"sport":"football","type":"roster","data":[{"number":"7","name":"A. Player","position":"QB","year":"Sr"}]}`, f.adminCookie())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/api/sports", `{"sport":"football","type":"stats","data":{}}`, f.adminCookie())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPost, "/api/sports", `{"sport":"football","type":"roster"}`, f.adminCookie())
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rec, ok, err := f.stores.Sports.Get("football")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rec.Schedule, 1)
	assert.Equal(t, "Central", rec.Schedule[0].Opponent)
	assert.Equal(t, "Coach K", rec.Coach)
	require.Len(t, rec.Roster, 1)
	assert.Equal(t, "QB", rec.Roster[0].Position)

	rr = f.do(t, http.MethodGet, "/api/sports", "")
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]any)
	assert.Contains(t, data, "football")
}

func TestSportSchedule(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stores.Sports.SetSchedule("football", []model.GameEntry{
		{Date: "Sep 5, 2026", Time: "7:00 PM", Opponent: "Central", HomeAway: model.Home, EventType: "League"},
		{Date: "Sep 12, 2026", Time: "5:00 PM", Opponent: "North", HomeAway: model.Away, EventType: "JV League"},
		{Date: "Dec 1, 2026", Time: "7:00 PM", Opponent: "Bowl", HomeAway: model.Home, EventType: "Playoff"},
	}))

	rr := f.do(t, http.MethodGet, "/api/sports/football/schedule", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "Fall 2026", body["season"])
	assert.Equal(t, "Varsity", body["level"])
	assert.Contains(t, body["seasons"], "Winter 2026-27")
	games := body["games"].([]any)
	require.Len(t, games, 1)
	assert.Equal(t, "Central", games[0].(map[string]any)["opponent"])

	rr = f.do(t, http.MethodGet, "/api/sports/football/schedule?level=both", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["games"], 2)

	rr = f.do(t, http.MethodGet, "/api/sports/football/schedule?season=Winter+2026-27", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode(t, rr)
	assert.Equal(t, "Winter 2026-27", body["season"])
	assert.Len(t, body["games"], 1)

	rr = f.do(t, http.MethodGet, "/api/sports/football/schedule?season=Summer+2026", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/sports/football/schedule?level=frosh", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/sports/curling/schedule", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/sports/swimming/schedule", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode(t, rr)["games"])
}

func TestUpcoming(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stores.Sports.ReplaceSchedules(map[string][]model.GameEntry{
		"football": {
			{Date: "Oct 1, 2026", Opponent: "Past"},
			{Date: "Oct 20, 2026", Opponent: "Central"},
			{Date: "Nov 20, 2026", Opponent: "TooFar"},
		},
		"girls-soccer": {
			{Date: "Oct 19, 2026", Opponent: "North"},
		},
		"not-a-sport": {
			{Date: "Oct 19, 2026", Opponent: "Ignored"},
		},
	}))

	rr := f.do(t, http.MethodGet, "/api/upcoming", "")
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, "girls-soccer", first["sport"])
	assert.Equal(t, "Girls Soccer", first["sportName"])
	assert.Equal(t, "North", first["opponent"])
	assert.Equal(t, "Central", data[1].(map[string]any)["opponent"])
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	result := importer.Result{
		Success:  true,
		RunID:    "run-1",
		Imported: []schedule.SportCount{{Sport: "football", Count: 2}},
		Skipped:  1,
		Total:    4,
	}

	t.Run("anonymous", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/api/import-ical", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("admin", func(t *testing.T) {
		f.importer.On("Run", mock.Anything, importer.Request{ICalURL: "https://feed.example/cal.ics"}).
			Return(result, nil).Once()

		rr := f.do(t, http.MethodPost, "/api/import-ical", `{"icalUrl":"https://feed.example/cal.ics"}`, f.adminCookie())
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		body := decode(t, rr)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(4), body["total"])
		assert.Equal(t, float64(1), body["skipped"])
	})

	t.Run("page owner limited to own sport", func(t *testing.T) {
		f.importer.On("Run", mock.Anything, importer.Request{Sport: "softball"}).
			Return(importer.Result{Success: true, Imported: []schedule.SportCount{}}, nil).Once()

		rr := f.do(t, http.MethodPost, "/api/import-ical", ``, f.ownerCookie("softball"))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		rr = f.do(t, http.MethodPost, "/api/import-ical", `{"sport":"football"}`, f.ownerCookie("softball"))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("page owner cannot choose the feed", func(t *testing.T) {
		rr := f.do(t, http.MethodPost, "/api/import-ical", `{"icalUrl":"http://10.0.0.1/cal.ics"}`, f.ownerCookie("softball"))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Only an admin can choose the iCal feed.", decode(t, rr)["message"])

		f.importer.On("Run", mock.Anything, importer.Request{Sport: "softball"}).
			Return(importer.Result{Success: true, Imported: []schedule.SportCount{}}, nil).Once()
		rr = f.do(t, http.MethodPost, "/api/import-ical", `{"timezone":"Asia/Tokyo"}`, f.ownerCookie("softball"))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("failures", func(t *testing.T) {
		f.importer.On("Run", mock.Anything, importer.Request{Sport: "baseball"}).
			Return(importer.Result{}, apperr.New(apperr.ErrConfig, importer.ErrNoFeedMessage)).Once()
		f.importer.On("Run", mock.Anything, importer.Request{Sport: "lacrosse"}).
			Return(importer.Result{}, apperr.FromErr(apperr.ErrCommunication, "failed to fetch iCal feed", errors.New("HTTP 503"), nil)).Once()

		rr := f.do(t, http.MethodPost, "/api/import-ical", `{"sport":"baseball"}`, f.adminCookie())
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, importer.ErrNoFeedMessage, body["message"])

		rr = f.do(t, http.MethodPost, "/api/import-ical", `{"sport":"lacrosse"}`, f.adminCookie())
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, "failed to fetch iCal feed: HTTP 503", decode(t, rr)["message"])
	})

	f.importer.AssertExpectations(t)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	f.srv.cfg.CORSOrigins = []string{"https://athletics.example"}

	req := httptest.NewRequest(http.MethodOptions, "/api/settings", nil)
	req.Header.Set("Origin", "https://athletics.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "https://athletics.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
