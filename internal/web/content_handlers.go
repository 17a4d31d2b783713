package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"athletics/internal/apperr"
	"athletics/internal/auth"
	"athletics/internal/config"
	"athletics/internal/importer"
	appLog "athletics/internal/log"
	"athletics/internal/model"
	"athletics/internal/season"
	"athletics/internal/store"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.stores.Settings.Get()
	if err != nil {
		writeError(w, r, apperr.Wrap(err, "Error reading settings"))
		return
	}
	writeOK(w, "", settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	settings, err := s.stores.Settings.Update(patch)
	if err != nil {
		writeError(w, r, apperr.Wrap(err, "Error saving settings"))
		return
	}
	appLog.Info("settings updated")
	writeOK(w, "Settings saved.", settings)
}

func (s *Server) handleGetSports(w http.ResponseWriter, r *http.Request) {
	all, err := s.stores.Sports.All()
	if err != nil {
		writeError(w, r, apperr.Wrap(err, "Error reading sports data"))
		return
	}
	writeOK(w, "", all)
}

// Sport update kinds.
const (
	updateSchedule = "schedule"
	updateRoster   = "roster"
	updateInfo     = "info"
)

type sportUpdate struct {
	Sport string          `json:"sport"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
}

func (s *Server) handleUpdateSport(w http.ResponseWriter, r *http.Request) {
	var req sportUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Sport = strings.TrimSpace(req.Sport)
	if req.Sport == "" || req.Type == "" {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Sport and type are required."))
		return
	}

	sess := s.codec.SessionFromRequest(r)
	if !sess.CanEdit(req.Sport) {
		writeError(w, r, denied(sess))
		return
	}

	var err error
	switch req.Type {
	case updateSchedule:
		var games []model.GameEntry
		if err = unmarshalData(req.Data, &games); err == nil {
			err = s.stores.Sports.SetSchedule(req.Sport, games)
		}
	case updateRoster:
		var roster []model.RosterEntry
		if err = unmarshalData(req.Data, &roster); err == nil {
			err = s.stores.Sports.SetRoster(req.Sport, roster)
		}
	case updateInfo:
		var info store.InfoUpdate
		if err = unmarshalData(req.Data, &info); err == nil {
			err = s.stores.Sports.UpdateInfo(req.Sport, info)
		}
	default:
		err = apperr.FromErr(apperr.ErrBadRequest, "Invalid update type.", nil, apperr.Details{"type": req.Type})
	}
	if err != nil {
		writeError(w, r, apperr.Wrap(err, "Error saving sport data"))
		return
	}

	appLog.Info("sport updated", "sport", req.Sport, "type", req.Type, "role", sess.Role)
	writeOK(w, "Saved.", nil)
}

// unmarshalData decodes the data member of a sport update. Missing data is
// a bad request rather than an empty list.
func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return apperr.New(apperr.ErrBadRequest, "Data is required.")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperr.FromErr(apperr.ErrBadRequest, "Invalid request.", err, nil)
	}
	return nil
}

// denied answers a failed authorization: unauthorized without any session,
// forbidden for a page owner of another sport.
func denied(sess auth.Session) error {
	if sess.Role == auth.RoleNone {
		return apperr.New(apperr.ErrUnauthorized, "Login required.")
	}
	return apperr.New(apperr.ErrForbidden, "You can only edit your own sport.")
}

type scheduleResponse struct {
	Success bool              `json:"success"`
	Sport   string            `json:"sport"`
	Seasons []season.Key      `json:"seasons"`
	Season  *season.Key       `json:"season"`
	Level   season.Level      `json:"level"`
	Games   []model.GameEntry `json:"games"`
}

func (s *Server) handleSportSchedule(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["sport"]

	rec, stored, err := s.stores.Sports.Get(slug)
	if err != nil {
		writeError(w, r, apperr.Wrap(err, "Error reading sports data"))
		return
	}
	if _, known := model.LookupSport(slug); !known && !stored {
		writeError(w, r, apperr.New(apperr.ErrNotFound, "Unknown sport."))
		return
	}

	q := r.URL.Query()
	level, ok := season.ParseLevel(q.Get("level"))
	if !ok {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Invalid level."))
		return
	}

	var sel season.Selection
	if raw := q.Get("season"); raw != "" {
		k, ok := season.ParseKey(raw)
		if !ok {
			writeError(w, r, apperr.New(apperr.ErrBadRequest, "Invalid season."))
			return
		}
		sel.Choose(k)
	}

	now := s.now()
	options := season.Options(now, season.KeysOf(rec.Schedule))
	resp := scheduleResponse{
		Success: true,
		Sport:   slug,
		Seasons: options,
		Level:   level,
		Games:   []model.GameEntry{},
	}
	if k, ok := sel.Resolve(options, now); ok {
		resp.Season = &k
		resp.Games = season.Filter(rec.Schedule, k, level)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	all, err := s.stores.Sports.All()
	if err != nil {
		writeError(w, r, apperr.Wrap(err, "Error reading sports data"))
		return
	}
	writeOK(w, "", season.Upcoming(all, s.now(), s.location()))
}

// location is the school timezone: stored settings first, then the process
// config.
func (s *Server) location() *time.Location {
	var names []string
	if settings, err := s.stores.Settings.Get(); err == nil {
		names = append(names, settings.Timezone)
	}
	if s.cfg != nil {
		names = append(names, s.cfg.Timezone)
	}
	names = append(names, config.DefaultTimezone)

	for _, name := range names {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err == nil {
			return loc
		}
		appLog.Warn("unknown timezone, trying next", "timezone", name)
	}
	return time.UTC
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importer.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Sport = strings.TrimSpace(req.Sport)

	sess := s.codec.SessionFromRequest(r)
	switch sess.Role {
	case auth.RoleAdmin:
	case auth.RolePageOwner:
		if req.Sport == "" {
			req.Sport = sess.Sport
		}
		if req.Sport != sess.Sport {
			writeError(w, r, denied(sess))
			return
		}
		// Page owners import from the configured feed in the school timezone.
		if strings.TrimSpace(req.ICalURL) != "" {
			writeError(w, r, apperr.New(apperr.ErrForbidden, "Only an admin can choose the iCal feed."))
			return
		}
		req.Timezone = ""
	default:
		writeError(w, r, denied(sess))
		return
	}

	res, err := s.importer.Run(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
