package web

import (
	"net/http"
	"strings"

	"athletics/internal/apperr"
	"athletics/internal/auth"
	appLog "athletics/internal/log"
	"athletics/internal/model"
)

const minOwnerPasswordLen = 8

// adminOnly rejects requests without a valid admin session.
func (s *Server) adminOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.codec.SessionFromRequest(r).Role != auth.RoleAdmin {
			writeError(w, r, apperr.New(apperr.ErrUnauthorized, "Admin login required."))
			return
		}
		h(w, r)
	})
}

type loginRequest struct {
	Sport    string `json:"sport"`
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if s.secrets.AdminPassword == "" {
		writeError(w, r, apperr.New(apperr.ErrInternal, "Server is not configured for authentication."))
		return
	}
	if req.Password == "" || !auth.SecureCompare(req.Password, s.secrets.AdminPassword) {
		writeError(w, r, apperr.New(apperr.ErrUnauthorized, "Incorrect password."))
		return
	}

	auth.SetSessionCookie(w, auth.AdminCookie, s.codec.GenerateAdminToken())
	appLog.Info("admin login")
	writeOK(w, "", nil)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSessionCookie(w, auth.AdminCookie)
	writeOK(w, "", nil)
}

func (s *Server) handlePageOwnerLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Sport = strings.TrimSpace(req.Sport)
	if req.Sport == "" || req.Password == "" {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Sport and password are required."))
		return
	}

	owner, ok, err := s.stores.Owners.Get(req.Sport)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok || !auth.VerifyPassword(req.Password, owner) {
		writeError(w, r, apperr.FromErr(apperr.ErrUnauthorized, "Incorrect password.", nil, apperr.Details{"sport": req.Sport}))
		return
	}

	auth.SetSessionCookie(w, auth.SportCookie, s.codec.GenerateSportToken(req.Sport))
	appLog.Info("page owner login", "sport", req.Sport)
	writeOK(w, "", nil)
}

func (s *Server) handlePageOwnerLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSessionCookie(w, auth.SportCookie)
	writeOK(w, "", nil)
}

type sessionInfo struct {
	Role  auth.Role `json:"role"`
	Sport string    `json:"sport,omitempty"`
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess := s.codec.SessionFromRequest(r)
	writeJSON(w, http.StatusOK, sessionInfo{Role: sess.Role, Sport: sess.Sport})
}

type ownersResponse struct {
	Success bool     `json:"success"`
	Sports  []string `json:"sports"`
}

func (s *Server) handleListPageOwners(w http.ResponseWriter, r *http.Request) {
	sports, err := s.stores.Owners.Sports()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ownersResponse{Success: true, Sports: sports})
}

func (s *Server) handleSetPageOwner(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Sport = strings.TrimSpace(req.Sport)
	if req.Sport == "" || req.Password == "" {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Sport and password are required."))
		return
	}
	if _, ok := model.LookupSport(req.Sport); !ok {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Unknown sport."))
		return
	}
	if len(req.Password) < minOwnerPasswordLen {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Password must be at least 8 characters."))
		return
	}

	h, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, apperr.FromErr(apperr.ErrInternal, "Error saving page owner.", err, nil))
		return
	}
	if err := s.stores.Owners.Set(req.Sport, h); err != nil {
		writeError(w, r, apperr.Wrap(err, "Error saving page owner"))
		return
	}
	appLog.Info("page owner set", "sport", req.Sport)
	writeOK(w, "Page owner set for "+req.Sport+".", nil)
}

func (s *Server) handleRemovePageOwner(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Sport = strings.TrimSpace(req.Sport)
	if req.Sport == "" {
		writeError(w, r, apperr.New(apperr.ErrBadRequest, "Sport is required."))
		return
	}
	if err := s.stores.Owners.Remove(req.Sport); err != nil {
		writeError(w, r, apperr.Wrap(err, "Error removing page owner"))
		return
	}
	appLog.Info("page owner removed", "sport", req.Sport)
	writeOK(w, "Page owner removed for "+req.Sport+".", nil)
}
