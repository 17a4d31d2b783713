package auth

import "net/http"

const (
	AdminCookie = "admin_session"
	SportCookie = "sport_session"
)

// SetSessionCookie writes an HTTP-only, SameSite=Lax session cookie valid for
// SessionTTL.
func SetSessionCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the named cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Role identifies who a request is acting as.
type Role string

const (
	RoleNone      Role = "none"
	RoleAdmin     Role = "admin"
	RolePageOwner Role = "pageowner"
)

// Session is the identity resolved from request cookies.
type Session struct {
	Role Role
	// Sport is set for RolePageOwner.
	Sport string
}

// CanEdit reports whether the session may modify the given sport.
func (s Session) CanEdit(sport string) bool {
	switch s.Role {
	case RoleAdmin:
		return true
	case RolePageOwner:
		return sport != "" && sport == s.Sport
	default:
		return false
	}
}

// SessionFromRequest resolves the session from request cookies. A valid admin
// cookie wins over a sport cookie.
func (c *Codec) SessionFromRequest(r *http.Request) Session {
	if ck, err := r.Cookie(AdminCookie); err == nil && c.ValidateAdminToken(ck.Value) {
		return Session{Role: RoleAdmin}
	}
	if ck, err := r.Cookie(SportCookie); err == nil {
		if sport, ok := c.ValidateSportToken(ck.Value); ok && sport != "" {
			return Session{Role: RolePageOwner, Sport: sport}
		}
	}
	return Session{Role: RoleNone}
}
