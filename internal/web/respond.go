package web

import (
	"encoding/json"
	"io"
	"net/http"

	"athletics/internal/apperr"
	appLog "athletics/internal/log"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type okResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, okResponse{Success: true, Message: message, Data: data})
}

// writeError logs err and answers with its status and operator-safe message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, _ := apperr.Cast(err)
	apperr.Log(err, "method", r.Method, "path", r.URL.Path)
	msg := e.Message
	if e.Code == apperr.ErrCommunication && e.Err != nil {
		// Operators need the cause to fix a broken feed link.
		msg = e.Error()
	}
	writeJSON(w, apperr.HTTPStatus(e.Code), errResponse{Success: false, Message: msg})
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return apperr.FromErr(apperr.ErrBadRequest, "Invalid request.", err, nil)
	}
	return nil
}
