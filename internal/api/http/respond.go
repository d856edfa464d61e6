package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/classhub/lms-backend/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps core error kinds to client-facing status categories.
// Anything untyped is a server fault and gets logged.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch quiz.KindOf(err) {
	case quiz.KindNotFound:
		status = http.StatusNotFound
	case quiz.KindForbidden:
		status = http.StatusForbidden
	case quiz.KindBadRequest:
		status = http.StatusBadRequest
	case quiz.KindConflict:
		status = http.StatusConflict
	default:
		logrus.WithError(err).Error("request failed")
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
