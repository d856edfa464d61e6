package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/classhub/lms-backend/internal/quiz"
)

// GET /quizzes?lesson_id=...&limit=10&offset=0
// Public catalog: published quizzes only, newest first. Authoring CRUD lives
// elsewhere; this surface is read-only.
func ListQuizzesHandler(store *quiz.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListPublishedQuizzes(r.Context(), quiz.QuizListOpts{
			LessonID: r.URL.Query().Get("lesson_id"),
			Limit:    parseIntDefault(r.URL.Query().Get("limit"), 10),
			Offset:   parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /quizzes/{quizID}
func GetQuizHandler(store *quiz.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !q.IsPublished {
			writeError(w, quiz.Forbiddenf("quiz is not published"))
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
