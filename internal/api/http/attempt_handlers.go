package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/classhub/lms-backend/internal/quiz"
	"github.com/classhub/lms-backend/internal/rbac"
)

var validate = validator.New()

type startAttemptRequest struct {
	QuizID string `json:"quiz_id" validate:"required,uuid"`
}

type answerItem struct {
	QuestionID string   `json:"question_id" validate:"required,uuid"`
	OptionID   string   `json:"option_id" validate:"omitempty,uuid"`
	OptionIDs  []string `json:"option_ids" validate:"omitempty,dive,uuid"`
	AnswerText string   `json:"answer_text"`
}

type submitAnswersRequest struct {
	Answers []answerItem `json:"answers" validate:"required,min=1,dive"`
}

// POST /attempts  {quiz_id}
func StartAttemptHandler(ledger *quiz.AttemptLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startAttemptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, quiz.BadRequestf("bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, quiz.BadRequestf("invalid request: %v", err))
			return
		}
		studentID := rbac.SubjectFromContext(r.Context())
		receipt, err := ledger.StartAttempt(r.Context(), req.QuizID, studentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, receipt)
	}
}

// POST /attempts/{attemptID}/submit  {answers: [...]}
func SubmitAnswersHandler(recorder *quiz.AnswerRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var req submitAnswersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, quiz.BadRequestf("bad json"))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, quiz.BadRequestf("invalid request: %v", err))
			return
		}
		submissions := make([]quiz.Submission, 0, len(req.Answers))
		for _, a := range req.Answers {
			submissions = append(submissions, quiz.Submission{
				QuestionID: a.QuestionID,
				OptionID:   a.OptionID,
				OptionIDs:  a.OptionIDs,
				AnswerText: a.AnswerText,
			})
		}
		studentID := rbac.SubjectFromContext(r.Context())
		result, err := recorder.SubmitAnswers(r.Context(), attemptID, studentID, submissions)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /attempts/{attemptID}/result
func GetAttemptResultHandler(presenter *quiz.ResultPresenter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		callerID := rbac.SubjectFromContext(r.Context())
		callerRole := rbac.RoleFromContext(r.Context())
		result, err := presenter.GetAttemptResult(r.Context(), attemptID, callerID, callerRole)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /attempts?quiz_id=...&student_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all only ever see their own attempts.
func ListAttemptsHandler(store quiz.AttemptStore, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		studentID := r.URL.Query().Get("student_id")
		if !checker.Has(role, "attempt:view-all") {
			studentID = sub
		}

		list, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID:    r.URL.Query().Get("quiz_id"),
			StudentID: studentID,
			Status:    r.URL.Query().Get("status"),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
