package quiz

import (
	"context"
	"sort"
	"time"

	"github.com/classhub/lms-backend/internal/grading"
)

// AnswerRecorder validates a submitted answer set against the quiz
// definition, persists normalized per-option answer facts and finalizes the
// attempt. The whole delete-insert-flip runs in one store transaction, so a
// failed submission leaves the attempt IN_PROGRESS with no partial answers.
type AnswerRecorder struct {
	quizzes  DefinitionReader
	attempts AttemptStore
	answers  AnswerStore
	grader   grading.Grader
}

func NewAnswerRecorder(quizzes DefinitionReader, attempts AttemptStore, answers AnswerStore, grader grading.Grader) *AnswerRecorder {
	return &AnswerRecorder{quizzes: quizzes, attempts: attempts, answers: answers, grader: grader}
}

// SubmitAnswers grades the submission and flips the attempt to SUBMITTED.
// The transition is irreversible; a second call fails with a bad-request
// error and the stored result is left untouched.
func (r *AnswerRecorder) SubmitAnswers(ctx context.Context, attemptID, studentID string, submissions []Submission) (Result, error) {
	attempt, err := r.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}
	if attempt.StudentID != studentID {
		return Result{}, Forbiddenf("attempt belongs to another student")
	}
	if attempt.Status == StatusSubmitted {
		return Result{}, BadRequestf("attempt already submitted")
	}

	def, err := r.quizzes.GetDefinition(ctx, attempt.QuizID)
	if err != nil {
		return Result{}, err
	}
	if len(def.Questions) == 0 {
		return Result{}, BadRequestf("quiz has no questions")
	}

	rows, err := r.buildAnswerRows(def, attempt.ID, submissions)
	if err != nil {
		return Result{}, err
	}

	score := scoreOf(def, rows)
	completedAt := time.Now().UTC().Truncate(time.Second)
	if err := r.answers.ReplaceAndSubmit(ctx, attempt.ID, rows, score, completedAt); err != nil {
		return Result{}, err
	}

	attempt.Status = StatusSubmitted
	attempt.Score = score
	attempt.CompletedAt = &completedAt
	return buildResult(def, attempt, rows), nil
}

// buildAnswerRows resolves each submission item against the definition and
// grades it. Unanswered items (no option chosen, empty text) are skipped
// entirely: no row is written and the question scores zero downstream.
func (r *AnswerRecorder) buildAnswerRows(def Definition, attemptID string, submissions []Submission) ([]Answer, error) {
	byID := def.QuestionByID()
	rows := make([]Answer, 0, len(submissions))

	for _, sub := range submissions {
		q, ok := byID[sub.QuestionID]
		if !ok {
			return nil, BadRequestf("question not in quiz: %s", sub.QuestionID)
		}

		switch q.Type {
		case TypeMCQSingle, TypeTrueFalse:
			if sub.OptionID == "" {
				continue
			}
			if !optionBelongs(q, sub.OptionID) {
				return nil, BadRequestf("option not in question: %s", sub.OptionID)
			}
			out := r.grader.Grade(gradingQ(q), grading.Selection{OptionIDs: []string{sub.OptionID}})
			optionID := sub.OptionID
			correct := out.Correct
			rows = append(rows, Answer{
				AttemptID:  attemptID,
				QuestionID: q.ID,
				OptionID:   &optionID,
				IsCorrect:  &correct,
			})

		case TypeMCQMulti:
			if len(sub.OptionIDs) == 0 {
				continue
			}
			selected := append([]string(nil), sub.OptionIDs...)
			sort.Strings(selected)
			for _, id := range selected {
				if !optionBelongs(q, id) {
					return nil, BadRequestf("option not in question: %s", id)
				}
			}
			out := r.grader.Grade(gradingQ(q), grading.Selection{OptionIDs: selected})
			correct := out.Correct
			for _, id := range selected {
				optionID := id
				rows = append(rows, Answer{
					AttemptID:  attemptID,
					QuestionID: q.ID,
					OptionID:   &optionID,
					IsCorrect:  &correct,
				})
			}

		default:
			// Free text: stored ungraded, is_correct stays unset.
			if sub.AnswerText == "" {
				continue
			}
			text := sub.AnswerText
			rows = append(rows, Answer{
				AttemptID:  attemptID,
				QuestionID: q.ID,
				AnswerText: &text,
			})
		}
	}
	return rows, nil
}

func gradingQ(q Question) grading.Q {
	ids := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return grading.Q{Type: q.Type, Points: q.Points, CorrectOptionIDs: ids}
}

func optionBelongs(q Question, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
