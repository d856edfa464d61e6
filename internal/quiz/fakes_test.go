package quiz_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/classhub/lms-backend/internal/quiz"
)

/* ---------------- In-memory fake that satisfies the store interfaces ---------------- */

type fakeStore struct {
	defs          map[string]quiz.Definition
	attempts      map[string]quiz.Attempt
	answers       map[string][]quiz.Answer
	teacherByQuiz map[string]string
	attemptSeq    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		defs:          map[string]quiz.Definition{},
		attempts:      map[string]quiz.Attempt{},
		answers:       map[string][]quiz.Answer{},
		teacherByQuiz: map[string]string{},
	}
}

func (s *fakeStore) putDefinition(d quiz.Definition) { s.defs[d.Quiz.ID] = d }

func (s *fakeStore) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	d, ok := s.defs[id]
	if !ok {
		return quiz.Quiz{}, quiz.NotFoundf("quiz not found")
	}
	return d.Quiz, nil
}

func (s *fakeStore) GetDefinition(_ context.Context, quizID string) (quiz.Definition, error) {
	d, ok := s.defs[quizID]
	if !ok {
		return quiz.Definition{}, quiz.NotFoundf("quiz not found")
	}
	return d, nil
}

func (s *fakeStore) CreateAttempt(_ context.Context, quizID, studentID string) (quiz.Attempt, error) {
	prior := 0
	for _, a := range s.attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			prior++
		}
	}
	s.attemptSeq++
	a := quiz.Attempt{
		ID:        fmt.Sprintf("attempt-%d", s.attemptSeq),
		QuizID:    quizID,
		StudentID: studentID,
		AttemptNo: prior + 1,
		Status:    quiz.StatusInProgress,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	s.attempts[a.ID] = a
	return a, nil
}

func (s *fakeStore) GetAttempt(_ context.Context, id string) (quiz.Attempt, error) {
	a, ok := s.attempts[id]
	if !ok {
		return quiz.Attempt{}, quiz.NotFoundf("attempt not found")
	}
	return a, nil
}

func (s *fakeStore) ListAttempts(_ context.Context, opts quiz.AttemptListOpts) ([]quiz.Attempt, error) {
	out := []quiz.Attempt{}
	for _, a := range s.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.StudentID != "" && a.StudentID != opts.StudentID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ReplaceAndSubmit(_ context.Context, attemptID string, answers []quiz.Answer, score float64, completedAt time.Time) error {
	a, ok := s.attempts[attemptID]
	if !ok {
		return quiz.NotFoundf("attempt not found")
	}
	if a.Status != quiz.StatusInProgress {
		return quiz.BadRequestf("attempt already submitted")
	}
	s.answers[attemptID] = append([]quiz.Answer(nil), answers...)
	a.Status = quiz.StatusSubmitted
	a.Score = score
	a.CompletedAt = &completedAt
	s.attempts[attemptID] = a
	return nil
}

func (s *fakeStore) ListAnswers(_ context.Context, attemptID string) ([]quiz.Answer, error) {
	return append([]quiz.Answer(nil), s.answers[attemptID]...), nil
}

func (s *fakeStore) TeacherForQuiz(_ context.Context, quizID string) (string, error) {
	id, ok := s.teacherByQuiz[quizID]
	if !ok {
		return "", quiz.NotFoundf("course for quiz not found")
	}
	return id, nil
}

/* ---------------- definition builders ---------------- */

func intPtr(v int) *int { return &v }

func mcqSingle(id string, points int, correctOption string, options ...string) quiz.Question {
	q := quiz.Question{ID: id, Content: "question " + id, Type: quiz.TypeMCQSingle, Points: points}
	for i, opt := range options {
		q.Options = append(q.Options, quiz.Option{
			ID: opt, Content: "option " + opt, IsCorrect: opt == correctOption, OrderIndex: i,
		})
	}
	return q
}

func mcqMulti(id string, points int, correct []string, options ...string) quiz.Question {
	correctSet := map[string]bool{}
	for _, c := range correct {
		correctSet[c] = true
	}
	q := quiz.Question{ID: id, Content: "question " + id, Type: quiz.TypeMCQMulti, Points: points}
	for i, opt := range options {
		q.Options = append(q.Options, quiz.Option{
			ID: opt, Content: "option " + opt, IsCorrect: correctSet[opt], OrderIndex: i,
		})
	}
	return q
}

func textQuestion(id string, points int) quiz.Question {
	return quiz.Question{ID: id, Content: "question " + id, Type: quiz.TypeText, Points: points}
}

func definition(quizID string, published bool, questions ...quiz.Question) quiz.Definition {
	for i := range questions {
		questions[i].OrderIndex = i
	}
	return quiz.Definition{
		Quiz: quiz.Quiz{
			ID:          quizID,
			LessonID:    "lesson-1",
			Title:       "Quiz " + quizID,
			IsPublished: published,
		},
		Questions: questions,
	}
}
