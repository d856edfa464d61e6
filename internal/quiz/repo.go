package quiz

import (
	"context"
	"time"
)

// The core never touches storage through globals; each component receives the
// narrow interface it needs.

// DefinitionReader loads quiz metadata and full definition snapshots. The
// authoring CRUD owns writes; from here the definition is read-only.
type DefinitionReader interface {
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	GetDefinition(ctx context.Context, quizID string) (Definition, error)
}

type AttemptListOpts struct {
	QuizID    string
	StudentID string
	Status    string // optional: IN_PROGRESS|SUBMITTED
	Limit     int
	Offset    int
}

// AttemptStore owns attempt rows. CreateAttempt assigns attempt_no as
// count-of-prior-attempts+1 inside one transaction; the unique index on
// (student_id, quiz_id, attempt_no) turns a numbering race into a Conflict.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, quizID, studentID string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}

// AnswerStore persists answer rows. ReplaceAndSubmit performs the
// delete-then-insert plus the IN_PROGRESS→SUBMITTED flip as one transaction;
// the status update is conditional, so a lost double-submission race fails
// with a bad-request error instead of double-scoring.
type AnswerStore interface {
	ReplaceAndSubmit(ctx context.Context, attemptID string, answers []Answer, score float64, completedAt time.Time) error
	ListAnswers(ctx context.Context, attemptID string) ([]Answer, error)
}

// CourseOwnership resolves the teacher owning a quiz by walking
// quiz→lesson→course, for result-viewing authorization.
type CourseOwnership interface {
	TeacherForQuiz(ctx context.Context, quizID string) (string, error)
}
