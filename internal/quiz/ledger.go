package quiz

import "context"

// AttemptLedger owns the attempt lifecycle: creation, sequence numbering per
// (student, quiz) pair, and the IN_PROGRESS starting state.
type AttemptLedger struct {
	quizzes  DefinitionReader
	attempts AttemptStore
}

func NewAttemptLedger(quizzes DefinitionReader, attempts AttemptStore) *AttemptLedger {
	return &AttemptLedger{quizzes: quizzes, attempts: attempts}
}

// StartAttempt creates a new IN_PROGRESS attempt against a published quiz.
// There is no cap on attempts per student; the returned time limit is
// advisory and not enforced server-side.
func (l *AttemptLedger) StartAttempt(ctx context.Context, quizID, studentID string) (StartReceipt, error) {
	q, err := l.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return StartReceipt{}, err
	}
	if !q.IsPublished {
		return StartReceipt{}, Forbiddenf("quiz is not published")
	}
	a, err := l.attempts.CreateAttempt(ctx, quizID, studentID)
	if err != nil {
		return StartReceipt{}, err
	}
	return StartReceipt{
		AttemptID:        a.ID,
		StartedAt:        a.StartedAt,
		TimeLimitMinutes: q.TimeLimitMinutes,
	}, nil
}
