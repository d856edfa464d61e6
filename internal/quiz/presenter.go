package quiz

import "context"

// RoleAdmin matches the rbac admin role; admins may view any result.
const RoleAdmin = "admin"

// ResultPresenter guards result retrieval and delegates to the scoring
// engine. Viewing does not require the attempt to be submitted: an
// IN_PROGRESS attempt yields a zero "so far" score.
type ResultPresenter struct {
	engine   *ScoringEngine
	attempts AttemptStore
	courses  CourseOwnership
}

func NewResultPresenter(engine *ScoringEngine, attempts AttemptStore, courses CourseOwnership) *ResultPresenter {
	return &ResultPresenter{engine: engine, attempts: attempts, courses: courses}
}

// GetAttemptResult allows the owning student, the teacher owning the quiz's
// course, or an admin.
func (p *ResultPresenter) GetAttemptResult(ctx context.Context, attemptID, callerID, callerRole string) (Result, error) {
	attempt, err := p.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}
	if attempt.StudentID != callerID && callerRole != RoleAdmin {
		teacherID, err := p.courses.TeacherForQuiz(ctx, attempt.QuizID)
		if err != nil || teacherID != callerID {
			return Result{}, Forbiddenf("not allowed to view this attempt")
		}
	}
	return p.engine.CalculateResult(ctx, attemptID)
}
