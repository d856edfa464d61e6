package quiz

import (
	"context"
	"math"
)

// ScoringEngine re-derives a full result from the quiz definition and the
// persisted answer rows. The denormalized attempt score is never trusted for
// the per-question breakdown; recomputation over unchanged state is
// deterministic.
type ScoringEngine struct {
	quizzes  DefinitionReader
	attempts AttemptStore
	answers  AnswerStore
}

func NewScoringEngine(quizzes DefinitionReader, attempts AttemptStore, answers AnswerStore) *ScoringEngine {
	return &ScoringEngine{quizzes: quizzes, attempts: attempts, answers: answers}
}

// CalculateResult loads the attempt, its definition snapshot and the stored
// answer rows and rebuilds the result. An IN_PROGRESS attempt simply yields a
// zero score since no rows exist yet.
func (e *ScoringEngine) CalculateResult(ctx context.Context, attemptID string) (Result, error) {
	attempt, err := e.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}
	def, err := e.quizzes.GetDefinition(ctx, attempt.QuizID)
	if err != nil {
		return Result{}, err
	}
	rows, err := e.answers.ListAnswers(ctx, attemptID)
	if err != nil {
		return Result{}, err
	}
	return buildResult(def, attempt, rows), nil
}

// scoreOf sums points earned over the stored rows. Correctness was fixed at
// submission time; a question earns its full points or nothing.
func scoreOf(def Definition, rows []Answer) float64 {
	byQuestion := groupByQuestion(rows)
	var score float64
	for _, q := range def.Questions {
		qRows := byQuestion[q.ID]
		if len(qRows) > 0 && qRows[0].IsCorrect != nil && *qRows[0].IsCorrect {
			score += float64(q.Points)
		}
	}
	return round2(score)
}

// buildResult assembles the per-question breakdown in question order.
func buildResult(def Definition, attempt Attempt, rows []Answer) Result {
	byQuestion := groupByQuestion(rows)
	totalPoints := def.TotalPoints()

	var score float64
	details := make([]AnswerDetail, 0, len(def.Questions))

	for _, q := range def.Questions {
		qRows := byQuestion[q.ID]

		detail := AnswerDetail{
			QuestionID:      q.ID,
			QuestionContent: q.Content,
			QuestionPoints:  q.Points,
		}

		switch q.Type {
		case TypeMCQSingle, TypeTrueFalse:
			yourAnswer := ""
			if len(qRows) > 0 && qRows[0].OptionID != nil {
				yourAnswer = optionContent(q, *qRows[0].OptionID)
			}
			correctAnswer := ""
			if correct := correctOptions(q); len(correct) > 0 {
				correctAnswer = correct[0].Content
			}
			detail.YourAnswer = yourAnswer
			detail.CorrectAnswer = correctAnswer
			detail.IsCorrect = len(qRows) > 0 && qRows[0].IsCorrect != nil && *qRows[0].IsCorrect

		case TypeMCQMulti:
			yours := make([]string, 0, len(qRows))
			for _, row := range qRows {
				if row.OptionID != nil {
					yours = append(yours, optionContent(q, *row.OptionID))
				}
			}
			correct := correctOptions(q)
			correctContents := make([]string, 0, len(correct))
			for _, o := range correct {
				correctContents = append(correctContents, o.Content)
			}
			detail.YourAnswer = yours
			detail.CorrectAnswer = correctContents
			detail.IsCorrect = len(qRows) > 0 && qRows[0].IsCorrect != nil && *qRows[0].IsCorrect

		default:
			text := ""
			if len(qRows) > 0 && qRows[0].AnswerText != nil {
				text = *qRows[0].AnswerText
			}
			// Free text is not auto-graded and contributes zero points.
			detail.YourAnswer = text
			detail.CorrectAnswer = ""
		}

		if detail.IsCorrect {
			detail.PointsEarned = float64(q.Points)
		}
		score += detail.PointsEarned
		details = append(details, detail)
	}

	percentage := 0.0
	if totalPoints > 0 {
		percentage = round2(score / float64(totalPoints) * 100)
	}

	var timeTaken int64
	if attempt.CompletedAt != nil {
		timeTaken = int64(attempt.CompletedAt.Sub(attempt.StartedAt).Seconds())
	}

	return Result{
		AttemptID:        attempt.ID,
		QuizID:           def.Quiz.ID,
		QuizTitle:        def.Quiz.Title,
		Score:            round2(score),
		TotalPoints:      totalPoints,
		Percentage:       percentage,
		Status:           attempt.Status,
		StartedAt:        attempt.StartedAt,
		CompletedAt:      attempt.CompletedAt,
		TimeTakenSeconds: timeTaken,
		Answers:          details,
	}
}

func groupByQuestion(rows []Answer) map[string][]Answer {
	m := make(map[string][]Answer, len(rows))
	for _, row := range rows {
		m[row.QuestionID] = append(m[row.QuestionID], row)
	}
	return m
}

func correctOptions(q Question) []Option {
	out := make([]Option, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			out = append(out, o)
		}
	}
	return out
}

func optionContent(q Question, optionID string) string {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o.Content
		}
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
