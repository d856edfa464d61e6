package quiz

import "time"

// Question types the grading engine knows how to score. Any other type is
// stored as an ungraded free-text answer.
const (
	TypeMCQSingle = "MCQ_SINGLE"
	TypeMCQMulti  = "MCQ_MULTI"
	TypeTrueFalse = "TRUE_FALSE"
	TypeText      = "TEXT"
)

// Attempt status values. SUBMITTED is terminal.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusSubmitted  = "SUBMITTED"
)

type Quiz struct {
	ID               string `json:"id"`
	LessonID         string `json:"lesson_id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
	IsPublished      bool   `json:"is_published"`
	CreatedAt        int64  `json:"created_at,omitempty"`
}

type Option struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsCorrect  bool   `json:"-"`
	OrderIndex int    `json:"order_index"`
}

type Question struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Type       string   `json:"type"`
	Points     int      `json:"points"`
	OrderIndex int      `json:"order_index"`
	Options    []Option `json:"options,omitempty"`
}

// Definition is an immutable snapshot of a quiz with its questions ordered by
// order_index and each question's options ordered the same way. It is loaded
// once per operation; grading never walks live relations.
type Definition struct {
	Quiz      Quiz
	Questions []Question
}

// TotalPoints sums the points of every question, answered or not.
func (d Definition) TotalPoints() int {
	total := 0
	for _, q := range d.Questions {
		total += q.Points
	}
	return total
}

// QuestionByID builds a lookup map over the snapshot's questions.
func (d Definition) QuestionByID() map[string]Question {
	m := make(map[string]Question, len(d.Questions))
	for _, q := range d.Questions {
		m[q.ID] = q
	}
	return m
}

type Attempt struct {
	ID          string     `json:"id"`
	QuizID      string     `json:"quiz_id"`
	StudentID   string     `json:"student_id"`
	AttemptNo   int        `json:"attempt_no"`
	Status      string     `json:"status"`
	Score       float64    `json:"score"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Answer is one normalized per-option (or per-text) answer fact. MCQ_MULTI
// produces one row per selected option, all sharing the combination's
// IsCorrect value. IsCorrect stays nil for ungraded text answers.
type Answer struct {
	ID         string
	AttemptID  string
	QuestionID string
	OptionID   *string
	AnswerText *string
	IsCorrect  *bool
}

// Submission is a single answer item as sent by the client.
type Submission struct {
	QuestionID string   `json:"question_id"`
	OptionID   string   `json:"option_id,omitempty"`
	OptionIDs  []string `json:"option_ids,omitempty"`
	AnswerText string   `json:"answer_text,omitempty"`
}

// StartReceipt is returned by AttemptLedger.StartAttempt. The time limit is
// advisory metadata; the server does not enforce it.
type StartReceipt struct {
	AttemptID        string    `json:"attempt_id"`
	StartedAt        time.Time `json:"started_at"`
	TimeLimitMinutes *int      `json:"time_limit_minutes"`
}

// AnswerDetail is the per-question breakdown inside a Result. YourAnswer and
// CorrectAnswer hold a string for single-choice and text questions and a
// []string for multi-choice ones.
type AnswerDetail struct {
	QuestionID      string      `json:"question_id"`
	QuestionContent string      `json:"question_content"`
	QuestionPoints  int         `json:"question_points"`
	YourAnswer      interface{} `json:"your_answer"`
	CorrectAnswer   interface{} `json:"correct_answer"`
	IsCorrect       bool        `json:"is_correct"`
	PointsEarned    float64     `json:"points_earned"`
}

// Result is the full scoring output, returned after submission and on later
// retrieval. It is always recomputed from the stored answer rows.
type Result struct {
	AttemptID        string         `json:"attempt_id"`
	QuizID           string         `json:"quiz_id"`
	QuizTitle        string         `json:"quiz_title"`
	Score            float64        `json:"score"`
	TotalPoints      int            `json:"total_points"`
	Percentage       float64        `json:"percentage"`
	Status           string         `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	TimeTakenSeconds int64          `json:"time_taken_seconds"`
	Answers          []AnswerDetail `json:"answers"`
}
