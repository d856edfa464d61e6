package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLStore implements DefinitionReader, AttemptStore, AnswerStore and
// CourseOwnership over database/sql. Placeholders use $N, which both the pgx
// and the modernc sqlite drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// --- DefinitionReader ---

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, title, COALESCE(description,''), time_limit_minutes, is_published, created_at
		 FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

// GetDefinition loads the quiz with its questions and options as one
// immutable snapshot, ordered by order_index.
func (s *SQLStore) GetDefinition(ctx context.Context, quizID string) (Definition, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return Definition{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, qtype, points, order_index
		 FROM questions WHERE quiz_id=$1 ORDER BY order_index ASC`, quizID)
	if err != nil {
		return Definition{}, err
	}
	defer rows.Close()

	var questions []Question
	index := map[string]int{}
	for rows.Next() {
		var question Question
		if err := rows.Scan(&question.ID, &question.Content, &question.Type, &question.Points, &question.OrderIndex); err != nil {
			return Definition{}, err
		}
		index[question.ID] = len(questions)
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return Definition{}, err
	}

	optRows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.question_id, o.content, o.is_correct, o.order_index
		 FROM question_options o
		 JOIN questions q ON q.id = o.question_id
		 WHERE q.quiz_id=$1
		 ORDER BY o.question_id, o.order_index ASC`, quizID)
	if err != nil {
		return Definition{}, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o Option
		var questionID string
		if err := optRows.Scan(&o.ID, &questionID, &o.Content, &o.IsCorrect, &o.OrderIndex); err != nil {
			return Definition{}, err
		}
		if i, ok := index[questionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return Definition{}, err
	}

	return Definition{Quiz: q, Questions: questions}, nil
}

type QuizListOpts struct {
	LessonID string
	Limit    int
	Offset   int
}

// ListPublishedQuizzes serves the public quiz catalog, newest first.
func (s *SQLStore) ListPublishedQuizzes(ctx context.Context, opts QuizListOpts) ([]Quiz, error) {
	where := []string{"is_published=$1"}
	args := []interface{}{true}
	if opts.LessonID != "" {
		args = append(args, opts.LessonID)
		where = append(where, fmt.Sprintf("lesson_id=$%d", len(args)))
	}
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	args = append(args, limit, opts.Offset)

	q := `SELECT id, lesson_id, title, COALESCE(description,''), time_limit_minutes, is_published, created_at
	      FROM quizzes WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Quiz{}
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}

// --- AttemptStore ---

// CreateAttempt numbers the attempt as count-of-prior+1 inside one
// transaction. A concurrent start racing the count surfaces as a unique
// violation on (student_id, quiz_id, attempt_no) and maps to Conflict.
func (s *SQLStore) CreateAttempt(ctx context.Context, quizID, studentID string) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	var prior int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id=$1 AND student_id=$2`,
		quizID, studentID).Scan(&prior); err != nil {
		return Attempt{}, err
	}

	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		StudentID: studentID,
		AttemptNo: prior + 1,
		Status:    StatusInProgress,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, student_id, attempt_no, status, score, started_at)
		 VALUES ($1,$2,$3,$4,$5,0,$6)`,
		a.ID, a.QuizID, a.StudentID, a.AttemptNo, a.Status, a.StartedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return Attempt{}, Conflictf("concurrent attempt start, retry")
		}
		return Attempt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, quiz_id, student_id, attempt_no, status, score, started_at, completed_at
		 FROM quiz_attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, NotFoundf("attempt not found")
	}
	return a, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	where := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if opts.QuizID != "" {
		add("quiz_id", opts.QuizID)
	}
	if opts.StudentID != "" {
		add("student_id", opts.StudentID)
	}
	if opts.Status != "" {
		add("status", opts.Status)
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)

	q := `SELECT id, quiz_id, student_id, attempt_no, status, score, started_at, completed_at FROM quiz_attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY started_at DESC, attempt_no DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- AnswerStore ---

// ReplaceAndSubmit deletes any prior rows, writes the new ones and flips the
// attempt to SUBMITTED, all in one transaction. The status update is
// conditional on IN_PROGRESS: zero affected rows means another submission
// won the race and this one fails without touching the stored result.
func (s *SQLStore) ReplaceAndSubmit(ctx context.Context, attemptID string, answers []Answer, score float64, completedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM quiz_attempt_answers WHERE attempt_id=$1`, attemptID); err != nil {
		return err
	}
	for _, a := range answers {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_attempt_answers (id, attempt_id, question_id, option_id, answer_text, is_correct)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			id, attemptID, a.QuestionID, a.OptionID, a.AnswerText, a.IsCorrect); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE quiz_attempts SET status=$1, score=$2, completed_at=$3 WHERE id=$4 AND status=$5`,
		StatusSubmitted, score, completedAt.Unix(), attemptID, StatusInProgress)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return BadRequestf("attempt already submitted")
	}
	return tx.Commit()
}

func (s *SQLStore) ListAnswers(ctx context.Context, attemptID string) ([]Answer, error) {
	// option_id ordering matches submission time: multi selections are
	// sorted before insert, so recomputation is deterministic.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attempt_id, question_id, option_id, answer_text, is_correct
		 FROM quiz_attempt_answers WHERE attempt_id=$1
		 ORDER BY question_id, option_id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Answer{}
	for rows.Next() {
		var a Answer
		var optionID, answerText sql.NullString
		var isCorrect sql.NullBool
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &optionID, &answerText, &isCorrect); err != nil {
			return nil, err
		}
		if optionID.Valid {
			a.OptionID = &optionID.String
		}
		if answerText.Valid {
			a.AnswerText = &answerText.String
		}
		if isCorrect.Valid {
			a.IsCorrect = &isCorrect.Bool
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- CourseOwnership ---

func (s *SQLStore) TeacherForQuiz(ctx context.Context, quizID string) (string, error) {
	var teacherID string
	err := s.db.QueryRowContext(ctx,
		`SELECT c.teacher_id
		 FROM quizzes z
		 JOIN lessons l ON l.id = z.lesson_id
		 JOIN courses c ON c.id = l.course_id
		 WHERE z.id=$1`, quizID).Scan(&teacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", NotFoundf("course for quiz not found")
	}
	if err != nil {
		return "", err
	}
	return teacherID, nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var limit sql.NullInt64
	err := row.Scan(&q.ID, &q.LessonID, &q.Title, &q.Description, &limit, &q.IsPublished, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, NotFoundf("quiz not found")
	}
	if err != nil {
		return Quiz{}, err
	}
	if limit.Valid {
		v := int(limit.Int64)
		q.TimeLimitMinutes = &v
	}
	return q, nil
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var started int64
	var completed sql.NullInt64
	if err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.AttemptNo, &a.Status, &a.Score, &started, &completed); err != nil {
		return Attempt{}, err
	}
	a.StartedAt = time.Unix(started, 0).UTC()
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		a.CompletedAt = &t
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
