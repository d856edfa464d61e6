package quiz_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classhub/lms-backend/internal/db"
	"github.com/classhub/lms-backend/internal/grading"
	"github.com/classhub/lms-backend/internal/quiz"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

// seedQuiz creates teacher-1 → course-1 → lesson-1 → the given quiz with one
// MCQ_SINGLE (2 pts, correct opt-b) and one MCQ_MULTI (3 pts, correct
// {opt-x, opt-z}).
func seedQuiz(t *testing.T, dbh *sql.DB, quizID string, published bool) {
	t.Helper()
	now := time.Now().Unix()
	pub := 0
	if published {
		pub = 1
	}
	stmts := []struct {
		q    string
		args []interface{}
	}{
		{`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
			[]interface{}{"teacher-1", "teacher-" + quizID, "x", "teacher", now}},
		{`INSERT INTO courses (id, title, teacher_id, created_at) VALUES ($1,$2,$3,$4)`,
			[]interface{}{"course-" + quizID, "Course", "teacher-1", now}},
		{`INSERT INTO lessons (id, course_id, title, order_index) VALUES ($1,$2,$3,0)`,
			[]interface{}{"lesson-" + quizID, "course-" + quizID, "Lesson"}},
		{`INSERT INTO quizzes (id, lesson_id, title, description, time_limit_minutes, is_published, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			[]interface{}{quizID, "lesson-" + quizID, "Quiz " + quizID, "desc", 30, pub, now}},
		{`INSERT INTO questions (id, quiz_id, content, qtype, points, order_index) VALUES ($1,$2,$3,$4,$5,$6)`,
			[]interface{}{quizID + "-q1", quizID, "single question", "MCQ_SINGLE", 2, 0}},
		{`INSERT INTO questions (id, quiz_id, content, qtype, points, order_index) VALUES ($1,$2,$3,$4,$5,$6)`,
			[]interface{}{quizID + "-q2", quizID, "multi question", "MCQ_MULTI", 3, 1}},
		{`INSERT INTO question_options (id, question_id, content, is_correct, order_index) VALUES ($1,$2,$3,$4,$5)`,
			[]interface{}{quizID + "-opt-a", quizID + "-q1", "A", 0, 0}},
		{`INSERT INTO question_options (id, question_id, content, is_correct, order_index) VALUES ($1,$2,$3,$4,$5)`,
			[]interface{}{quizID + "-opt-b", quizID + "-q1", "B", 1, 1}},
		{`INSERT INTO question_options (id, question_id, content, is_correct, order_index) VALUES ($1,$2,$3,$4,$5)`,
			[]interface{}{quizID + "-opt-x", quizID + "-q2", "X", 1, 0}},
		{`INSERT INTO question_options (id, question_id, content, is_correct, order_index) VALUES ($1,$2,$3,$4,$5)`,
			[]interface{}{quizID + "-opt-y", quizID + "-q2", "Y", 0, 1}},
		{`INSERT INTO question_options (id, question_id, content, is_correct, order_index) VALUES ($1,$2,$3,$4,$5)`,
			[]interface{}{quizID + "-opt-z", quizID + "-q2", "Z", 1, 2}},
	}
	for _, s := range stmts {
		if _, err := dbh.Exec(s.q, s.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestSQLStoreDefinition(t *testing.T) {
	dbh := openTestDB(t)
	seedQuiz(t, dbh, "quiz-1", true)
	store := quiz.NewSQLStore(dbh)
	ctx := context.Background()

	def, err := store.GetDefinition(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "Quiz quiz-1", def.Quiz.Title)
	require.NotNil(t, def.Quiz.TimeLimitMinutes)
	assert.Equal(t, 30, *def.Quiz.TimeLimitMinutes)
	assert.True(t, def.Quiz.IsPublished)

	require.Len(t, def.Questions, 2)
	assert.Equal(t, "quiz-1-q1", def.Questions[0].ID)
	assert.Equal(t, "quiz-1-q2", def.Questions[1].ID)
	assert.Equal(t, 5, def.TotalPoints())

	require.Len(t, def.Questions[0].Options, 2)
	assert.False(t, def.Questions[0].Options[0].IsCorrect)
	assert.True(t, def.Questions[0].Options[1].IsCorrect)
	require.Len(t, def.Questions[1].Options, 3)

	_, err = store.GetDefinition(ctx, "ghost")
	assert.Equal(t, quiz.KindNotFound, quiz.KindOf(err))
}

func TestSQLStoreAttemptNumbering(t *testing.T) {
	dbh := openTestDB(t)
	seedQuiz(t, dbh, "quiz-1", true)
	store := quiz.NewSQLStore(dbh)
	ctx := context.Background()

	a1, err := store.CreateAttempt(ctx, "quiz-1", "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, a1.AttemptNo)
	assert.Equal(t, quiz.StatusInProgress, a1.Status)

	a2, err := store.CreateAttempt(ctx, "quiz-1", "student-1")
	require.NoError(t, err)
	assert.Equal(t, 2, a2.AttemptNo)

	b1, err := store.CreateAttempt(ctx, "quiz-1", "student-2")
	require.NoError(t, err)
	assert.Equal(t, 1, b1.AttemptNo)

	// duplicate numbering is rejected by the unique index
	_, err = dbh.Exec(
		`INSERT INTO quiz_attempts (id, quiz_id, student_id, attempt_no, status, score, started_at)
		 VALUES ('dup', 'quiz-1', 'student-1', 2, 'IN_PROGRESS', 0, $1)`, time.Now().Unix())
	require.Error(t, err)
}

func TestSQLStoreSubmitFlow(t *testing.T) {
	dbh := openTestDB(t)
	seedQuiz(t, dbh, "quiz-1", true)
	store := quiz.NewSQLStore(dbh)
	ctx := context.Background()

	ledger := quiz.NewAttemptLedger(store, store)
	recorder := quiz.NewAnswerRecorder(store, store, store, grading.NewGrader())
	engine := quiz.NewScoringEngine(store, store, store)

	receipt, err := ledger.StartAttempt(ctx, "quiz-1", "student-1")
	require.NoError(t, err)

	result, err := recorder.SubmitAnswers(ctx, receipt.AttemptID, "student-1", []quiz.Submission{
		{QuestionID: "quiz-1-q1", OptionID: "quiz-1-opt-b"},
		{QuestionID: "quiz-1-q2", OptionIDs: []string{"quiz-1-opt-z", "quiz-1-opt-x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, 100.0, result.Percentage)

	// denormalized score landed on the attempt row
	stored, err := store.GetAttempt(ctx, receipt.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusSubmitted, stored.Status)
	assert.Equal(t, 5.0, stored.Score)
	require.NotNil(t, stored.CompletedAt)

	// one row per selected option plus the single-choice row
	rows, err := store.ListAnswers(ctx, receipt.AttemptID)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// recomputation from persisted facts matches the submission result
	recomputed, err := engine.CalculateResult(ctx, receipt.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, result, recomputed)

	// second submission is refused by the conditional status flip
	_, err = recorder.SubmitAnswers(ctx, receipt.AttemptID, "student-1", []quiz.Submission{
		{QuestionID: "quiz-1-q1", OptionID: "quiz-1-opt-a"},
	})
	assert.Equal(t, quiz.KindBadRequest, quiz.KindOf(err))

	after, err := engine.CalculateResult(ctx, receipt.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, after.Score)
}

func TestSQLStoreTeacherForQuiz(t *testing.T) {
	dbh := openTestDB(t)
	seedQuiz(t, dbh, "quiz-1", true)
	store := quiz.NewSQLStore(dbh)
	ctx := context.Background()

	teacherID, err := store.TeacherForQuiz(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", teacherID)

	_, err = store.TeacherForQuiz(ctx, "ghost")
	assert.Equal(t, quiz.KindNotFound, quiz.KindOf(err))
}

func TestSQLStoreListAttempts(t *testing.T) {
	dbh := openTestDB(t)
	seedQuiz(t, dbh, "quiz-1", true)
	store := quiz.NewSQLStore(dbh)
	ctx := context.Background()

	a1, err := store.CreateAttempt(ctx, "quiz-1", "student-1")
	require.NoError(t, err)
	_, err = store.CreateAttempt(ctx, "quiz-1", "student-2")
	require.NoError(t, err)

	mine, err := store.ListAttempts(ctx, quiz.AttemptListOpts{StudentID: "student-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a1.ID, mine[0].ID)

	all, err := store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: "quiz-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := store.ListAttempts(ctx, quiz.AttemptListOpts{Status: quiz.StatusInProgress})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestSQLStoreListPublishedQuizzes(t *testing.T) {
	dbh := openTestDB(t)
	seedQuiz(t, dbh, "quiz-1", true)
	store := quiz.NewSQLStore(dbh)
	ctx := context.Background()

	// an unpublished quiz under the same lesson stays hidden
	_, err := dbh.Exec(
		`INSERT INTO quizzes (id, lesson_id, title, is_published, created_at) VALUES ('quiz-draft', 'lesson-quiz-1', 'Draft', 0, $1)`,
		time.Now().Unix())
	require.NoError(t, err)

	list, err := store.ListPublishedQuizzes(ctx, quiz.QuizListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "quiz-1", list[0].ID)

	byLesson, err := store.ListPublishedQuizzes(ctx, quiz.QuizListOpts{LessonID: "lesson-quiz-1"})
	require.NoError(t, err)
	assert.Len(t, byLesson, 1)
}
