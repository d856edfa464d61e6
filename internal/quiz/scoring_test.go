package quiz_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classhub/lms-backend/internal/quiz"
)

func TestCalculateResultRecomputesFromStoredRows(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.putDefinition(definition("quiz-1", true,
		mcqSingle("q1", 2, "b", "a", "b"),
		mcqMulti("q2", 3, []string{"x", "z"}, "x", "y", "z"),
	))
	a := startAttempt(t, store, "quiz-1", "student-1")

	submitted, err := newRecorder(store).SubmitAnswers(ctx, a.ID, "student-1", []quiz.Submission{
		{QuestionID: "q1", OptionID: "b"},
		{QuestionID: "q2", OptionIDs: []string{"x", "z"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, submitted.Score)
	assert.Equal(t, 100.0, submitted.Percentage)

	engine := quiz.NewScoringEngine(store, store, store)
	recomputed, err := engine.CalculateResult(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, submitted, recomputed)
}

func TestCalculateResultIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.putDefinition(definition("quiz-1", true,
		mcqSingle("q1", 1, "a", "a", "b"),
		mcqMulti("q2", 3, []string{"x", "z"}, "x", "y", "z"),
		textQuestion("q3", 2),
	))
	a := startAttempt(t, store, "quiz-1", "student-1")
	_, err := newRecorder(store).SubmitAnswers(ctx, a.ID, "student-1", []quiz.Submission{
		{QuestionID: "q1", OptionID: "b"},
		{QuestionID: "q2", OptionIDs: []string{"z", "x"}},
		{QuestionID: "q3", AnswerText: "notes"},
	})
	require.NoError(t, err)

	engine := quiz.NewScoringEngine(store, store, store)
	first, err := engine.CalculateResult(ctx, a.ID)
	require.NoError(t, err)
	second, err := engine.CalculateResult(ctx, a.ID)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestCalculateResultInProgressAttempt(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.putDefinition(definition("quiz-1", true, mcqSingle("q1", 2, "b", "a", "b")))
	a := startAttempt(t, store, "quiz-1", "student-1")

	engine := quiz.NewScoringEngine(store, store, store)
	result, err := engine.CalculateResult(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, quiz.StatusInProgress, result.Status)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 2, result.TotalPoints)
	assert.Equal(t, 0.0, result.Percentage)
	assert.Nil(t, result.CompletedAt)
	assert.Equal(t, int64(0), result.TimeTakenSeconds)
	require.Len(t, result.Answers, 1)
	assert.False(t, result.Answers[0].IsCorrect)
}

func TestCalculateResultZeroTotalPoints(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.putDefinition(definition("quiz-empty", true))
	a := startAttempt(t, store, "quiz-empty", "student-1")

	engine := quiz.NewScoringEngine(store, store, store)
	result, err := engine.CalculateResult(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalPoints)
	assert.Equal(t, 0.0, result.Percentage)
}

func TestCalculateResultUnknownAttempt(t *testing.T) {
	engine := quiz.NewScoringEngine(newFakeStore(), newFakeStore(), newFakeStore())
	_, err := engine.CalculateResult(context.Background(), "ghost")
	assert.Equal(t, quiz.KindNotFound, quiz.KindOf(err))
}

func TestPercentageRounding(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	// 1 of 3 points → 33.33 after rounding
	store.putDefinition(definition("quiz-1", true,
		mcqSingle("q1", 1, "a", "a", "b"),
		mcqSingle("q2", 2, "c", "c", "d"),
	))
	a := startAttempt(t, store, "quiz-1", "student-1")
	result, err := newRecorder(store).SubmitAnswers(ctx, a.ID, "student-1", []quiz.Submission{
		{QuestionID: "q1", OptionID: "a"},
		{QuestionID: "q2", OptionID: "d"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 33.33, result.Percentage)
}
