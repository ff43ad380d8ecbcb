package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

func tempLog(t *testing.T) (EvaluationLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evaluations.csv")
	return NewCSVEvaluationLog(path), path
}

func sampleRow() models.EvaluationRow {
	return models.EvaluationRow{
		Timestamp:        time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		RowType:          models.RowTypeItem,
		Model:            "gemini-2.5-flash",
		Temperature:      0.5,
		Question:         "Prompt Type: curriculum\nInput Data:\n{}",
		Answer:           `{"weeks": []}`,
		JudgeFeedback:    "Relevance Score: 8",
		JudgePrompt:      "evaluate this",
		TotalRating:      models.PresentScore(7),
		ValidationStatus: "Valid",
		Relevance:        models.PresentScore(8),
		Clarity:          models.PresentScore(6),
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	log, path := tempLog(t)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, sampleRow()))
	require.NoError(t, log.Append(ctx, sampleRow()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "total_rating(1-10)"))
	assert.True(t, strings.HasPrefix(content,
		"timestamp,batch_id,row_type,model,temperature,question,answer,judge_feedback,"+
			"judge_prompt,total_rating(1-10),validation_status,relevance_score,"+
			"clarity_score,consistency_score,creativity_score\n"))
}

func TestAppendThenHistoryRoundTrip(t *testing.T) {
	log, _ := tempLog(t)
	ctx := context.Background()

	row := sampleRow()
	require.NoError(t, log.Append(ctx, row))

	rows, err := log.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, row.Timestamp, got.Timestamp)
	assert.Equal(t, models.RowTypeItem, got.RowType)
	assert.Equal(t, "gemini-2.5-flash", got.Model)
	assert.InDelta(t, 0.5, got.Temperature, 0.0001)
	assert.Equal(t, row.Question, got.Question)
	assert.Equal(t, row.Answer, got.Answer)
	assert.Equal(t, models.PresentScore(7), got.TotalRating)
	assert.Equal(t, models.PresentScore(8), got.Relevance)
	assert.Equal(t, models.PresentScore(6), got.Clarity)
	assert.Equal(t, "Valid", got.ValidationStatus)
}

func TestAbsentScoresRoundTripAsEmptyCells(t *testing.T) {
	log, path := tempLog(t)
	ctx := context.Background()

	row := sampleRow()
	row.Question = "single line question"
	row.Answer = "single line answer"
	row.JudgeFeedback = "no scores here"
	row.TotalRating = models.Score{}
	row.Relevance = models.Score{}
	row.Clarity = models.Score{}
	require.NoError(t, log.Append(ctx, row))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ",Valid,,,,"))

	rows, err := log.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ScoreAbsent, rows[0].TotalRating.State)
	assert.Equal(t, models.ScoreAbsent, rows[0].Relevance.State)
	assert.False(t, rows[0].Relevance.Present())
}

func TestBatchSummaryRowLeavesItemColumnsEmpty(t *testing.T) {
	log, _ := tempLog(t)
	ctx := context.Background()

	summary := models.EvaluationRow{
		Timestamp:     time.Now().UTC().Truncate(time.Second),
		BatchID:       "batch-1",
		RowType:       models.RowTypeBatchSummary,
		Model:         "gemini-2.5-flash",
		Temperature:   0.5,
		JudgeFeedback: "Batch Evaluation\nConsistency Score: 9\nCreativity Score: 7",
		JudgePrompt:   "batch prompt",
		Consistency:   models.PresentScore(9),
		Creativity:    models.PresentScore(7),
	}
	require.NoError(t, log.Append(ctx, summary))

	rows, err := log.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, models.RowTypeBatchSummary, got.RowType)
	assert.Equal(t, "batch-1", got.BatchID)
	assert.Empty(t, got.Question)
	assert.Empty(t, got.Answer)
	assert.Equal(t, models.ScoreAbsent, got.Relevance.State)
	assert.Equal(t, models.ScoreAbsent, got.Clarity.State)
	assert.Equal(t, models.PresentScore(9), got.Consistency)
	assert.Equal(t, models.PresentScore(7), got.Creativity)
}

func TestHistoryMissingFileReturnsEmpty(t *testing.T) {
	log, _ := tempLog(t)

	rows, err := log.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendPreservesMultilineFields(t *testing.T) {
	log, _ := tempLog(t)
	ctx := context.Background()

	row := sampleRow()
	row.JudgeFeedback = "**Relevance:** good, \"quoted\"\n**Relevance Score:** 8"
	require.NoError(t, log.Append(ctx, row))

	rows, err := log.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row.JudgeFeedback, rows[0].JudgeFeedback)
}
