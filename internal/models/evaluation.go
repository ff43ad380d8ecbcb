package models

import "time"

// RowType distinguishes per-item rows from batch summary rows in the
// evaluation log.
type RowType string

const (
	RowTypeItem         RowType = "item"
	RowTypeBatchSummary RowType = "batch_summary"
)

// EvaluationRow is one record of the append-only evaluation log.
//
// Item rows never populate Consistency/Creativity; batch summary rows never
// populate Question/Answer/Relevance/Clarity. All rows of one batch,
// summary included, share the same BatchID.
type EvaluationRow struct {
	Timestamp        time.Time
	BatchID          string
	RowType          RowType
	Model            string
	Temperature      float32
	Question         string
	Answer           string
	JudgeFeedback    string
	JudgePrompt      string
	TotalRating      Score
	ValidationStatus string
	Relevance        Score
	Clarity          Score
	Consistency      Score
	Creativity       Score
}
