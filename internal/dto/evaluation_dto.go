package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

// EvaluateRequest is the payload for a single evaluation run. Model and
// temperature overrides are optional; unset fields fall back to the
// configured defaults.
type EvaluateRequest struct {
	Type                 string          `json:"type" validate:"required,oneof=emt curriculum"`
	Input                json.RawMessage `json:"input" validate:"required"`
	GeneratorModel       string          `json:"generator_model" validate:"omitempty,min=1"`
	GeneratorTemperature *float32        `json:"generator_temperature" validate:"omitempty,gte=0,lte=1"`
	JudgeModel           string          `json:"judge_model" validate:"omitempty,min=1"`
	JudgeTemperature     *float32        `json:"judge_temperature" validate:"omitempty,gte=0,lte=1"`
}

// EvaluateResponse reports one complete evaluation: the rendered prompt,
// the generated answer, validation outcome, and the judge's verdict.
// Score pointers are nil when the judge's response had no parseable value.
type EvaluateResponse struct {
	Prompt           string  `json:"prompt"`
	Answer           string  `json:"answer"`
	ValidationStatus string  `json:"validation_status"`
	JudgeFeedback    string  `json:"judge_feedback"`
	JudgePrompt      string  `json:"judge_prompt"`
	TotalRating      *int    `json:"total_rating"`
	Relevance        *int    `json:"relevance"`
	Clarity          *int    `json:"clarity"`
	GeneratorModel   string  `json:"generator_model"`
	JudgeModel       string  `json:"judge_model"`
	Temperature      float32 `json:"temperature"`
}

// BatchItemResult reports one member of a batch evaluation.
type BatchItemResult struct {
	Position         int    `json:"position"`
	Type             string `json:"type"`
	Answer           string `json:"answer"`
	ValidationStatus string `json:"validation_status"`
	TotalRating      *int   `json:"total_rating"`
	Relevance        *int   `json:"relevance"`
	Clarity          *int   `json:"clarity"`
}

// BatchEvaluateResponse reports a full batch run: every item's individual
// result plus the batch-level consistency and creativity verdict.
type BatchEvaluateResponse struct {
	BatchID          string            `json:"batch_id"`
	Items            []BatchItemResult `json:"items"`
	Consistency      *int              `json:"consistency"`
	Creativity       *int              `json:"creativity"`
	BatchFeedback    string            `json:"batch_feedback"`
	BatchJudgePrompt string            `json:"batch_judge_prompt"`
	GeneratorModel   string            `json:"generator_model"`
	JudgeModel       string            `json:"judge_model"`
}

// HistoryRow is one logged evaluation as returned to API consumers.
type HistoryRow struct {
	Timestamp        time.Time `json:"timestamp"`
	BatchID          string    `json:"batch_id,omitempty"`
	RowType          string    `json:"row_type"`
	Model            string    `json:"model"`
	Temperature      float32   `json:"temperature"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	JudgeFeedback    string    `json:"judge_feedback"`
	TotalRating      *int      `json:"total_rating"`
	ValidationStatus string    `json:"validation_status"`
	Relevance        *int      `json:"relevance"`
	Clarity          *int      `json:"clarity"`
	Consistency      *int      `json:"consistency"`
	Creativity       *int      `json:"creativity"`
}

// HistorySummary aggregates the logged history. Averages are nil until at
// least one row carries the corresponding score.
type HistorySummary struct {
	TotalEvaluations int      `json:"total_evaluations"`
	ValidResponses   int      `json:"valid_responses"`
	AvgTotalRating   *float64 `json:"avg_total_rating"`
	AvgRelevance     *float64 `json:"avg_relevance"`
	AvgClarity       *float64 `json:"avg_clarity"`
	AvgConsistency   *float64 `json:"avg_consistency"`
	AvgCreativity    *float64 `json:"avg_creativity"`
	ModelsUsed       []string `json:"models_used"`
}

// HistoryResponse bundles the raw log rows with their summary.
type HistoryResponse struct {
	Rows    []HistoryRow   `json:"rows"`
	Summary HistorySummary `json:"summary"`
}

// NewHistoryRow builds a history DTO from a logged row.
func NewHistoryRow(row models.EvaluationRow) HistoryRow {
	return HistoryRow{
		Timestamp:        row.Timestamp,
		BatchID:          row.BatchID,
		RowType:          string(row.RowType),
		Model:            row.Model,
		Temperature:      row.Temperature,
		Question:         row.Question,
		Answer:           row.Answer,
		JudgeFeedback:    row.JudgeFeedback,
		TotalRating:      row.TotalRating.IntPtr(),
		ValidationStatus: row.ValidationStatus,
		Relevance:        row.Relevance.IntPtr(),
		Clarity:          row.Clarity.IntPtr(),
		Consistency:      row.Consistency.IntPtr(),
		Creativity:       row.Creativity.IntPtr(),
	}
}
