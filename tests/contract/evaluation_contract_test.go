package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eval-lab-api/internal/dto"
	"github.com/noah-isme/eval-lab-api/internal/handler"
)

type stubEvaluationService struct {
	evalResponse dto.EvaluateResponse
	history      dto.HistoryResponse
}

func (s stubEvaluationService) Evaluate(context.Context, dto.EvaluateRequest) (dto.EvaluateResponse, error) {
	return s.evalResponse, nil
}

func (s stubEvaluationService) EvaluateBatch(context.Context, []byte) (dto.BatchEvaluateResponse, error) {
	return dto.BatchEvaluateResponse{}, nil
}

func (s stubEvaluationService) History(context.Context) (dto.HistoryResponse, error) {
	return s.history, nil
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func newContractApp(svc stubEvaluationService) *fiber.App {
	app := fiber.New()
	h := handler.NewEvaluationHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	h.Register(app.Group("/api/v1/evaluations"))
	return app
}

func TestEvaluateResponseContract(t *testing.T) {
	schema := compileSchema(t, "evaluation.schema.json")

	rating, relevance, clarity := 7, 8, 6
	svc := stubEvaluationService{evalResponse: dto.EvaluateResponse{
		Prompt:           "Grade Level: 1",
		Answer:           `{"weeks": []}`,
		ValidationStatus: "Valid",
		JudgeFeedback:    "**Relevance Score:** 8\n**Clarity Score:** 6",
		JudgePrompt:      "evaluate this answer",
		TotalRating:      &rating,
		Relevance:        &relevance,
		Clarity:          &clarity,
		GeneratorModel:   "gemini-2.5-flash",
		JudgeModel:       "gemini-2.5-flash",
		Temperature:      0.5,
	}}
	app := newContractApp(svc)

	body := []byte(`{"type":"curriculum","input":{"grade_level":"1","skill_areas":["emotional_awareness"],"score":25.0}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	validateAgainst(t, schema, resp)
}

func TestEvaluationHistoryContract(t *testing.T) {
	schema := compileSchema(t, "evaluation_history.schema.json")

	rating := 7
	avg := 7.0
	svc := stubEvaluationService{history: dto.HistoryResponse{
		Rows: []dto.HistoryRow{
			{
				Timestamp:        time.Now().UTC(),
				RowType:          "item",
				Model:            "gemini-2.5-flash",
				Temperature:      0.5,
				Question:         "Prompt Type: curriculum\nInput Data:\n{}",
				Answer:           `{"weeks": []}`,
				TotalRating:      &rating,
				ValidationStatus: "Valid",
			},
			{
				Timestamp:   time.Now().UTC(),
				BatchID:     "batch-1",
				RowType:     "batch_summary",
				Model:       "gemini-2.5-flash",
				Temperature: 0.5,
				Consistency: &rating,
				Creativity:  &rating,
			},
		},
		Summary: dto.HistorySummary{
			TotalEvaluations: 2,
			ValidResponses:   1,
			AvgTotalRating:   &avg,
			ModelsUsed:       []string{"gemini-2.5-flash"},
		},
	}}
	app := newContractApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	validateAgainst(t, schema, resp)
}

func validateAgainst(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
