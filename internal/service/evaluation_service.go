package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eval-lab-api/internal/dto"
	"github.com/noah-isme/eval-lab-api/internal/judge"
	"github.com/noah-isme/eval-lab-api/internal/models"
	"github.com/noah-isme/eval-lab-api/internal/prompts"
	"github.com/noah-isme/eval-lab-api/internal/repository"
	"github.com/noah-isme/eval-lab-api/pkg/ai"
)

// EvaluationService runs the full evaluation pipeline: render prompt,
// generate an answer, validate it, judge it, and log the outcome.
type EvaluationService interface {
	Evaluate(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error)
	EvaluateBatch(ctx context.Context, data []byte) (dto.BatchEvaluateResponse, error)
	History(ctx context.Context) (dto.HistoryResponse, error)
}

// Judger is the evaluation surface the service needs from the judge.
type Judger interface {
	JudgeOne(ctx context.Context, question, answer, model string, temperature float32) (judge.Result, error)
	JudgeBatch(ctx context.Context, pairs []judge.Pair, model string, temperature float32) (judge.Result, error)
}

// ErrInvalidInputRecord indicates the input record cannot be parsed.
var ErrInvalidInputRecord = errors.New("invalid input record")

// ErrUnsupportedFileType indicates the uploaded batch file is not a CSV.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrBatchColumns indicates the batch CSV is missing required columns.
var ErrBatchColumns = errors.New("batch file must contain 'type' and 'input' columns")

// ErrProviderCall indicates the upstream model provider call failed.
var ErrProviderCall = errors.New("provider call failed")

// EvaluationConfig carries the default models and temperatures plus the
// pacing delay between batch items.
type EvaluationConfig struct {
	GeneratorModel       string
	GeneratorTemperature float32
	JudgeModel           string
	JudgeTemperature     float32
	BatchItemDelay       time.Duration
}

type evaluationService struct {
	generator ai.Generator
	judger    Judger
	log       repository.EvaluationLog
	validator *validator.Validate
	logger    zerolog.Logger
	config    EvaluationConfig
}

// NewEvaluationService constructs an evaluation service.
func NewEvaluationService(generator ai.Generator, judger Judger, log repository.EvaluationLog, validate *validator.Validate, logger zerolog.Logger, cfg EvaluationConfig) EvaluationService {
	return &evaluationService{
		generator: generator,
		judger:    judger,
		log:       log,
		validator: validate,
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		config:    cfg,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, req dto.EvaluateRequest) (dto.EvaluateResponse, error) {
	kind := models.TemplateKind(req.Type)
	prompt, err := buildPrompt(kind, req.Input)
	if err != nil {
		return dto.EvaluateResponse{}, err
	}

	genModel, genTemp := s.generatorSettings(req.GeneratorModel, req.GeneratorTemperature)
	judgeModel, judgeTemp := s.judgeSettings(req.JudgeModel, req.JudgeTemperature)

	answer, err := s.generator.Generate(ctx, ai.GenerateRequest{
		Prompt:      prompt,
		Model:       genModel,
		Temperature: genTemp,
		JSONOutput:  true,
	})
	if err != nil {
		return dto.EvaluateResponse{}, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}

	validationStatus := s.validateAnswer(answer)
	question := questionForJudge(string(kind), indentedInput(req.Input))

	result, err := s.judger.JudgeOne(ctx, question, answer, judgeModel, judgeTemp)
	if err != nil {
		return dto.EvaluateResponse{}, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}

	row := models.EvaluationRow{
		Timestamp:        time.Now().UTC(),
		RowType:          models.RowTypeItem,
		Model:            genModel,
		Temperature:      genTemp,
		Question:         question,
		Answer:           answer,
		JudgeFeedback:    result.Feedback,
		JudgePrompt:      result.Prompt,
		TotalRating:      result.Total,
		ValidationStatus: validationStatus,
		Relevance:        result.Relevance,
		Clarity:          result.Clarity,
	}
	if err := s.log.Append(ctx, row); err != nil {
		return dto.EvaluateResponse{}, fmt.Errorf("log evaluation: %w", err)
	}

	s.logger.Info().
		Str("generator_model", genModel).
		Str("judge_model", judgeModel).
		Str("validation_status", validationStatus).
		Msg("evaluation complete")

	return dto.EvaluateResponse{
		Prompt:           prompt,
		Answer:           answer,
		ValidationStatus: validationStatus,
		JudgeFeedback:    result.Feedback,
		JudgePrompt:      result.Prompt,
		TotalRating:      result.Total.IntPtr(),
		Relevance:        result.Relevance.IntPtr(),
		Clarity:          result.Clarity.IntPtr(),
		GeneratorModel:   genModel,
		JudgeModel:       judgeModel,
		Temperature:      genTemp,
	}, nil
}

type batchRecord struct {
	Kind  string
	Input string
}

func (s *evaluationService) EvaluateBatch(ctx context.Context, data []byte) (dto.BatchEvaluateResponse, error) {
	if err := checkBatchFileType(data); err != nil {
		return dto.BatchEvaluateResponse{}, err
	}

	records, err := parseBatchCSV(data)
	if err != nil {
		return dto.BatchEvaluateResponse{}, err
	}
	if len(records) != judge.BatchSize {
		return dto.BatchEvaluateResponse{}, fmt.Errorf("%w: got %d rows", judge.ErrInvalidBatchSize, len(records))
	}

	genModel, genTemp := s.generatorSettings("", nil)
	judgeModel, judgeTemp := s.judgeSettings("", nil)

	batchID := uuid.NewString()
	items := make([]dto.BatchItemResult, 0, len(records))
	pairs := make([]judge.Pair, 0, len(records))

	for i, record := range records {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return dto.BatchEvaluateResponse{}, fmt.Errorf("batch %s item %d: %w", batchID, i+1, err)
			}
		}
		item, pair, err := s.evaluateBatchItem(ctx, batchID, record, genModel, genTemp, judgeModel, judgeTemp)
		if err != nil {
			// Rows appended for earlier items stay in the log; the
			// summary row is skipped for a failed batch.
			return dto.BatchEvaluateResponse{}, fmt.Errorf("batch %s item %d: %w", batchID, i+1, err)
		}
		item.Position = i + 1
		items = append(items, item)
		pairs = append(pairs, pair)
	}

	result, err := s.judger.JudgeBatch(ctx, pairs, judgeModel, judgeTemp)
	if err != nil {
		return dto.BatchEvaluateResponse{}, fmt.Errorf("batch %s: %w: %v", batchID, ErrProviderCall, err)
	}

	summary := models.EvaluationRow{
		Timestamp:     time.Now().UTC(),
		BatchID:       batchID,
		RowType:       models.RowTypeBatchSummary,
		Model:         genModel,
		Temperature:   genTemp,
		JudgeFeedback: result.Feedback,
		JudgePrompt:   result.Prompt,
		Consistency:   result.Consistency,
		Creativity:    result.Creativity,
	}
	if err := s.log.Append(ctx, summary); err != nil {
		return dto.BatchEvaluateResponse{}, fmt.Errorf("batch %s: log summary: %w", batchID, err)
	}

	s.logger.Info().
		Str("batch_id", batchID).
		Int("items", len(items)).
		Msg("batch evaluation complete")

	return dto.BatchEvaluateResponse{
		BatchID:          batchID,
		Items:            items,
		Consistency:      result.Consistency.IntPtr(),
		Creativity:       result.Creativity.IntPtr(),
		BatchFeedback:    result.Feedback,
		BatchJudgePrompt: result.Prompt,
		GeneratorModel:   genModel,
		JudgeModel:       judgeModel,
	}, nil
}

func (s *evaluationService) evaluateBatchItem(ctx context.Context, batchID string, record batchRecord, genModel string, genTemp float32, judgeModel string, judgeTemp float32) (dto.BatchItemResult, judge.Pair, error) {
	kind := models.TemplateKind(record.Kind)
	prompt, err := buildPrompt(kind, json.RawMessage(record.Input))
	if err != nil {
		return dto.BatchItemResult{}, judge.Pair{}, err
	}

	answer, err := s.generator.Generate(ctx, ai.GenerateRequest{
		Prompt:      prompt,
		Model:       genModel,
		Temperature: genTemp,
		JSONOutput:  true,
	})
	if err != nil {
		return dto.BatchItemResult{}, judge.Pair{}, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}

	question := questionForJudge(record.Kind, record.Input)
	result, err := s.judger.JudgeOne(ctx, question, answer, judgeModel, judgeTemp)
	if err != nil {
		return dto.BatchItemResult{}, judge.Pair{}, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}

	validationStatus := s.validateAnswer(answer)

	row := models.EvaluationRow{
		Timestamp:        time.Now().UTC(),
		BatchID:          batchID,
		RowType:          models.RowTypeItem,
		Model:            genModel,
		Temperature:      genTemp,
		Question:         question,
		Answer:           answer,
		JudgeFeedback:    result.Feedback,
		JudgePrompt:      result.Prompt,
		TotalRating:      result.Total,
		ValidationStatus: validationStatus,
		Relevance:        result.Relevance,
		Clarity:          result.Clarity,
	}
	if err := s.log.Append(ctx, row); err != nil {
		return dto.BatchItemResult{}, judge.Pair{}, fmt.Errorf("log evaluation: %w", err)
	}

	item := dto.BatchItemResult{
		Type:             record.Kind,
		Answer:           answer,
		ValidationStatus: validationStatus,
		TotalRating:      result.Total.IntPtr(),
		Relevance:        result.Relevance.IntPtr(),
		Clarity:          result.Clarity.IntPtr(),
	}
	return item, judge.Pair{Input: record.Input, Answer: answer}, nil
}

func (s *evaluationService) History(ctx context.Context) (dto.HistoryResponse, error) {
	rows, err := s.log.History(ctx)
	if err != nil {
		return dto.HistoryResponse{}, fmt.Errorf("read history: %w", err)
	}

	response := dto.HistoryResponse{Rows: make([]dto.HistoryRow, 0, len(rows))}
	for _, row := range rows {
		response.Rows = append(response.Rows, dto.NewHistoryRow(row))
	}
	response.Summary = summarizeHistory(rows)
	return response, nil
}

func summarizeHistory(rows []models.EvaluationRow) dto.HistorySummary {
	summary := dto.HistorySummary{TotalEvaluations: len(rows)}

	var total, relevance, clarity, consistency, creativity scoreAverager
	seen := make(map[string]bool)
	for _, row := range rows {
		if strings.HasPrefix(row.ValidationStatus, "Valid") {
			summary.ValidResponses++
		}
		if row.Model != "" && !seen[row.Model] {
			seen[row.Model] = true
			summary.ModelsUsed = append(summary.ModelsUsed, row.Model)
		}
		total.add(row.TotalRating)
		relevance.add(row.Relevance)
		clarity.add(row.Clarity)
		consistency.add(row.Consistency)
		creativity.add(row.Creativity)
	}

	summary.AvgTotalRating = total.mean()
	summary.AvgRelevance = relevance.mean()
	summary.AvgClarity = clarity.mean()
	summary.AvgConsistency = consistency.mean()
	summary.AvgCreativity = creativity.mean()
	return summary
}

type scoreAverager struct {
	sum   int
	count int
}

func (a *scoreAverager) add(score models.Score) {
	if score.Present() {
		a.sum += score.Value
		a.count++
	}
}

func (a *scoreAverager) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	mean := float64(a.sum) / float64(a.count)
	return &mean
}

func (s *evaluationService) validateAnswer(answer string) string {
	if err := s.validator.Struct(models.ModelAnswer{Content: answer}); err != nil {
		return fmt.Sprintf("Invalid: %v", err)
	}
	return "Valid"
}

func (s *evaluationService) generatorSettings(model string, temperature *float32) (string, float32) {
	m, t := s.config.GeneratorModel, s.config.GeneratorTemperature
	if model != "" {
		m = model
	}
	if temperature != nil {
		t = *temperature
	}
	return m, t
}

func (s *evaluationService) judgeSettings(model string, temperature *float32) (string, float32) {
	m, t := s.config.JudgeModel, s.config.JudgeTemperature
	if model != "" {
		m = model
	}
	if temperature != nil {
		t = *temperature
	}
	return m, t
}

func (s *evaluationService) pause(ctx context.Context) error {
	if s.config.BatchItemDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.config.BatchItemDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func checkBatchFileType(data []byte) error {
	kind := mimetype.Detect(data)
	if kind.Is("text/csv") || kind.Is("text/plain") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, kind.String())
}

func parseBatchCSV(data []byte) ([]batchRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchColumns, err)
	}

	typeIdx, inputIdx := -1, -1
	for i, column := range header {
		switch strings.TrimSpace(strings.ToLower(column)) {
		case "type":
			typeIdx = i
		case "input":
			inputIdx = i
		}
	}
	if typeIdx < 0 || inputIdx < 0 {
		return nil, ErrBatchColumns
	}

	var records []batchRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInputRecord, err)
		}
		records = append(records, batchRecord{
			Kind:  record[typeIdx],
			Input: record[inputIdx],
		})
	}
	return records, nil
}

// buildPrompt renders the prompt for a record, folding record parse
// failures into ErrInvalidInputRecord while passing the builder's own
// sentinel errors through untouched.
func buildPrompt(kind models.TemplateKind, raw json.RawMessage) (string, error) {
	prompt, err := prompts.Build(kind, raw)
	if err != nil {
		if errors.Is(err, prompts.ErrUnknownKind) || errors.Is(err, prompts.ErrUnknownAreaCode) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidInputRecord, err)
	}
	return prompt, nil
}

func questionForJudge(kind, input string) string {
	return fmt.Sprintf("Prompt Type: %s\nInput Data:\n%s", kind, input)
}

func indentedInput(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
