// Package judge scores generated answers with an LLM acting as evaluator.
// Individual evaluations grade a single question/answer pair for relevance
// and clarity; batch evaluations grade a fixed-size set of pairs for
// consistency and creativity across the whole set.
package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/eval-lab-api/internal/models"
	"github.com/noah-isme/eval-lab-api/pkg/ai"
)

// BatchSize is the number of pairs a batch evaluation requires, no more
// and no fewer.
const BatchSize = 5

var ErrInvalidBatchSize = errors.New("judge: batch must contain exactly five pairs")

// Pair is one question/answer pair inside a batch evaluation.
type Pair struct {
	Input  string
	Answer string
}

// Result carries the judge's free-text feedback, the exact prompt that was
// sent, and the scores parsed back out of the feedback. Individual
// evaluations populate Relevance, Clarity and Total; batch evaluations
// populate Consistency and Creativity. Unparsed scores stay absent.
type Result struct {
	Feedback string
	Prompt   string

	Total       models.Score
	Relevance   models.Score
	Clarity     models.Score
	Consistency models.Score
	Creativity  models.Score
}

// Judge evaluates answers through any configured generation backend.
type Judge struct {
	generator ai.Generator
	tracer    trace.Tracer
	logger    zerolog.Logger
}

func New(generator ai.Generator, logger zerolog.Logger) *Judge {
	return &Judge{
		generator: generator,
		tracer:    otel.Tracer("internal/judge"),
		logger:    logger.With().Str("component", "judge").Logger(),
	}
}

const individualPromptFormat = `You are an expert evaluator assessing the quality of AI-generated answers.

**Context/Question:**
---
%s
---

**Answer:**
---
%s
---

Please evaluate the answer based on the following criteria on a scale of 1 to 10:

1.  **Relevance**: How relevant is the response to the given input and context?
    - 1: Completely irrelevant.
    - 5: Partially relevant, but misses key aspects of the question.
    - 10: Perfectly relevant and directly addresses all parts of the question.

2.  **Clarity**: How clear and understandable is the generated output?
    - 1: Incoherent and impossible to understand.
    - 5: Understandable, but requires effort to follow due to poor structure or jargon.
    - 10: Perfectly clear, concise, and easy to understand.

Provide your evaluation in the following format:

**Relevance:** [Your detailed feedback on relevance]
**Relevance Score:** [A number from 1 to 10]

**Clarity:** [Your detailed feedback on clarity]
**Clarity Score:** [A number from 1 to 10]
`

// BuildIndividualPrompt renders the evaluation prompt for one pair.
func BuildIndividualPrompt(question, answer string) string {
	return fmt.Sprintf(individualPromptFormat, question, answer)
}

const batchPromptHeader = `You are an expert evaluator. Evaluate the ENTIRE batch of input/answer pairs only for: (1) Consistency across answers and (2) Creativity/Originality across the set.

Definitions (batch-level):
- Consistency (1-10): How consistent are the results across multiple runs? Similar prompts produce coherent, non-contradictory, and stylistically aligned answers. Higher = fewer contradictions, stable reasoning, uniform formatting/terminology when appropriate.
- Creativity (1-10): For creative tasks, how original or innovative is the output? Answers demonstrate originality and non-trivial insight without being generic or templated. Higher = novel, diverse, and contextually appropriate variations.

`

const batchPromptFooter = `Instructions:
- Judge at the batch level only. Do NOT provide per-item relevance/clarity.
- Consider conflicts/contradictions, tone/format drift, and reasoning stability for Consistency.
- Consider originality, diversity of approaches, and non-generic detail for Creativity.
- Keep rationale concise (2-4 sentences each).

Output format (exactly these sections):
Batch Evaluation
Consistency: <brief rationale>
Consistency Score: <integer 1-10>
Creativity: <brief rationale>
Creativity Score: <integer 1-10>
`

// BuildBatchPrompt renders the batch evaluation prompt, enumerating the
// pairs in their given order.
func BuildBatchPrompt(pairs []Pair) string {
	var b strings.Builder
	b.WriteString(batchPromptHeader)
	fmt.Fprintf(&b, "Data (%d pairs):\n", len(pairs))
	for i, pair := range pairs {
		fmt.Fprintf(&b, "Pair %d:\nInput:\n%s\nAnswer:\n%s\n\n", i+1, pair.Input, pair.Answer)
	}
	b.WriteString(batchPromptFooter)
	return b.String()
}

// JudgeOne evaluates a single question/answer pair for relevance and
// clarity. The total is taken from an explicit total label in the judge's
// response when present, otherwise computed as the rounded mean of the
// parsed relevance and clarity scores.
func (j *Judge) JudgeOne(ctx context.Context, question, answer, model string, temperature float32) (Result, error) {
	ctx, span := j.tracer.Start(ctx, "judge.one")
	defer span.End()

	prompt := BuildIndividualPrompt(question, answer)
	feedback, err := j.generator.Generate(ctx, ai.GenerateRequest{
		Prompt:      prompt,
		Model:       model,
		Temperature: temperature,
	})
	if err != nil {
		return Result{Prompt: prompt}, fmt.Errorf("individual evaluation: %w", err)
	}

	result := Result{
		Feedback:  feedback,
		Prompt:    prompt,
		Relevance: extractMetric(relevancePattern, feedback),
		Clarity:   extractMetric(clarityPattern, feedback),
	}
	result.Total = extractTotal(feedback, result.Relevance, result.Clarity)

	j.logger.Debug().
		Str("model", model).
		Str("total", result.Total.Cell()).
		Str("relevance", result.Relevance.Cell()).
		Str("clarity", result.Clarity.Cell()).
		Msg("individual evaluation complete")

	return result, nil
}

// JudgeBatch evaluates exactly BatchSize pairs for batch-level consistency
// and creativity.
func (j *Judge) JudgeBatch(ctx context.Context, pairs []Pair, model string, temperature float32) (Result, error) {
	if len(pairs) != BatchSize {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, len(pairs))
	}

	ctx, span := j.tracer.Start(ctx, "judge.batch")
	defer span.End()

	prompt := BuildBatchPrompt(pairs)
	feedback, err := j.generator.Generate(ctx, ai.GenerateRequest{
		Prompt:      prompt,
		Model:       model,
		Temperature: temperature,
	})
	if err != nil {
		return Result{Prompt: prompt}, fmt.Errorf("batch evaluation: %w", err)
	}

	result := Result{
		Feedback:    feedback,
		Prompt:      prompt,
		Consistency: extractMetric(consistencyPattern, feedback),
		Creativity:  extractMetric(creativityPattern, feedback),
	}

	j.logger.Debug().
		Str("model", model).
		Str("consistency", result.Consistency.Cell()).
		Str("creativity", result.Creativity.Cell()).
		Msg("batch evaluation complete")

	return result, nil
}
