package prompts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

func interventionJSON(t *testing.T, area string) json.RawMessage {
	t.Helper()
	record := models.InterventionRecord{
		Scores: map[string][]float64{
			"EMT1": {35.0, 40.0, 38.0, 42.0, 39.0},
			"EMT2": {75.0, 78.0, 80.0, 77.0, 79.0},
			"EMT3": {70.0, 72.0, 68.0, 71.0, 69.0},
			"EMT4": {65.0, 67.0, 70.0, 68.0, 66.0},
		},
		Metadata: models.InterventionMetadata{
			ClassID:       "QUICK_TEST_1A",
			DeficientArea: area,
			NumStudents:   25,
		},
	}
	raw, err := json.Marshal(record)
	require.NoError(t, err)
	return raw
}

func TestInterventionPromptContainsClassProfile(t *testing.T) {
	prompt, err := Build(models.KindIntervention, interventionJSON(t, "EMT1"))
	require.NoError(t, err)

	assert.Contains(t, prompt, "Class ID: QUICK_TEST_1A")
	assert.Contains(t, prompt, "Number of Students: 25")
	assert.Contains(t, prompt, "Primary Area Needing Intervention: EMT1")
}

func TestInterventionPromptFormatsAverages(t *testing.T) {
	prompt, err := Build(models.KindIntervention, interventionJSON(t, "EMT2"))
	require.NoError(t, err)

	// 35+40+38+42+39 = 194 / 5 = 38.80
	assert.Contains(t, prompt, "38.80%")
	assert.Contains(t, prompt, "77.80%")
	assert.Contains(t, prompt, "70.00%")
	assert.Contains(t, prompt, "67.20%")
}

func TestInterventionPromptIncludesStrategyPool(t *testing.T) {
	prompt, err := Build(models.KindIntervention, interventionJSON(t, "EMT1"))
	require.NoError(t, err)

	assert.Contains(t, prompt, "Visual Emotion Recognition")
	assert.Contains(t, prompt, "Emotion Flashcard Pairs")
	assert.Contains(t, prompt, "Mirror Expression Practice")
	assert.Contains(t, prompt, "Use emotion flashcard pairs")
	assert.Contains(t, prompt, "Emotion flashcard sets")
}

func TestInterventionPromptEmbedsSchemaAndFinalCheck(t *testing.T) {
	prompt, err := Build(models.KindIntervention, interventionJSON(t, "EMT1"))
	require.NoError(t, err)

	assert.Contains(t, prompt, "Target Output Schema (JSON)")
	assert.Contains(t, prompt, "FINAL CHECK")
	assert.Contains(t, prompt, "opening curly brace")
}

func TestInterventionPromptRejectsUnknownAreaCode(t *testing.T) {
	_, err := Build(models.KindIntervention, interventionJSON(t, "UNKNOWN_EMT"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAreaCode))
}

func TestInterventionPromptRejectsMissingAreaCode(t *testing.T) {
	_, err := Build(models.KindIntervention, interventionJSON(t, ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAreaCode))
}

func TestInterventionPromptRejectsMalformedRecord(t *testing.T) {
	_, err := Build(models.KindIntervention, json.RawMessage(`{"scores": "nope"}`))
	require.Error(t, err)
}

func TestAllEMTAreasHaveStrategies(t *testing.T) {
	for _, area := range []string{"EMT1", "EMT2", "EMT3", "EMT4"} {
		info, ok := EMTStrategies[area]
		require.True(t, ok, "missing strategies for %s", area)
		assert.NotEmpty(t, info.Focus)
		assert.NotEmpty(t, info.Description)
		assert.NotEmpty(t, info.Activities)
	}
}

func TestCurriculumPromptContainsProfile(t *testing.T) {
	raw := json.RawMessage(`{"grade_level":"1","skill_areas":["emotional_awareness"],"score":25.0}`)

	prompt, err := Build(models.KindCurriculum, raw)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Grade Level: 1")
	assert.Contains(t, prompt, "emotional_awareness")
	assert.Contains(t, prompt, "Current Score: 25.0%")
	assert.Contains(t, prompt, "Return only a valid JSON object")
}

func TestCurriculumPromptJoinsSkillAreas(t *testing.T) {
	raw := json.RawMessage(`{"grade_level":"2","skill_areas":["emotional_awareness","emotional_regulation"],"score":50.0}`)

	prompt, err := Build(models.KindCurriculum, raw)
	require.NoError(t, err)

	assert.Contains(t, prompt, "emotional_awareness, emotional_regulation")
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build(models.TemplateKind("sonnet"), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestBuildIsDeterministic(t *testing.T) {
	raw := interventionJSON(t, "EMT3")

	first, err := Build(models.KindIntervention, raw)
	require.NoError(t, err)
	second, err := Build(models.KindIntervention, raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
