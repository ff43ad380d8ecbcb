package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

const curriculumSchemaDescription = `{
  "curriculum": {
    "grade_level": "string",
    "focus_areas": ["string"],
    "units": [
      {
        "title": "string",
        "learning_goals": ["string"],
        "activities": ["string"],
        "assessment": "string"
      }
    ],
    "progression_notes": "string"
  }
}`

// CurriculumBuilder renders the personalised SEL curriculum prompt.
type CurriculumBuilder struct{}

// Render implements [Builder].
func (CurriculumBuilder) Render(raw json.RawMessage) (string, error) {
	var record models.CurriculumRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return "", fmt.Errorf("parse curriculum record: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an expert Social-Emotional Learning (SEL) curriculum designer.\n\n")
	sb.WriteString("**Student Profile:**\n")
	fmt.Fprintf(&sb, "Grade Level: %s\n", record.GradeLevel)
	fmt.Fprintf(&sb, "Skill Areas: %s\n", strings.Join(record.SkillAreas, ", "))
	fmt.Fprintf(&sb, "Current Score: %.1f%%\n\n", record.Score)

	sb.WriteString("Design a personalised curriculum that strengthens the listed skill areas, appropriate for the stated grade level and calibrated to the current score. Structure the curriculum as a sequence of units that build on each other.\n\n")

	sb.WriteString("**Target Output Schema (JSON):**\n")
	sb.WriteString(curriculumSchemaDescription)
	sb.WriteString("\n\n")
	sb.WriteString("Return only a valid JSON object matching the schema above, with no surrounding prose.\n")

	return sb.String(), nil
}
