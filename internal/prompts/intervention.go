package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

// StrategyActivity is one classroom activity inside a strategy pool entry.
type StrategyActivity struct {
	Name           string
	Description    string
	Implementation string
	Resources      string
}

// StrategyInfo is the fixed strategy text for one EMT area.
type StrategyInfo struct {
	Focus       string
	Description string
	Activities  []StrategyActivity
}

// EMTStrategies is the fixed strategy pool keyed by EMT area code.
var EMTStrategies = map[string]StrategyInfo{
	"EMT1": {
		Focus:       "Visual Emotion Recognition",
		Description: "Visual-to-visual emotion matching difficulties",
		Activities: []StrategyActivity{
			{
				Name:           "Emotion Flashcard Pairs",
				Description:    "Students match photographs of facial expressions to emotion illustrations.",
				Implementation: "Use emotion flashcard pairs in small groups for 10 minutes daily, increasing expression subtlety each week.",
				Resources:      "Emotion flashcard sets, expression photo decks",
			},
			{
				Name:           "Mirror Expression Practice",
				Description:    "Students reproduce and name target expressions in front of a mirror.",
				Implementation: "Run mirror stations twice a week; pair students so one models and one identifies the expression.",
				Resources:      "Hand mirrors, expression reference posters",
			},
		},
	},
	"EMT2": {
		Focus:       "Auditory Emotion Recognition",
		Description: "Difficulty linking tone of voice to the emotion it conveys",
		Activities: []StrategyActivity{
			{
				Name:           "Tone of Voice Listening Games",
				Description:    "Students identify the emotion behind neutral sentences read with different intonations.",
				Implementation: "Play recorded clips daily and have students hold up the matching emotion card.",
				Resources:      "Audio clip library, emotion response cards",
			},
			{
				Name:           "Emotion Storytime",
				Description:    "Read-alouds pause at emotional moments so students can name how a character sounds.",
				Implementation: "Schedule two guided read-alouds per week with prediction prompts before each reveal.",
				Resources:      "Picture books with strong emotional arcs",
			},
		},
	},
	"EMT3": {
		Focus:       "Contextual Emotion Understanding",
		Description: "Trouble inferring emotions from situations rather than faces or voices",
		Activities: []StrategyActivity{
			{
				Name:           "Situation Cards",
				Description:    "Students reason about how a character feels given a described situation.",
				Implementation: "Work through four situation cards per session, asking students to justify their answer.",
				Resources:      "Situation card deck, feelings chart",
			},
			{
				Name:           "Role-Play Scenarios",
				Description:    "Small groups act out everyday scenarios and discuss each participant's feelings.",
				Implementation: "Rotate roles weekly so every student both acts and observes.",
				Resources:      "Scenario scripts, props box",
			},
		},
	},
	"EMT4": {
		Focus:       "Emotion Expression and Regulation",
		Description: "Difficulty expressing own emotions appropriately and recovering from strong feelings",
		Activities: []StrategyActivity{
			{
				Name:           "Feelings Check-In Routine",
				Description:    "Students name their current emotion and its intensity at fixed points in the day.",
				Implementation: "Open and close each day with a one-minute check-in using an intensity scale.",
				Resources:      "Feelings thermometer, check-in board",
			},
			{
				Name:           "Calm-Down Corner Practice",
				Description:    "Students rehearse regulation strategies before they are needed.",
				Implementation: "Introduce one strategy per week and practice it as a whole class, then individually.",
				Resources:      "Calm-down corner kit, breathing exercise cards",
			},
		},
	},
}

// emtAreaOrder is the display order of EMT averages in rendered prompts.
var emtAreaOrder = []string{"EMT1", "EMT2", "EMT3", "EMT4"}

const interventionSchemaDescription = `{
  "intervention_plan": {
    "class_id": "string",
    "target_area": "string",
    "duration_weeks": "integer",
    "weekly_sessions": [
      {
        "week": "integer",
        "objective": "string",
        "activities": ["string"],
        "success_criteria": "string"
      }
    ],
    "progress_monitoring": "string"
  }
}`

// InterventionBuilder renders the EMT classroom intervention prompt.
type InterventionBuilder struct{}

// Render implements [Builder].
func (InterventionBuilder) Render(raw json.RawMessage) (string, error) {
	var record models.InterventionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return "", fmt.Errorf("parse intervention record: %w", err)
	}

	area := record.Metadata.DeficientArea
	strategy, ok := EMTStrategies[area]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAreaCode, area)
	}

	averages := record.Averages()

	var sb strings.Builder
	sb.WriteString("You are an expert in Social-Emotional Learning (SEL) intervention design for primary school classrooms.\n\n")
	sb.WriteString("**Classroom Profile:**\n")
	fmt.Fprintf(&sb, "Class ID: %s\n", record.Metadata.ClassID)
	fmt.Fprintf(&sb, "Number of Students: %d\n", record.Metadata.NumStudents)
	fmt.Fprintf(&sb, "Primary Area Needing Intervention: %s\n\n", area)

	sb.WriteString("**EMT Assessment Averages:**\n")
	for _, code := range emtAreaOrder {
		fmt.Fprintf(&sb, "- %s (%s): %.2f%%\n", code, EMTStrategies[code].Focus, averages[code])
	}
	for _, code := range sortedExtraAreas(averages) {
		fmt.Fprintf(&sb, "- %s: %.2f%%\n", code, averages[code])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "**Recommended Strategy Pool for %s:**\n", area)
	sb.WriteString(FormatStrategies(strategy))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Design a 4-week classroom intervention plan targeting %s for this class. Ground every weekly session in the strategy pool above and keep activities feasible for the stated class size.\n\n", area)

	sb.WriteString("**Target Output Schema (JSON):**\n")
	sb.WriteString(interventionSchemaDescription)
	sb.WriteString("\n\n")
	sb.WriteString("FINAL CHECK: respond with only a valid JSON object matching the schema above. Your response must start with an opening curly brace and contain no markdown fences or prose outside the JSON.\n")

	return sb.String(), nil
}

// FormatStrategies renders one strategy pool entry as prompt text.
func FormatStrategies(info StrategyInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Focus: %s\n", info.Focus)
	fmt.Fprintf(&sb, "Description: %s\n", info.Description)
	for _, activity := range info.Activities {
		fmt.Fprintf(&sb, "- %s: %s\n", activity.Name, activity.Description)
		fmt.Fprintf(&sb, "  Implementation: %s\n", activity.Implementation)
		fmt.Fprintf(&sb, "  Resources: %s\n", activity.Resources)
	}
	return sb.String()
}

// sortedExtraAreas returns area codes outside the fixed EMT order, sorted,
// so prompts stay deterministic for the same record.
func sortedExtraAreas(averages map[string]float64) []string {
	var extras []string
	for code := range averages {
		if _, known := EMTStrategies[code]; !known {
			extras = append(extras, code)
		}
	}
	sort.Strings(extras)
	return extras
}
