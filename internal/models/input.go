package models

// TemplateKind selects which prompt template renders an input record.
type TemplateKind string

const (
	// KindIntervention is the EMT classroom intervention template.
	KindIntervention TemplateKind = "emt"
	// KindCurriculum is the personalised curriculum template.
	KindCurriculum TemplateKind = "curriculum"
)

// InterventionMetadata carries classroom context for an intervention record.
type InterventionMetadata struct {
	ClassID       string `json:"class_id"`
	DeficientArea string `json:"deficient_area"`
	NumStudents   int    `json:"num_students"`
}

// InterventionRecord is the input for the intervention template: per-area
// score series plus classroom metadata. Immutable once parsed.
type InterventionRecord struct {
	Scores   map[string][]float64 `json:"scores"`
	Metadata InterventionMetadata `json:"metadata"`
}

// Averages returns the arithmetic mean of each non-empty score series,
// keyed by area code.
func (r InterventionRecord) Averages() map[string]float64 {
	averages := make(map[string]float64, len(r.Scores))
	for area, series := range r.Scores {
		if len(series) == 0 {
			continue
		}
		var sum float64
		for _, sample := range series {
			sum += sample
		}
		averages[area] = sum / float64(len(series))
	}
	return averages
}

// CurriculumRecord is the input for the curriculum template.
type CurriculumRecord struct {
	GradeLevel string   `json:"grade_level"`
	SkillAreas []string `json:"skill_areas"`
	Score      float64  `json:"score"`
}
