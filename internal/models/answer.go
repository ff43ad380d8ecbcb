package models

// ModelAnswer is the structural shape expected of a generated answer. Only
// presence of content is ever checked; the output schema embedded in
// generation prompts is advisory to the generating model and is not
// enforced against the answer.
type ModelAnswer struct {
	Content   string `json:"content" validate:"required,min=1"`
	Reasoning string `json:"reasoning,omitempty"`
}
