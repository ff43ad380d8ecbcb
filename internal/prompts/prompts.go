package prompts

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/eval-lab-api/internal/models"
)

// ErrUnknownKind indicates a template kind outside {emt, curriculum}.
var ErrUnknownKind = errors.New("unknown template kind")

// ErrUnknownAreaCode indicates a deficient area with no strategy entry.
var ErrUnknownAreaCode = errors.New("unknown area code")

// Builder renders a generation prompt from a typed input record. Rendering
// is pure text substitution: the same record always produces byte-identical
// output.
type Builder interface {
	Render(raw json.RawMessage) (string, error)
}

// ForKind returns the builder for the given template kind.
func ForKind(kind models.TemplateKind) (Builder, error) {
	switch kind {
	case models.KindIntervention:
		return InterventionBuilder{}, nil
	case models.KindCurriculum:
		return CurriculumBuilder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Build renders a prompt for the given kind from raw record JSON.
func Build(kind models.TemplateKind, raw json.RawMessage) (string, error) {
	builder, err := ForKind(kind)
	if err != nil {
		return "", err
	}
	return builder.Render(raw)
}
