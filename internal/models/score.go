package models

import "strconv"

// ScoreState describes the outcome of extracting one judge metric from
// free-text judge output. The zero value is ScoreAbsent, so an
// uninitialised Score reads as "no parseable value", never as zero.
type ScoreState int

const (
	// ScoreAbsent means no number was found for the metric's label.
	ScoreAbsent ScoreState = iota
	// ScorePresent means a number in [1,10] was found.
	ScorePresent
	// ScoreOutOfRange means a number was found but falls outside [1,10].
	ScoreOutOfRange
)

// Score is one judge metric parsed from a judge response. Absent,
// out-of-range and present values stay distinguishable all the way to the
// evaluation log.
type Score struct {
	Value int
	State ScoreState
}

// PresentScore returns a Score carrying an in-range value.
func PresentScore(value int) Score {
	return Score{Value: value, State: ScorePresent}
}

// OutOfRangeScore returns a Score for a parsed value outside [1,10].
func OutOfRangeScore(value int) Score {
	return Score{Value: value, State: ScoreOutOfRange}
}

// Present reports whether the score carries a usable in-range value.
func (s Score) Present() bool {
	return s.State == ScorePresent
}

// Cell renders the score for a CSV cell. Only present values render as
// numbers; absent and out-of-range values render empty rather than a
// sentinel zero.
func (s Score) Cell() string {
	if s.State != ScorePresent {
		return ""
	}
	return strconv.Itoa(s.Value)
}

// IntPtr returns the value for JSON payloads, nil when not present.
func (s Score) IntPtr() *int {
	if s.State != ScorePresent {
		return nil
	}
	value := s.Value
	return &value
}

// ScoreFromCell parses a CSV cell written by Cell.
func ScoreFromCell(cell string) Score {
	if cell == "" {
		return Score{}
	}
	value, err := strconv.Atoi(cell)
	if err != nil {
		return Score{}
	}
	if value < 1 || value > 10 {
		return OutOfRangeScore(value)
	}
	return PresentScore(value)
}
