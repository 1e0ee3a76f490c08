package domain

import (
	"fmt"
	"sort"
)

// Label is a suggested action for a matched article.
type Label string

// Default labels.
const (
	LabelReview         Label = "review for relevance"
	LabelRelatedInfo    Label = "update with related information"
	LabelNewInfo        Label = "update with new information"
	LabelPriorityUpdate Label = "priority update required"
)

// Threshold maps scores at or above Min (0-1 scale) to Label.
type Threshold struct {
	Min   float64
	Label Label
}

// ThresholdTable is an ordered set of thresholds. The row with the
// highest Min not exceeding the score wins; scores below every row
// get the label of the lowest row.
type ThresholdTable []Threshold

// DefaultThresholds returns the reference classification table.
func DefaultThresholds() ThresholdTable {
	return ThresholdTable{
		{Min: 0, Label: LabelReview},
		{Min: 0.5, Label: LabelRelatedInfo},
		{Min: 0.65, Label: LabelNewInfo},
		{Min: 0.8, Label: LabelPriorityUpdate},
	}
}

// Validate checks the table is usable.
func (t ThresholdTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: threshold table is empty", ErrInvalidInput)
	}
	seen := make(map[float64]bool, len(t))
	for _, row := range t {
		if row.Min < 0 || row.Min > 1 {
			return fmt.Errorf("%w: threshold %.2f outside 0-1", ErrInvalidInput, row.Min)
		}
		if row.Label == "" {
			return fmt.Errorf("%w: threshold %.2f has no label", ErrInvalidInput, row.Min)
		}
		if seen[row.Min] {
			return fmt.Errorf("%w: duplicate threshold %.2f", ErrInvalidInput, row.Min)
		}
		seen[row.Min] = true
	}
	return nil
}

// With returns a copy of the table with the row for label replaced by min.
// Labels not already present are appended.
func (t ThresholdTable) With(label Label, minScore float64) ThresholdTable {
	out := make(ThresholdTable, 0, len(t)+1)
	replaced := false
	for _, row := range t {
		if row.Label == label {
			row.Min = minScore
			replaced = true
		}
		out = append(out, row)
	}
	if !replaced {
		out = append(out, Threshold{Min: minScore, Label: label})
	}
	return out
}

// Classify maps a score on the given scale to a label.
func (t ThresholdTable) Classify(score float64, scale Scale) Label {
	if len(t) == 0 {
		t = DefaultThresholds()
	}
	normalised := scale.Normalise(score)

	rows := make(ThresholdTable, len(t))
	copy(rows, t)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Min < rows[j].Min })

	label := rows[0].Label
	for _, row := range rows {
		if normalised >= row.Min {
			label = row.Label
		}
	}
	return label
}

// Classify maps a score to a label using the default thresholds.
func Classify(score float64, scale Scale) Label {
	return DefaultThresholds().Classify(score, scale)
}
