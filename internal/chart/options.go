package chart

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// FieldOptions are the candidate columns for each field of a chart kind.
// A nil slice means the kind does not use that field.
type FieldOptions struct {
	X     []string `json:"x" yaml:"x"`
	Y     []string `json:"y,omitempty" yaml:"y,omitempty"`
	Color []string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Check reports whether the classification has the columns a chart kind needs.
func Check(kind Kind, cls dataset.Classification) error {
	switch kind {
	case Histogram, Line:
		if len(cls.Numeric) < 1 {
			return &ValidationError{Kind: kind, Requirement: "at least one numeric column"}
		}
	case Scatter:
		if len(cls.Numeric) < 2 {
			return &ValidationError{Kind: kind, Requirement: "at least two numeric columns"}
		}
	case Bar, Pie:
		if len(cls.Categorical) < 1 || len(cls.Numeric) < 1 {
			return &ValidationError{Kind: kind, Requirement: "at least one categorical and one numeric column"}
		}
	default:
		return fmt.Errorf("unknown chart kind %q", kind)
	}
	return nil
}

// Options lists the candidates for each field. columns is every column of the
// dataset in file order; x is the current x choice, which narrows the scatter
// y candidates.
func Options(kind Kind, cls dataset.Classification, columns []string, x string) FieldOptions {
	switch kind {
	case Histogram:
		return FieldOptions{X: cls.Numeric}
	case Scatter:
		if !lo.Contains(cls.Numeric, x) && len(cls.Numeric) > 0 {
			x = cls.Numeric[0]
		}
		return FieldOptions{
			X:     cls.Numeric,
			Y:     lo.Without(cls.Numeric, x),
			Color: append([]string{NoGrouping}, cls.Categorical...),
		}
	case Bar, Pie:
		return FieldOptions{X: cls.Categorical, Y: cls.Numeric}
	case Line:
		return FieldOptions{X: columns, Y: cls.Numeric}
	}
	return FieldOptions{}
}

// pick resolves one field against its candidates.
func pick(kind Kind, field, chosen string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", &ValidationError{Kind: kind, Field: field, Requirement: "no candidate columns"}
	}
	if chosen == "" {
		return candidates[0], nil
	}
	if !lo.Contains(candidates, chosen) {
		return "", &ValidationError{Kind: kind, Field: field, Requirement: fmt.Sprintf("column %q is not a valid choice", chosen)}
	}
	return chosen, nil
}
