package dataset

// Classification partitions column names by the role they can play.
// The three sets are disjoint and keep file order.
type Classification struct {
	Categorical []string `json:"categorical" yaml:"categorical"`
	Numeric     []string `json:"numeric" yaml:"numeric"`
	// Other holds columns that are neither, such as booleans. They can only
	// serve as a line chart x axis.
	Other []string `json:"other,omitempty" yaml:"other,omitempty"`
}

// Classify derives the classification from column storage types only,
// so repeated calls on the same dataset agree.
func Classify(d *Dataset) Classification {
	var c Classification
	for _, col := range d.columns {
		switch col.Kind {
		case KindNumeric:
			c.Numeric = append(c.Numeric, col.Name)
		case KindCategorical:
			c.Categorical = append(c.Categorical, col.Name)
		default:
			c.Other = append(c.Other, col.Name)
		}
	}
	return c
}

// Visualizable reports whether any column can take part in a chart role
// that needs categories or quantities.
func (c Classification) Visualizable() bool {
	return len(c.Categorical) > 0 || len(c.Numeric) > 0
}
