package dataset

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/types"
)

// Kind is the role a column can play in filters and charts.
type Kind string

const (
	KindUnknown     Kind = ""
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindOther       Kind = "other"
)

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Column is a named column with its storage type and the kind derived from it.
type Column struct {
	Name string
	Type types.DataType
	Kind Kind
}

// Dataset is an immutable table loaded from one uploaded file.
type Dataset struct {
	// Name is the base name of the source file.
	Name string
	// TotalRows counts data rows in the source, including rows dropped by MaxRows.
	TotalRows int
	Warnings  []string

	frame   qframe.QFrame
	columns []Column
	index   map[string]int
}

func newDataset(name string, total int, frame qframe.QFrame) *Dataset {
	typeMap := frame.ColumnTypeMap()
	names := frame.ColumnNames()
	d := &Dataset{
		Name:      name,
		TotalRows: total,
		frame:     frame,
		columns:   make([]Column, len(names)),
		index:     make(map[string]int, len(names)),
	}
	for i, n := range names {
		t := typeMap[n]
		d.columns[i] = Column{Name: n, Type: t, Kind: kindOf(t)}
		d.index[n] = i
	}
	return d
}

// derive returns a dataset over a new frame with the same column tags.
func (d *Dataset) derive(frame qframe.QFrame) *Dataset {
	return &Dataset{
		Name:      d.Name,
		TotalRows: d.TotalRows,
		Warnings:  d.Warnings,
		frame:     frame,
		columns:   d.columns,
		index:     d.index,
	}
}

func kindOf(t types.DataType) Kind {
	switch t {
	case types.Int, types.Float:
		return KindNumeric
	case types.String, types.Enum:
		return KindCategorical
	default:
		return KindOther
	}
}

// Len returns the number of rows held.
func (d *Dataset) Len() int { return d.frame.Len() }

// Columns returns the columns in file order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames returns the column names in file order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Frame exposes the underlying qframe for read-only use.
func (d *Dataset) Frame() qframe.QFrame { return d.frame }

// Floats returns the values of a numeric column; missing values are NaN.
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, ok := d.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	switch col.Type {
	case types.Int:
		v, err := d.frame.IntView(name)
		if err != nil {
			return nil, fmt.Errorf("int view %q: %w", name, err)
		}
		out := make([]float64, v.Len())
		for i := range out {
			out[i] = float64(v.ItemAt(i))
		}
		return out, nil
	case types.Float:
		v, err := d.frame.FloatView(name)
		if err != nil {
			return nil, fmt.Errorf("float view %q: %w", name, err)
		}
		out := make([]float64, v.Len())
		for i := range out {
			out[i] = v.ItemAt(i)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("column %q is %s, not numeric", name, col.Kind)
	}
}

// Labels returns the text form of every cell in a column of any type.
// valid[i] is false where the cell is missing.
func (d *Dataset) Labels(name string) (labels []string, valid []bool, err error) {
	col, ok := d.Column(name)
	if !ok {
		return nil, nil, fmt.Errorf("column %q not found", name)
	}
	n := d.frame.Len()
	labels = make([]string, n)
	valid = make([]bool, n)
	switch col.Type {
	case types.String:
		v, err := d.frame.StringView(name)
		if err != nil {
			return nil, nil, fmt.Errorf("string view %q: %w", name, err)
		}
		for i := 0; i < n; i++ {
			if s := v.ItemAt(i); s != nil {
				labels[i], valid[i] = *s, true
			}
		}
	case types.Enum:
		v, err := d.frame.EnumView(name)
		if err != nil {
			return nil, nil, fmt.Errorf("enum view %q: %w", name, err)
		}
		for i := 0; i < n; i++ {
			if s := v.ItemAt(i); s != nil {
				labels[i], valid[i] = *s, true
			}
		}
	case types.Bool:
		v, err := d.frame.BoolView(name)
		if err != nil {
			return nil, nil, fmt.Errorf("bool view %q: %w", name, err)
		}
		for i := 0; i < n; i++ {
			labels[i], valid[i] = cast.ToString(v.ItemAt(i)), true
		}
	case types.Int, types.Float:
		vals, err := d.Floats(name)
		if err != nil {
			return nil, nil, err
		}
		for i, f := range vals {
			if math.IsNaN(f) {
				continue
			}
			if col.Type == types.Int {
				labels[i] = cast.ToString(int64(f))
			} else {
				labels[i] = cast.ToString(f)
			}
			valid[i] = true
		}
	default:
		return nil, nil, fmt.Errorf("column %q has unsupported type %s", name, col.Type)
	}
	return labels, valid, nil
}

// Head returns up to n rows rendered as text; missing cells are empty.
func (d *Dataset) Head(n int) [][]string {
	if n > d.Len() {
		n = d.Len()
	}
	if n <= 0 {
		return nil
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, len(d.columns))
	}
	for j, c := range d.columns {
		labels, valid, err := d.Labels(c.Name)
		if err != nil {
			continue
		}
		for i := 0; i < n; i++ {
			if valid[i] {
				rows[i][j] = labels[i]
			}
		}
	}
	return rows
}

// Distinct returns the distinct non-missing values of a categorical column
// in order of first appearance.
func (d *Dataset) Distinct(name string) ([]string, error) {
	col, ok := d.Column(name)
	if !ok {
		return nil, &FilterError{Column: name}
	}
	if col.Kind != KindCategorical {
		return nil, &FilterError{Column: name, Kind: col.Kind}
	}
	labels, valid, err := d.Labels(name)
	if err != nil {
		return nil, err
	}
	present := lo.Filter(labels, func(_ string, i int) bool { return valid[i] })
	return lo.Uniq(present), nil
}
