package dataset

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/utils"
)

// Summary renders a compact Markdown report: shape, schema, head rows and notes.
func Summary(d *Dataset, sampleRows int) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if d.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", d.Name))
	}
	if d.Len() < d.TotalRows {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", d.TotalRows, d.Len()))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", d.Len()))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(d.columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range d.columns {
		st, err := d.Stats(c.Name, 3)
		if err != nil {
			b.WriteString(fmt.Sprintf("- %s: %s (%s)\n", safeName(c.Name), c.Type, c.Kind))
			continue
		}
		missPct := 0.0
		if total := st.NonNull + st.Missing; total > 0 {
			missPct = float64(st.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (%s, non-null %d, missing %.1f%%)", safeName(c.Name), c.Type, c.Kind, st.NonNull, missPct))
		switch {
		case c.Kind == KindNumeric && st.NonNull > 0:
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", st.Min, st.Max, st.Mean, st.Std))
		case len(st.Top) > 0:
			b.WriteString("; top: ")
			for i, kv := range st.Top {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(utils.Truncate(kv.Value, 40)), kv.Count))
			}
			if st.Unique > len(st.Top) {
				b.WriteString(fmt.Sprintf("; unique=%d", st.Unique))
			}
		}
		b.WriteString("\n")
	}

	cls := Classify(d)
	b.WriteString("\n[COLUMN ROLES]\n")
	b.WriteString(fmt.Sprintf("- categorical: %s\n", listOrNone(cls.Categorical)))
	b.WriteString(fmt.Sprintf("- numeric: %s\n", listOrNone(cls.Numeric)))
	if len(cls.Other) > 0 {
		b.WriteString(fmt.Sprintf("- other: %s\n", listOrNone(cls.Other)))
	}

	if head := d.Head(sampleRows); len(head) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| ")
		for i, c := range d.columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range d.columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range head {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(utils.Truncate(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(d.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range d.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
