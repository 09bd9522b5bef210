package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/tobgu/qframe"
	qcsv "github.com/tobgu/qframe/config/csv"
)

// Options controls how an upload is turned into a Dataset.
type Options struct {
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter for delimited text. If 0, '\t' for .tsv names and ',' otherwise.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// Enums lists columns stored as bounded enumerations instead of free text.
	Enums []string
}

// DefaultOptions returns reasonable defaults for interactive uploads.
func DefaultOptions() Options {
	return Options{MaxRows: 100000}
}

// recordReader turns raw upload bytes into header + rows.
type recordReader interface {
	CanRead(name string) bool
	ReadRecords(data []byte, opt Options) ([][]string, error)
}

var readers []recordReader

func register(r recordReader) { readers = append(readers, r) }

func init() {
	register(xlsxReader{})
	register(delimitedReader{})
}

// Load parses an uploaded file into a Dataset. name is used to pick the
// format by extension; unknown extensions are read as delimited text.
// Any failure matches ErrEmptyOrUnparsable.
func Load(name string, r io.Reader, opt Options) (*Dataset, error) {
	base := filepath.Base(name)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, unparsable(base, "read upload", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, unparsable(base, "file is empty", nil)
	}
	opt = sniffDelimiter(base, opt)
	var rd recordReader = delimitedReader{}
	for _, cand := range readers {
		if cand.CanRead(base) {
			rd = cand
			break
		}
	}
	records, err := rd.ReadRecords(data, opt)
	if err != nil {
		return nil, unparsable(base, "", err)
	}
	header, rows, err := normalize(records)
	if err != nil {
		return nil, unparsable(base, "", err)
	}
	total := len(rows)
	var warnings []string
	if opt.MaxRows > 0 && total > opt.MaxRows {
		rows = rows[:opt.MaxRows]
		warnings = append(warnings, fmt.Sprintf("processed only %d/%d rows due to max_rows", opt.MaxRows, total))
	}
	frame, err := toFrame(header, rows, opt)
	if err != nil {
		return nil, unparsable(base, "", err)
	}
	ds := newDataset(base, total, frame)
	ds.Warnings = warnings
	return ds, nil
}

// LoadBytes is a convenience wrapper around Load.
func LoadBytes(name string, data []byte, opt Options) (*Dataset, error) {
	return Load(name, bytes.NewReader(data), opt)
}

type delimitedReader struct{}

func (delimitedReader) CanRead(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".tsv") || strings.HasSuffix(lower, ".txt")
}

func (delimitedReader) ReadRecords(data []byte, opt Options) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = opt.Delimiter
	if r.Comma == 0 {
		r.Comma = ','
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	return records, nil
}

// sniffDelimiter picks the delimiter from the file name when none is configured.
func sniffDelimiter(name string, opt Options) Options {
	if opt.Delimiter != 0 {
		return opt
	}
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		opt.Delimiter = '\t'
	} else {
		opt.Delimiter = ','
	}
	return opt
}

// normalize validates the record grid and cleans up the header.
// Blank header cells become Column_N and duplicates get a .N suffix.
// Short rows are padded; rows wider than the header are rejected.
func normalize(records [][]string) ([]string, [][]string, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, nil, errors.New("no header row")
	}
	raw := records[0]
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		}
		seen[h] = 0
		header[i] = h
	}
	ncol := len(header)
	rows := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && ncol > 1 {
			continue
		}
		if len(rec) > ncol {
			return nil, nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(rec), ncol)
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// toFrame re-encodes the normalized grid and lets qframe infer column types.
func toFrame(header []string, rows [][]string, opt Options) (qframe.QFrame, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return qframe.QFrame{}, fmt.Errorf("encode header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return qframe.QFrame{}, fmt.Errorf("encode rows: %w", err)
	}
	conf := []qcsv.ConfigFunc{qcsv.EmptyNull(true)}
	if len(opt.Enums) > 0 {
		typs := make(map[string]string, len(opt.Enums))
		for _, name := range opt.Enums {
			if lo.Contains(header, name) {
				typs[name] = "enum"
			}
		}
		if len(typs) > 0 {
			conf = append(conf, qcsv.Types(typs))
		}
	}
	frame := qframe.ReadCSV(&buf, conf...)
	if frame.Err != nil {
		return qframe.QFrame{}, fmt.Errorf("infer column types: %w", frame.Err)
	}
	return frame, nil
}
