package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/csvlens/internal/config"
	"github.com/KaramelBytes/csvlens/internal/dataset"
)

// loadOptions merges config with per-command overrides.
func loadOptions(delimiter, sheet string, maxRows int) (dataset.Options, error) {
	c := current()
	opt := dataset.DefaultOptions()
	opt.MaxRows = c.MaxRows
	if maxRows >= 0 {
		opt.MaxRows = maxRows
	}
	opt.Delimiter = c.DelimiterRune()
	if delimiter != "" {
		switch delimiter {
		case ",", ";", "|", "tab", `\t`:
			opt.Delimiter = config.ParseDelimiter(delimiter)
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'|'|'tab')", delimiter)
		}
	}
	opt.Sheet = sheet
	return opt, nil
}

func loadFile(path string, opt dataset.Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	ds, err := dataset.Load(path, f, opt)
	if err != nil {
		return nil, err
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
	return ds, nil
}
