package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	colJSON      bool
	colDelimiter string
	colSheet     string
)

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "Classify columns as categorical, numeric or other",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := loadOptions(colDelimiter, colSheet, -1)
		if err != nil {
			return err
		}
		ds, err := loadFile(args[0], opt)
		if err != nil {
			return err
		}
		cls := dataset.Classify(ds)
		out := cmd.OutOrStdout()
		if colJSON {
			b, err := utils.PrettyJSON(cls)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		for _, c := range ds.Columns() {
			fmt.Fprintf(out, "%-24s %-8s %s\n", c.Name, c.Type, c.Kind)
		}
		fmt.Fprintf(out, "\ncategorical: %s\n", joinOrNone(cls.Categorical))
		fmt.Fprintf(out, "numeric:     %s\n", joinOrNone(cls.Numeric))
		if !cls.Visualizable() {
			fmt.Fprintln(out, "⚠ No numeric or categorical columns detected for visualization")
		}
		return nil
	},
}

var (
	valDelimiter string
	valSheet     string
)

var valuesCmd = &cobra.Command{
	Use:   "values <file> <column>",
	Short: "List the distinct values of a categorical column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := loadOptions(valDelimiter, valSheet, -1)
		if err != nil {
			return err
		}
		ds, err := loadFile(args[0], opt)
		if err != nil {
			return err
		}
		vals, err := ds.Distinct(args[1])
		if err != nil {
			return err
		}
		for _, v := range vals {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().BoolVar(&colJSON, "json", false, "print the classification as JSON")
	columnsCmd.Flags().StringVar(&colDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	columnsCmd.Flags().StringVar(&colSheet, "sheet", "", "XLSX: sheet name (default first sheet)")

	rootCmd.AddCommand(valuesCmd)
	valuesCmd.Flags().StringVar(&valDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	valuesCmd.Flags().StringVar(&valSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
}
