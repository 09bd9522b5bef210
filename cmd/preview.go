package cmd

import (
	"fmt"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
)

var (
	prevRows      int
	prevMaxRows   int
	prevDelimiter string
	prevSheet     string
	prevOutput    string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the first rows, column types and roles of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := loadOptions(prevDelimiter, prevSheet, prevMaxRows)
		if err != nil {
			return err
		}
		ds, err := loadFile(args[0], opt)
		if err != nil {
			return err
		}
		rows := prevRows
		if !cmd.Flags().Changed("rows") {
			rows = current().PreviewRows
		}
		md := dataset.Summary(ds, rows)

		if prevOutput != "" {
			if err := utils.SafeWriteFile(prevOutput, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote preview to %s\n", prevOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&prevRows, "rows", "n", 5, "number of head rows to show (default from config)")
	previewCmd.Flags().IntVar(&prevMaxRows, "max-rows", -1, "maximum rows to load (0 = unlimited, default from config)")
	previewCmd.Flags().StringVar(&prevDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	previewCmd.Flags().StringVar(&prevSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
	previewCmd.Flags().StringVarP(&prevOutput, "output", "o", "", "optional path to write the preview (Markdown)")
}
