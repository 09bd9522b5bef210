package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/KaramelBytes/csvlens/internal/chart"
	"github.com/KaramelBytes/csvlens/internal/dashboard"
	"github.com/KaramelBytes/csvlens/internal/render"
	"github.com/KaramelBytes/csvlens/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	plotKind         string
	plotX            string
	plotY            string
	plotColor        string
	plotFilterColumn string
	plotFilterValues []string
	plotOut          string
	plotSpec         bool
	plotWidth        int
	plotHeight       int
	plotBins         int
	plotDelimiter    string
	plotSheet        string
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Filter a file and draw a chart as PNG or SVG",
	Long: `Draw a histogram, scatter, bar, line or pie chart from a file.
Fields left empty default to the first eligible column. Without --out the
planned chart is printed as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := chart.ParseKind(plotKind)
		if err != nil {
			return err
		}
		opt, err := loadOptions(plotDelimiter, plotSheet, -1)
		if err != nil {
			return err
		}
		ds, err := loadFile(args[0], opt)
		if err != nil {
			return err
		}

		sel := dashboard.Selection{
			FilterColumn: plotFilterColumn,
			FilterValues: plotFilterValues,
			ValuesChosen: cmd.Flags().Changed("filter-values"),
			Chart:        chart.Draft{Kind: kind, X: plotX, Y: plotY, Color: plotColor},
		}
		out := dashboard.Evaluate(ds, sel)
		for _, m := range out.Messages {
			printMessage(cmd.ErrOrStderr(), m)
		}
		if out.Err != nil {
			return out.Err
		}

		if plotSpec || plotOut == "" {
			b, err := yaml.Marshal(out.Request)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(b))
		}
		if plotOut == "" {
			return nil
		}

		format, err := render.FormatFromPath(plotOut)
		if err != nil {
			return err
		}
		c := current()
		ropt := render.Options{Width: c.ChartWidth, Height: c.ChartHeight, Bins: c.HistogramBins, Format: format}
		if plotWidth > 0 {
			ropt.Width = plotWidth
		}
		if plotHeight > 0 {
			ropt.Height = plotHeight
		}
		if cmd.Flags().Changed("bins") {
			ropt.Bins = plotBins
		}
		var buf bytes.Buffer
		if err := render.Render(&buf, out.Request, ropt); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(plotOut, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", out.Request.Title, plotOut)
		return nil
	},
}

func printMessage(w io.Writer, m dashboard.Message) {
	switch m.Level {
	case dashboard.LevelWarning:
		fmt.Fprintf(w, "⚠ Warning: %s\n", m.Text)
	case dashboard.LevelError:
		fmt.Fprintf(w, "✗ %s\n", m.Text)
	default:
		fmt.Fprintf(w, "• %s\n", m.Text)
	}
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotKind, "kind", "k", "histogram", "chart kind: histogram|scatter|bar|line|pie")
	plotCmd.Flags().StringVar(&plotX, "x", "", "x axis column (category for bar/pie)")
	plotCmd.Flags().StringVar(&plotY, "y", "", "y axis column (value for bar/pie)")
	plotCmd.Flags().StringVar(&plotColor, "color", "", "scatter: categorical column to color points by")
	plotCmd.Flags().StringVar(&plotFilterColumn, "filter-column", "", "categorical column to filter on")
	plotCmd.Flags().StringSliceVar(&plotFilterValues, "filter-values", nil, "values to keep (default all values)")
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "", "write the chart image (.png or .svg)")
	plotCmd.Flags().BoolVar(&plotSpec, "spec", false, "print the planned chart as YAML")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "image width in pixels (default from config)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 0, "image height in pixels (default from config)")
	plotCmd.Flags().IntVar(&plotBins, "bins", 0, "histogram bins (0 = automatic)")
	plotCmd.Flags().StringVar(&plotDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	plotCmd.Flags().StringVar(&plotSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
}
