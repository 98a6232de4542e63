package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/kpiboard/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert workbook sheets to CSV",
	Long: `Extract sheets of an Excel workbook into one CSV file per sheet, ready to be
loaded into the orders table.

Examples:
  kpiboard convert
  kpiboard convert --input orders.xlsx --sheets Orders --output-dir out/`,
	RunE: runConvert,
}

var (
	convertInput     string
	convertSheets    []string
	convertOutputDir string
)

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", convert.DefaultInput, "Workbook to read")
	convertCmd.Flags().StringSliceVarP(&convertSheets, "sheets", "s", convert.DefaultSheets, "Sheets to extract")
	convertCmd.Flags().StringVarP(&convertOutputDir, "output-dir", "o", convert.DefaultOutputDir, "Directory for the CSV files")
}

func runConvert(cmd *cobra.Command, args []string) error {
	written, err := convert.ExtractSheets(convertInput, convertSheets, convertOutputDir, appLogger)
	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return err
}
