package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/util"
)

var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Run one catalog query",
	Long: `Run a single catalog query against the data source and print its rows.

Examples:
  kpiboard query total_sales_profit
  kpiboard query monthly_sales --format csv > monthly.csv
  kpiboard query top_regions_by_profit --format json`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return catalogNames, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runQuery,
}

var queryFormat string

// catalogNames feeds shell completion; the catalog itself needs config.
var catalogNames = []string{
	catalog.TotalSalesProfit, catalog.ReturnRate, catalog.MonthlySales, catalog.TopRegionsByProfit,
	catalog.StateProfitDiscount, catalog.BestSeller, catalog.MostProfitable, catalog.MostExpensive, catalog.MostReturned,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "table", "Output format: table, json, csv")
}

func runQuery(cmd *cobra.Command, args []string) error {
	switch queryFormat {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unsupported format %q (use table, json or csv)", queryFormat)
	}

	ctx := cmd.Context()
	app, err := NewAppContext(ctx, appConfig, appLogger)
	if err != nil {
		return err
	}

	def, ok := app.Catalog.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown query %q (see 'kpiboard catalog')", args[0])
	}

	conn, err := app.Provider.Connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	result, err := app.Fetcher.Fetch(ctx, conn, def)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch queryFormat {
	case "json":
		return writeResultJSON(w, result)
	case "csv":
		return writeResultCSV(w, result)
	default:
		return writeResultTable(w, result)
	}
}

func writeResultTable(w io.Writer, r *domain.FetchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range r.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, row := range r.Rows {
		for i, c := range r.Columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell(row[c]))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(r.Rows))
	return err
}

func writeResultJSON(w io.Writer, r *domain.FetchResult) error {
	rows := r.Rows
	if rows == nil {
		rows = []domain.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeResultCSV(w io.Writer, r *domain.FetchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	record := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for i, c := range r.Columns {
			record[i] = util.ToString(row[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return util.ToString(v)
}
