package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the catalog queries",
	Long: `List the queries the dashboard runs, in page order.

Examples:
  kpiboard catalog         # Name, shape and title
  kpiboard catalog --sql   # Include the SQL text`,
	RunE: runCatalog,
}

var catalogSQL bool

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogSQL, "sql", false, "Print the SQL of each query")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	dialect, err := catalog.DialectFor(appConfig.Database.Driver)
	if err != nil {
		return err
	}
	cat, err := catalog.New(catalog.Options{
		Table:      appConfig.Dashboard.OrdersTable,
		Dialect:    dialect,
		TopRegions: appConfig.Dashboard.TopRegions,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if catalogSQL {
		for _, def := range cat.All() {
			fmt.Fprintf(w, "-- %s (%s): %s\n%s;\n\n", def.Name, def.Shape, def.Title, def.SQL)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHAPE\tTITLE")
	for _, def := range cat.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Name, def.Shape, def.Title)
	}
	return tw.Flush()
}
