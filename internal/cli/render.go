package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/kpiboard/internal/page"
	"github.com/emiliopalmerini/kpiboard/internal/web/templates"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the dashboard once",
	Long: `Render the dashboard page once and write it as HTML or JSON.

The command fails when the data source cannot be reached; the page is still
written so the error is visible in it.

Examples:
  kpiboard render                           # HTML to stdout
  kpiboard render --format json             # JSON to stdout
  kpiboard render --output dashboard.html   # HTML to a file`,
	RunE: runRender,
}

var (
	renderFormat string
	renderOutput string
)

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format: html, json")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write to file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderFormat != "html" && renderFormat != "json" {
		return fmt.Errorf("unsupported format %q (use html or json)", renderFormat)
	}

	ctx := cmd.Context()
	app, err := NewAppContext(ctx, appConfig, appLogger)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	p := app.Renderer.Render(ctx)

	w := cmd.OutOrStdout()
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writePage(ctx, w, p, renderFormat); err != nil {
		return err
	}
	if p.Halted() {
		return fmt.Errorf("render halted: %s", p.Err)
	}
	return nil
}

func writePage(ctx context.Context, w io.Writer, p page.Page, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return templates.Page(p).Render(ctx, w)
}
