// Package page arranges widgets into the sections of the dashboard.
package page

import (
	"fmt"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/widget"
)

// Panel binds one catalog query to one widget.
type Panel struct {
	ID     string
	Query  string
	Intent widget.Intent
}

// SectionSpec is a titled group of panels.
type SectionSpec struct {
	ID     string
	Title  string
	Panels []Panel
}

// Layout is the ordered list of sections on the page.
type Layout []SectionSpec

// Section returns the section layout with the given ID.
func (l Layout) Section(id string) (SectionSpec, bool) {
	for _, s := range l {
		if s.ID == id {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// Panels returns every panel in page order.
func (l Layout) Panels() []Panel {
	var out []Panel
	for _, s := range l {
		out = append(out, s.Panels...)
	}
	return out
}

// Validate checks that panel IDs are unique and every panel names a query the
// catalog knows.
func (l Layout) Validate(c *catalog.Catalog) error {
	seen := make(map[string]bool)
	for _, s := range l {
		if s.ID == "" {
			return fmt.Errorf("section %q has no id", s.Title)
		}
		for _, p := range s.Panels {
			if seen[p.ID] {
				return fmt.Errorf("duplicate panel id %q", p.ID)
			}
			seen[p.ID] = true
			if _, ok := c.Lookup(p.Query); !ok {
				return fmt.Errorf("panel %q: unknown query %q", p.ID, p.Query)
			}
		}
	}
	return nil
}

// LayoutOptions sizes the ranked sections of DefaultLayout.
type LayoutOptions struct {
	TopRegions int
	ScatterK   int
}

// DefaultLayout is the Superstore KPI page.
func DefaultLayout(opts LayoutOptions) Layout {
	if opts.TopRegions < 1 {
		opts.TopRegions = 5
	}
	if opts.ScatterK < 1 {
		opts.ScatterK = widget.DefaultK
	}

	return Layout{
		{
			ID:    "kpis",
			Title: "Key Performance Indicators",
			Panels: []Panel{
				{
					ID:    "total_sales",
					Query: catalog.TotalSalesProfit,
					Intent: widget.Intent{
						Kind:        domain.KindMetric,
						Title:       "Total Sales",
						ValueColumn: "total_sales",
						Format:      widget.Currency,
					},
				},
				{
					ID:    "total_profit",
					Query: catalog.TotalSalesProfit,
					Intent: widget.Intent{
						Kind:        domain.KindMetric,
						Title:       "Total Profit",
						ValueColumn: "total_profit",
						Format:      widget.Currency,
						RatioOf:     "total_sales",
						RatioFormat: widget.Percent(1),
						DeltaFormat: "%s Margin",
					},
				},
				{
					ID:    "return_rate",
					Query: catalog.ReturnRate,
					Intent: widget.Intent{
						Kind:         domain.KindMetric,
						Title:        "Return Rate",
						ValueColumn:  "pct_returned",
						Format:       widget.Percent(2),
						DeltaFormat:  "%s (Items Returned)",
						InverseDelta: true,
					},
				},
			},
		},
		{
			ID:    "leaderboard",
			Title: "🏆 Top Item Metrics",
			Panels: []Panel{
				ranked("best_seller", catalog.BestSeller, "🥇 Best Seller (Units)", "maisvendido", widget.Count, "%s units sold", false),
				ranked("most_profitable", catalog.MostProfitable, "💰 Most Profitable Item", "maislucrativo", widget.Currency, "%s total profit", false),
				ranked("most_expensive", catalog.MostExpensive, "💎 Most Expensive Sale", "precocaro", widget.Currency, "%s max sale price", false),
				ranked("most_returned", catalog.MostReturned, "💔 Most Returned Item", "maisdevolvido", widget.Count, "%s units returned", true),
			},
		},
		{
			ID:    "trend",
			Title: "📈 Monthly Sales Trend",
			Panels: []Panel{
				{
					ID:    "monthly_sales",
					Query: catalog.MonthlySales,
					Intent: widget.Intent{
						Kind:        domain.KindTrendLine,
						Title:       "Monthly Sales Over Time",
						TimeColumn:  "order_month",
						ValueColumn: "monthly_sales",
						Format:      widget.Currency,
						XTitle:      "Order Month",
						YTitle:      "Total Sales",
					},
				},
			},
		},
		{
			ID:    "regions",
			Title: fmt.Sprintf("💰 Top %d Regions by Profit", opts.TopRegions),
			Panels: []Panel{
				{
					ID:    "top_regions",
					Query: catalog.TopRegionsByProfit,
					Intent: widget.Intent{
						Kind:        domain.KindRankedBar,
						Title:       fmt.Sprintf("Top %d Regions by Profit", opts.TopRegions),
						LabelColumn: "region",
						ValueColumn: "total_profit",
						Format:      widget.Currency,
						XTitle:      "Region",
						YTitle:      "Total Profit ($)",
					},
				},
			},
		},
		{
			ID:    "correlation",
			Title: "⚖️ Discount-Profit Correlation (Top/Bottom States)",
			Panels: []Panel{
				{
					ID:    "discount_profit",
					Query: catalog.StateProfitDiscount,
					Intent: widget.Intent{
						Kind:        domain.KindScatter,
						Title:       fmt.Sprintf("Average Discount vs. Total Profit (Top/Bottom %d States)", opts.ScatterK),
						LabelColumn: "state",
						X:           "average_discount",
						Y:           "total_profit",
						Size:        "total_sales",
						RankColumn:  "total_profit",
						K:           opts.ScatterK,
						XTitle:      "Average Discount",
						YTitle:      "Total Profit",
						Note:        "Circle size represents Total Sales.",
					},
				},
			},
		},
	}
}

func ranked(id, query, title, column string, format widget.Formatter, delta string, inverse bool) Panel {
	return Panel{
		ID:    id,
		Query: query,
		Intent: widget.Intent{
			Kind:         domain.KindRankedEntity,
			Title:        title,
			LabelColumn:  widget.DefaultLabelColumn,
			ValueColumn:  column,
			Format:       format,
			DeltaFormat:  delta,
			InverseDelta: inverse,
		},
	}
}
