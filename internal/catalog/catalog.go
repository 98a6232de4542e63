// Package catalog holds the fixed set of aggregate queries the dashboard runs
// against the orders fact table.
package catalog

import (
	"fmt"
	"regexp"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
)

// Query names.
const (
	TotalSalesProfit    = "total_sales_profit"
	ReturnRate          = "return_rate"
	MonthlySales        = "monthly_sales"
	TopRegionsByProfit  = "top_regions_by_profit"
	StateProfitDiscount = "state_profit_discount"
	BestSeller          = "best_seller"
	MostProfitable      = "most_profitable"
	MostExpensive       = "most_expensive"
	MostReturned        = "most_returned"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Options configures New.
type Options struct {
	// Table is the orders fact table, optionally schema-qualified.
	Table      string
	Dialect    Dialect
	TopRegions int
}

// Catalog is an ordered, immutable collection of query definitions.
type Catalog struct {
	defs   []domain.QueryDefinition
	byName map[string]int
}

// New builds the catalog for a table and dialect.
func New(opts Options) (*Catalog, error) {
	if !tableName.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid orders table name %q", opts.Table)
	}
	if opts.Dialect.MonthBucket == nil {
		return nil, fmt.Errorf("catalog requires a SQL dialect")
	}
	if opts.TopRegions < 1 {
		opts.TopRegions = 5
	}

	t := opts.Table
	defs := []domain.QueryDefinition{
		{
			Name:  TotalSalesProfit,
			Title: "Total sales and profit",
			Shape: domain.ShapeRow,
			SQL: fmt.Sprintf(`SELECT
    ROUND(SUM(sales), 2) AS total_sales,
    ROUND(SUM(profit), 2) AS total_profit
FROM %s
WHERE is_returned_flag = FALSE`, t),
		},
		{
			// Denominator counts every order, returned or not, while the
			// sales KPIs exclude returns.
			Name:  ReturnRate,
			Title: "Return rate",
			Shape: domain.ShapeScalar,
			SQL: fmt.Sprintf(`SELECT
    SUM(CASE WHEN is_returned_flag = TRUE THEN 1 ELSE 0 END) * 1.0 / COUNT(*) AS pct_returned
FROM %s`, t),
		},
		{
			Name:  MonthlySales,
			Title: "Monthly sales",
			Shape: domain.ShapeTable,
			SQL: fmt.Sprintf(`SELECT
    %s AS order_month,
    ROUND(SUM(sales), 2) AS monthly_sales
FROM %s
WHERE is_returned_flag = FALSE
GROUP BY 1
ORDER BY 1`, opts.Dialect.MonthBucket("order_date"), t),
		},
		{
			Name:  TopRegionsByProfit,
			Title: "Top regions by profit",
			Shape: domain.ShapeTable,
			SQL: fmt.Sprintf(`SELECT
    region,
    ROUND(SUM(profit), 2) AS total_profit
FROM %s
WHERE is_returned_flag = FALSE
GROUP BY 1
ORDER BY total_profit DESC, region
LIMIT %d`, t, opts.TopRegions),
		},
		{
			Name:  StateProfitDiscount,
			Title: "Profit, discount and sales by state",
			Shape: domain.ShapeTable,
			SQL: fmt.Sprintf(`SELECT
    state,
    ROUND(SUM(profit), 2) AS total_profit,
    AVG(discount) AS average_discount,
    ROUND(SUM(sales), 2) AS total_sales
FROM %s
WHERE is_returned_flag = FALSE
GROUP BY 1`, t),
		},
		ranked(BestSeller, "Best seller", "COUNT(*)", "MaisVendido", t, false),
		ranked(MostProfitable, "Most profitable item", "ROUND(SUM(profit), 2)", "MaisLucrativo", t, false),
		ranked(MostExpensive, "Most expensive sale", "ROUND(MAX(sales), 2)", "PrecoCaro", t, false),
		ranked(MostReturned, "Most returned item", "COUNT(*)", "MaisDevolvido", t, true),
	}

	c := &Catalog{defs: defs, byName: make(map[string]int, len(defs))}
	for i, d := range defs {
		c.byName[d.Name] = i
	}
	return c, nil
}

func ranked(name, title, metric, alias, table string, returned bool) domain.QueryDefinition {
	flag := "FALSE"
	if returned {
		flag = "TRUE"
	}
	return domain.QueryDefinition{
		Name:  name,
		Title: title,
		Shape: domain.ShapeRow,
		SQL: fmt.Sprintf(`SELECT
    sub_category AS item_group,
    %s AS %s
FROM %s
WHERE is_returned_flag = %s
GROUP BY 1
ORDER BY 2 DESC, 1
LIMIT 1`, metric, alias, table, flag),
	}
}

// All returns the definitions in catalog order.
func (c *Catalog) All() []domain.QueryDefinition {
	out := make([]domain.QueryDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition with the given name.
func (c *Catalog) Lookup(name string) (domain.QueryDefinition, bool) {
	i, ok := c.byName[name]
	if !ok {
		return domain.QueryDefinition{}, false
	}
	return c.defs[i], true
}

// Names returns query names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.defs))
	for i, d := range c.defs {
		names[i] = d.Name
	}
	return names
}
