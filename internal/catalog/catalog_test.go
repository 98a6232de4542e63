package catalog_test

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/fetch"
	"github.com/emiliopalmerini/kpiboard/internal/testutil"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.Options{Table: testutil.OrdersTable, Dialect: catalog.LibSQL, TopRegions: 2})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

func run(t *testing.T, db *sql.DB, c *catalog.Catalog, name string) *domain.FetchResult {
	t.Helper()
	def, ok := c.Lookup(name)
	if !ok {
		t.Fatalf("query %q not in catalog", name)
	}
	f := fetch.NewFetcher(fetch.NewCache(time.Minute, nil), nil, nil)
	res, err := f.Fetch(context.Background(), db, def)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	return res
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    catalog.Options
		wantErr bool
	}{
		{"plain table", catalog.Options{Table: "fct__orders", Dialect: catalog.LibSQL}, false},
		{"schema qualified", catalog.Options{Table: "marts.fct__orders", Dialect: catalog.MySQL}, false},
		{"injection", catalog.Options{Table: "orders; DROP TABLE orders", Dialect: catalog.LibSQL}, true},
		{"empty", catalog.Options{Table: "", Dialect: catalog.LibSQL}, true},
		{"no dialect", catalog.Options{Table: "fct__orders"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_OrderAndLookup(t *testing.T) {
	c := newCatalog(t)

	want := []string{
		catalog.TotalSalesProfit,
		catalog.ReturnRate,
		catalog.MonthlySales,
		catalog.TopRegionsByProfit,
		catalog.StateProfitDiscount,
		catalog.BestSeller,
		catalog.MostProfitable,
		catalog.MostExpensive,
		catalog.MostReturned,
	}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d queries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, got[i], want[i])
		}
	}

	def, ok := c.Lookup(catalog.ReturnRate)
	if !ok || def.Shape != domain.ShapeScalar {
		t.Errorf("return_rate lookup = %+v, %v", def, ok)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Error("unknown query should not resolve")
	}

	all := c.All()
	all[0].SQL = "SELECT 1"
	if def, _ := c.Lookup(catalog.TotalSalesProfit); def.SQL == "SELECT 1" {
		t.Error("All must return a copy")
	}
}

func TestCatalog_TopRegionsLimit(t *testing.T) {
	c, err := catalog.New(catalog.Options{Table: "fct__orders", Dialect: catalog.LibSQL})
	if err != nil {
		t.Fatal(err)
	}
	def, _ := c.Lookup(catalog.TopRegionsByProfit)
	if !strings.HasSuffix(def.SQL, "LIMIT 5") {
		t.Errorf("expected default limit of 5, got:\n%s", def.SQL)
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{"libsql", "strftime('%Y-%m-01', order_date)", false},
		{"sqlite3", "strftime('%Y-%m-01', order_date)", false},
		{"mysql", "DATE_FORMAT(order_date, '%Y-%m-01')", false},
		{"postgres", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := catalog.DialectFor(tt.driver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := d.MonthBucket("order_date"); got != tt.want {
				t.Errorf("MonthBucket() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTotalSalesProfit_ThreeOrders(t *testing.T) {
	_, db := testutil.OrdersDB(t, []testutil.Order{
		{Sales: 100.00, Profit: 10.00},
		{Sales: 250.50, Profit: -5.50},
		{Sales: 75.25, Profit: 20.00},
	})

	res := run(t, db, newCatalog(t), catalog.TotalSalesProfit)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	sales, _ := res.Rows[0].Get("total_sales")
	profit, _ := res.Rows[0].Get("total_profit")
	if sales != 425.75 {
		t.Errorf("total_sales = %v, want 425.75", sales)
	}
	if profit != 24.5 {
		t.Errorf("total_profit = %v, want 24.50", profit)
	}
}

func TestTotalSalesProfit_ExcludesReturns(t *testing.T) {
	_, db := testutil.OrdersDB(t, []testutil.Order{
		{Sales: 100, Profit: 10},
		{Sales: 900, Profit: 90, Returned: true},
	})

	res := run(t, db, newCatalog(t), catalog.TotalSalesProfit)
	if v, _ := res.Rows[0].Get("total_sales"); v != 100.0 {
		t.Errorf("total_sales = %v, want 100", v)
	}
}

func TestMostReturned(t *testing.T) {
	_, db := testutil.OrdersDB(t, []testutil.Order{
		{SubCategory: "Chairs", Sales: 10, Returned: true},
		{SubCategory: "Chairs", Sales: 20, Returned: true},
		{SubCategory: "Chairs", Sales: 30, Returned: true},
		{SubCategory: "Phones", Sales: 40, Returned: true},
		{SubCategory: "Phones", Sales: 50},
		{SubCategory: "Phones", Sales: 60},
	})

	res := run(t, db, newCatalog(t), catalog.MostReturned)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if v, _ := res.Rows[0].Get("item_group"); v != "Chairs" {
		t.Errorf("item_group = %v, want Chairs", v)
	}
	if v, _ := res.Rows[0].Get("MaisDevolvido"); v != int64(3) {
		t.Errorf("count = %v (%T), want 3", v, v)
	}
}

func TestReturnRate_CountsEveryOrder(t *testing.T) {
	_, db := testutil.OrdersDB(t, []testutil.Order{
		{Sales: 1}, {Sales: 2}, {Sales: 3}, {Sales: 4, Returned: true},
	})

	res := run(t, db, newCatalog(t), catalog.ReturnRate)
	if v, _ := res.Rows[0].Get("pct_returned"); v != 0.25 {
		t.Errorf("pct_returned = %v, want 0.25", v)
	}
}

func TestSuperstoreQueries(t *testing.T) {
	_, db := testutil.OrdersDB(t, testutil.Superstore())
	c := newCatalog(t)

	t.Run("monthly sales ascending", func(t *testing.T) {
		res := run(t, db, c, catalog.MonthlySales)
		want := []struct {
			month string
			sales float64
		}{
			{"2017-01-01", 1657.59},
			{"2017-02-01", 1059.42},
			{"2017-03-01", 1261.65},
		}
		if len(res.Rows) != len(want) {
			t.Fatalf("expected %d months, got %d", len(want), len(res.Rows))
		}
		for i, w := range want {
			m, _ := res.Rows[i].Get("order_month")
			s, _ := res.Rows[i].Get("monthly_sales")
			if m != w.month {
				t.Errorf("row %d month = %v, want %s", i, m, w.month)
			}
			if f, ok := s.(float64); !ok || !approx(f, w.sales) {
				t.Errorf("row %d sales = %v, want %v", i, s, w.sales)
			}
		}
	})

	t.Run("top regions", func(t *testing.T) {
		res := run(t, db, c, catalog.TopRegionsByProfit)
		if len(res.Rows) != 2 {
			t.Fatalf("expected 2 regions, got %d", len(res.Rows))
		}
		for i, want := range []string{"West", "East"} {
			if v, _ := res.Rows[i].Get("region"); v != want {
				t.Errorf("region %d = %v, want %s", i, v, want)
			}
		}
	})

	t.Run("best seller tie broken by name", func(t *testing.T) {
		res := run(t, db, c, catalog.BestSeller)
		if v, _ := res.Rows[0].Get("item_group"); v != "Binders" {
			t.Errorf("item_group = %v, want Binders", v)
		}
		if v, _ := res.Rows[0].Get("maisvendido"); v != int64(3) {
			t.Errorf("count = %v, want 3", v)
		}
	})

	t.Run("most profitable", func(t *testing.T) {
		res := run(t, db, c, catalog.MostProfitable)
		if v, _ := res.Rows[0].Get("item_group"); v != "Phones" {
			t.Errorf("item_group = %v, want Phones", v)
		}
		if v, _ := res.Rows[0].Get("maislucrativo"); !approx(v.(float64), 148.69) {
			t.Errorf("profit = %v, want 148.69", v)
		}
	})

	t.Run("most expensive", func(t *testing.T) {
		res := run(t, db, c, catalog.MostExpensive)
		if v, _ := res.Rows[0].Get("item_group"); v != "Chairs" {
			t.Errorf("item_group = %v, want Chairs", v)
		}
		if v, _ := res.Rows[0].Get("precocaro"); v != 1044.63 {
			t.Errorf("price = %v, want 1044.63", v)
		}
	})

	t.Run("state table", func(t *testing.T) {
		res := run(t, db, c, catalog.StateProfitDiscount)
		if len(res.Rows) != 5 {
			t.Errorf("expected 5 states, got %d", len(res.Rows))
		}
		for _, col := range []string{"state", "total_profit", "average_discount", "total_sales"} {
			if !res.HasColumn(col) {
				t.Errorf("missing column %s", col)
			}
		}
	})
}
