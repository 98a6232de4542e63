// Package testutil builds throwaway order tables for tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/tursodatabase/go-libsql"
)

// OrdersTable is the fact table name the fixtures create.
const OrdersTable = "fct__orders"

const ordersSchema = `CREATE TABLE fct__orders (
    order_id TEXT NOT NULL,
    order_date TEXT NOT NULL,
    ship_date TEXT,
    region TEXT NOT NULL,
    state TEXT NOT NULL,
    sub_category TEXT NOT NULL,
    sales REAL NOT NULL,
    profit REAL NOT NULL,
    discount REAL NOT NULL DEFAULT 0,
    is_returned_flag BOOLEAN NOT NULL DEFAULT FALSE
)`

// Order is one row of the fixture table.
type Order struct {
	ID          string
	Date        string
	ShipDate    string
	Region      string
	State       string
	SubCategory string
	Sales       float64
	Profit      float64
	Discount    float64
	Returned    bool
}

// OrdersDB creates a libsql database file holding the given orders and returns
// its DSN along with an open handle. The handle is closed on test cleanup.
func OrdersDB(t testing.TB, orders []Order) (string, *sql.DB) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "orders.db")
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, ordersSchema); err != nil {
		t.Fatalf("Failed to create orders table: %v", err)
	}
	if err := Insert(ctx, db, orders...); err != nil {
		t.Fatalf("Failed to seed orders: %v", err)
	}
	return dsn, db
}

// Insert adds orders to the fixture table, filling blank fields with defaults.
func Insert(ctx context.Context, db *sql.DB, orders ...Order) error {
	for i, o := range orders {
		if o.ID == "" {
			o.ID = fmt.Sprintf("CA-%04d", i+1)
		}
		if o.Date == "" {
			o.Date = "2017-01-15"
		}
		if o.Region == "" {
			o.Region = "West"
		}
		if o.State == "" {
			o.State = "California"
		}
		if o.SubCategory == "" {
			o.SubCategory = "Binders"
		}
		var ship any
		if o.ShipDate != "" {
			ship = o.ShipDate
		}
		// SQLite stores booleans as integers.
		var returned int64
		if o.Returned {
			returned = 1
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO fct__orders
			(order_id, order_date, ship_date, region, state, sub_category, sales, profit, discount, is_returned_flag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Date, ship, o.Region, o.State, o.SubCategory, o.Sales, o.Profit, o.Discount, returned)
		if err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	return nil
}

// Superstore returns a small but varied set of orders spanning three months,
// four regions and five states, including returns.
func Superstore() []Order {
	return []Order{
		{Date: "2017-01-03", Region: "West", State: "California", SubCategory: "Phones", Sales: 907.15, Profit: 90.72, Discount: 0.2},
		{Date: "2017-01-10", Region: "East", State: "New York", SubCategory: "Binders", Sales: 18.50, Profit: 6.01},
		{Date: "2017-01-21", Region: "Central", State: "Texas", SubCategory: "Chairs", Sales: 731.94, Profit: -102.19, Discount: 0.3},
		{Date: "2017-02-02", Region: "South", State: "Florida", SubCategory: "Binders", Sales: 22.37, Profit: -15.66, Discount: 0.7},
		{Date: "2017-02-14", Region: "West", State: "Washington", SubCategory: "Phones", Sales: 371.17, Profit: 41.96},
		{Date: "2017-02-18", Region: "East", State: "New York", SubCategory: "Storage", Sales: 665.88, Profit: 13.32},
		{Date: "2017-03-07", Region: "Central", State: "Texas", SubCategory: "Binders", Sales: 3.54, Profit: -5.49, Discount: 0.8},
		{Date: "2017-03-19", Region: "West", State: "California", SubCategory: "Chairs", Sales: 1044.63, Profit: 85.31, Discount: 0.15},
		{Date: "2017-03-28", Region: "South", State: "Florida", SubCategory: "Phones", Sales: 213.48, Profit: 16.01, Discount: 0.2},
		{Date: "2017-03-29", Region: "West", State: "California", SubCategory: "Chairs", Sales: 532.40, Profit: 40.12, Returned: true},
		{Date: "2017-03-30", Region: "East", State: "New York", SubCategory: "Phones", Sales: 99.99, Profit: 9.99, Returned: true},
	}
}
