package catalog

import "fmt"

// Dialect carries the few SQL fragments that differ between engines.
type Dialect struct {
	Name string
	// MonthBucket truncates a date column to the first day of its month.
	MonthBucket func(column string) string
}

var (
	// LibSQL is the SQLite dialect spoken by libsql and Turso.
	LibSQL = Dialect{
		Name: "libsql",
		MonthBucket: func(column string) string {
			return fmt.Sprintf("strftime('%%Y-%%m-01', %s)", column)
		},
	}

	// MySQL is the MySQL/MariaDB dialect.
	MySQL = Dialect{
		Name: "mysql",
		MonthBucket: func(column string) string {
			return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-01')", column)
		},
	}
)

// DialectFor returns the dialect matching a database driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "libsql", "sqlite", "sqlite3":
		return LibSQL, nil
	case "mysql":
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
}
