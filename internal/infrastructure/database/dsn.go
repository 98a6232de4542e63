package database

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/config"
	"github.com/emiliopalmerini/kpiboard/internal/util"
)

// DSN builds the driver-specific data source name from credentials.
func DSN(cfg config.Database) (string, error) {
	switch cfg.Driver {
	case "libsql":
		return libsqlDSN(cfg)
	case "mysql":
		return mysqlDSN(cfg)
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func libsqlDSN(cfg config.Database) (string, error) {
	base := cfg.URL
	if base == "" && cfg.Host != "" {
		base = "libsql://" + cfg.Host
	}
	if base == "" {
		path, err := util.DataPath("kpiboard.db")
		if err != nil {
			return "", err
		}
		return "file:" + path, nil
	}
	if cfg.Password == "" || strings.HasPrefix(base, "file:") {
		return base, nil
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "authToken=" + url.QueryEscape(cfg.Password), nil
}

func mysqlDSN(cfg config.Database) (string, error) {
	if cfg.URL != "" {
		return cfg.URL, nil
	}
	if cfg.Host == "" {
		return "", fmt.Errorf("mysql requires KPIBOARD_DB_HOST or KPIBOARD_DB_URL")
	}

	addr := cfg.Host
	if !strings.Contains(addr, ":") {
		addr += ":3306"
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = cfg.Name
	mc.ParseTime = true
	return mc.FormatDSN(), nil
}
