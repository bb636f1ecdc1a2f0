package db

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect identifies the SQL backend behind a connection.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

const defaultMySQLPort = "3306"

// Target is a resolved database location ready for sql.Open.
type Target struct {
	Dialect Dialect
	Driver  string
	DSN     string
}

// ParseURL resolves a database URL and credentials into a driver name and DSN.
//
// Accepted forms:
//
//	mysql://host[:port]/dbname[?params]
//	sqlite:<path>, sqlite://<path>, sqlite::memory:
func ParseURL(rawURL, username, password string) (Target, error) {
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case strings.HasPrefix(rawURL, "sqlite:"):
		path := strings.TrimPrefix(rawURL, "sqlite:")
		path = strings.TrimPrefix(path, "//")
		if path == "" {
			return Target{}, fmt.Errorf("sqlite url %q has no path", rawURL)
		}
		return Target{Dialect: DialectSQLite, Driver: "sqlite", DSN: path}, nil
	case strings.HasPrefix(rawURL, "mysql://"):
		dsn, err := mysqlDSN(rawURL, username, password)
		if err != nil {
			return Target{}, err
		}
		return Target{Dialect: DialectMySQL, Driver: "mysql", DSN: dsn}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database url %q", rawURL)
	}
}

func mysqlDSN(rawURL, username, password string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("mysql url %q has no host", rawURL)
	}
	dbName := strings.Trim(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url %q has no database name", rawURL)
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), defaultMySQLPort)
	}

	cfg := mysql.NewConfig()
	cfg.User = username
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = dbName

	dsn := cfg.FormatDSN()
	if u.RawQuery == "" {
		return dsn, nil
	}

	// Route query parameters through the driver parser so malformed values are rejected.
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	parsed, err := mysql.ParseDSN(dsn + sep + u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("mysql url parameters: %w", err)
	}
	return parsed.FormatDSN(), nil
}
