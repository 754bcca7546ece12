package database

import (
	"fmt"
	"strings"
)

// Supported dialects
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// sqliteBusyTimeoutMs lets concurrent writers wait for the file lock instead of
// failing with SQLITE_BUSY
const sqliteBusyTimeoutMs = 5000

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver is postgres, postgresql or sqlite. Empty means sqlite.
	Driver string

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// Path of the SQLite file
	Path string
}

// Dialect normalizes Driver. It returns an empty string for unsupported drivers.
func (c *DatabaseConfig) Dialect() string {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql":
		return DialectPostgres
	case "sqlite", "sqlite3", "":
		return DialectSQLite
	default:
		return ""
	}
}

// String returns a string representation with sensitive data masked
func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Driver, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// DSN builds the connection string for the dialect. Timestamps are stored in UTC.
func (c *DatabaseConfig) DSN() string {
	switch c.Dialect() {
	case DialectPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case DialectSQLite:
		separator := "?"
		if strings.Contains(c.Path, "?") {
			separator = "&"
		}
		return fmt.Sprintf("%s%s_busy_timeout=%d", c.Path, separator, sqliteBusyTimeoutMs)
	default:
		return ""
	}
}
