package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DSN returns a PostgreSQL connection URL.
// If ConnectionString is set, it is used directly (with sslmode applied when
// absent). Otherwise, builds the URL from discrete fields.
func (d *DatabaseConfig) DSN() string {
	if d.ConnectionString != "" {
		dsn := d.ConnectionString
		if d.SSLMode != "" && !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=" + d.SSLMode
			} else {
				dsn += "?sslmode=" + d.SSLMode
			}
		}
		return dsn
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}

	params := url.Values{}
	if d.SSLMode != "" {
		params.Set("sslmode", d.SSLMode)
	}
	if d.ConnectTimeout > 0 {
		params.Set("connect_timeout", strconv.Itoa(int(d.ConnectTimeout.Seconds())))
	}
	u.RawQuery = params.Encode()

	return u.String()
}

// EffectiveDatabaseName returns the canonical database name used for schema
// introspection, resolving between the discrete field and the DSN.
func (d *DatabaseConfig) EffectiveDatabaseName() (string, error) {
	configDatabase := strings.TrimSpace(d.Database)
	dsnDatabase, err := parseDSNDatabaseName(strings.TrimSpace(d.ConnectionString))
	if err != nil {
		return "", err
	}

	if configDatabase != "" {
		if dsnDatabase != "" && configDatabase != dsnDatabase {
			return "", fmt.Errorf(
				"database mismatch: database.database=%q but database.dsn targets %q",
				configDatabase,
				dsnDatabase,
			)
		}
		return configDatabase, nil
	}
	if dsnDatabase != "" {
		return dsnDatabase, nil
	}
	return "", fmt.Errorf("database name is not configured: set database.database or include one in database.dsn")
}

func parseDSNDatabaseName(dsn string) (string, error) {
	if dsn == "" {
		return "", nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("database.dsn is not a valid connection URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("database.dsn must use the postgres:// scheme, got %q", u.Scheme)
	}
	return strings.TrimPrefix(u.Path, "/"), nil
}
