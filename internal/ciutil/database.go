package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
)

// Credentials of the PostgreSQL service container used in CI.
const (
	StandardCIUser     = "postgres"
	StandardCIPassword = "postgres"
)

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests, or an
// empty string when none is configured. APIDIR_TEST_DB_URL is preferred over
// DATABASE_URL and APIDIR_DATABASE_URL. Under CI the credentials are replaced
// with the standard service container ones.
func GetTestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks([]string{EnvTestDBURL, EnvDatabaseURL, EnvAppDBURL}, "", logger)
	if dbURL == "" || !IsCI() {
		return dbURL
	}

	standardized, err := standardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Warn("Database URL left as configured",
				"error", err,
				"url", MaskSensitiveValue(dbURL))
		}
		return dbURL
	}
	return standardized
}

func standardizeDatabaseURL(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported database URL scheme %q", u.Scheme)
	}
	u.User = url.UserPassword(StandardCIUser, StandardCIPassword)
	return u.String(), nil
}
