package config

import (
	"fmt"
	"os"
	"strings"
)

// GetDatabaseURL returns the database URL for the identifier given as the
// first command line argument, defaulting to "DEFAULT".
// DATABASE_URL_<ID> wins over a plain DATABASE_URL. An empty result means
// job history is disabled.
func GetDatabaseURL() string {
	dbID := "DEFAULT"
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		dbID = os.Args[1]
	}
	return databaseURLFor(dbID)
}

func databaseURLFor(dbID string) string {
	dbURLKey := fmt.Sprintf("DATABASE_URL_%s", strings.ToUpper(dbID))
	if dbURL := os.Getenv(dbURLKey); dbURL != "" {
		return dbURL
	}
	return os.Getenv("DATABASE_URL")
}

// MaskDatabaseURL masks credentials in a database URL for logging.
func MaskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}
	parts := strings.Split(dbURL, "@")
	if len(parts) > 1 {
		scheme := "postgres"
		if i := strings.Index(dbURL, "://"); i > 0 {
			scheme = dbURL[:i]
		}
		return scheme + "://[masked]@" + parts[len(parts)-1]
	}
	return dbURL
}
