package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL combines a base URL with a database name.
// The name replaces any path on the base URL, existing query parameters are
// kept, and sslmode=disable is added when no sslmode is present.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	query := ""
	if i := strings.Index(baseURL, "?"); i >= 0 {
		baseURL, query = baseURL[:i], baseURL[i+1:]
	}
	baseURL = strings.TrimRight(baseURL, "/")

	// Drop an existing database path so the configured name wins
	if scheme := strings.Index(baseURL, "://"); scheme >= 0 {
		if slash := strings.Index(baseURL[scheme+3:], "/"); slash >= 0 {
			baseURL = baseURL[:scheme+3+slash]
		}
	}

	databaseURL := fmt.Sprintf("%s/%s", baseURL, databaseName)
	if query != "" {
		databaseURL = fmt.Sprintf("%s?%s", databaseURL, query)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}

	return databaseURL
}
