// Package sqlres holds the SQL statements of the contact store as embedded files.
package sqlres

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var files embed.FS

const (
	GetContact          = "GetContact.sql"
	GetContacts         = "GetContacts.sql"
	GetContactAddresses = "GetContactAddresses.sql"
	UpsertContact       = "UpsertContact.sql"
	UpsertAddress       = "UpsertAddress.sql"
	DeleteAddress       = "DeleteAddress.sql"
	DeleteAddresses     = "DeleteAddresses.sql"
	DeleteContact       = "DeleteContact.sql"
)

// Get returns the statement stored under name, trimmed.
func Get(name string) (string, error) {
	b, err := files.ReadFile("sql/" + name)
	if err != nil {
		return "", fmt.Errorf("sqlres: %s: %w", name, err)
	}
	sql := strings.TrimSpace(string(b))
	if sql == "" {
		return "", fmt.Errorf("sqlres: %s is empty", name)
	}
	return sql, nil
}

// MustGet is Get for package-level statement variables; a missing file is a build defect.
func MustGet(name string) string {
	sql, err := Get(name)
	if err != nil {
		panic(err)
	}
	return sql
}

// Names lists the embedded statement files.
func Names() []string {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}
