package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xfinds/xfinds-backend/pkg/config"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes an empty goose migration <dir>/<version>_<name>.sql.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe, err := migrationName(name)
	if err != nil {
		return "", err
	}
	return writeMigration(dir, newVersion(), safe, "")
}

// CreateMigrationPair writes the same version into the postgres and sqlite folders under
// root so both dialects stay in step. The paths are returned postgres first.
func CreateMigrationPair(root string, name string) ([]string, error) {
	if root == "" {
		root = DefaultDir
	}
	safe, err := migrationName(name)
	if err != nil {
		return nil, err
	}
	version := newVersion()
	paths := make([]string, 0, 2)
	for _, driver := range []string{config.DBDriverPostgres, config.DBDriverSQLite} {
		p, err := writeMigration(DirFor(root, driver), version, safe, Folder(driver))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func migrationName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return safe, nil
}

func newVersion() string {
	return time.Now().UTC().Format(versionLayout)
}

func writeMigration(dir, version, name, dialect string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, name))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	header := ""
	if dialect != "" {
		header = fmt.Sprintf("-- dialect: %s\n", dialect)
	}
	body := fmt.Sprintf(`%s-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, header, name, name)

	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}
