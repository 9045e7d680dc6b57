package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/tendwell/internal/keyring"
	"github.com/julianstephens/tendwell/internal/storage/postgres"
	"github.com/julianstephens/tendwell/internal/storage/sqlite"
)

var userHomeDir = os.UserHomeDir

// KeyringConfig selects the PostgreSQL connection string saved in the OS keyring.
const KeyringConfig = "keyring"

// Open picks a Provider for config without touching the backend. config is
// either a PostgreSQL URL or DSN, the word "keyring", a path ending in .json,
// or a SQLite database path.
func Open(config string) (Provider, error) {
	if config == KeyringConfig {
		connStr, err := keyring.ConnectionString()
		if err != nil {
			return nil, fmt.Errorf("reading connection string: %w", err)
		}
		return openPostgres(connStr, false)
	}

	if isPostgres(config) {
		return openPostgres(config, true)
	}

	path, err := expandHome(config)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

func openPostgres(connStr string, rejectPassword bool) (Provider, error) {
	if rejectPassword {
		if ok, err := postgres.ValidateConnString(connStr); !ok {
			return nil, fmt.Errorf("%w; save it with 'tendwell keyring set' or use .pgpass", err)
		}
	}
	return postgres.New(connStr), nil
}

func isPostgres(config string) bool {
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		return true
	}
	return strings.Contains(config, "host=") && strings.Contains(config, "dbname=")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
