package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration applies all pending schema migrations from migratePath.
func Migration(dbDSN, migratePath string) error {
	if dbDSN == "" {
		return errors.New("empty database DSN")
	}
	if migratePath == "" {
		return errors.New("empty migrations path")
	}

	m, err := migrate.New("file://"+migratePath, dbDSN)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
