package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Open builds the snapshot store named by driver and runs migrations.
// Driver "none" (or empty) disables caching and returns nil.
func Open(ctx context.Context, driver, sqlitePath, databaseURL string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		s, err = NewSQLite(sqlitePath)
	case "postgres":
		s, err = NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
