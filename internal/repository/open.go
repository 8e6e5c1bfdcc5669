package repository

import (
	"fmt"

	"go.uber.org/zap"

	"jjplan/internal/repository/badger"
	"jjplan/internal/repository/sqlite"
)

// Drivers lists the accepted store.driver values
var Drivers = []string{"sqlite", "badger", "memory"}

// Open creates the store for a driver name. For sqlite an empty path means
// an in-memory database; for badger it means an in-memory instance.
func Open(driver, path string, logger *zap.Logger) (Store, error) {
	switch driver {
	case "sqlite":
		if path == "" {
			path = ":memory:"
		}
		return sqlite.New(path)
	case "badger":
		return badger.Open(path, logger)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want one of %v)", driver, Drivers)
	}
}
