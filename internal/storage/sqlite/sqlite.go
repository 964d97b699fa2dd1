package sqlite

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the SQLite database at dsn. The schema is owned by the repository.
func New(dsn string) (*gorm.DB, error) {
	const op = "storage.sqlite.New"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// one writer; sqlite serializes anyway and in-memory databases are per connection
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
