// Package storage is the relational ledger behind the bot: weekly schedules,
// guild settings, the daily-post and reminder dedup ledgers, RSVP responses
// and admin-notification caps. Unique indexes are the real concurrency safety
// net; callers treat duplicate-key inserts as "already done".
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

type Storage struct {
	db *gorm.DB
}

// Open connects to the database behind dsn and migrates the schema. A
// postgres:// or postgresql:// DSN selects Postgres; anything else is treated
// as a SQLite file path.
func Open(dsn string) (*Storage, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(
		&ScheduleEntry{},
		&GuildSettings{},
		&DailyPost{},
		&RsvpResponse{},
		&ReminderSend{},
		&AdminNotification{},
		&SetupState{},
		&CommandHash{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping performs a database round trip so health checks can tell a wedged
// connection from a healthy one.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsDuplicate reports whether err is a unique-constraint violation. Per the
// dedup-ledger contract this is a success signal, not an error.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// notFound maps gorm's record-not-found onto the package sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
