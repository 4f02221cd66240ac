package storage

import (
	"context"
	"errors"
	"fmt"

	"bread-calculator/internal/apperr"

	"gorm.io/gorm"
)

// Store is the persistence gateway for users and calculations. It is safe
// for concurrent use; isolation comes from the database.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NewSQLite opens the sqlite database at path, applies migrations and
// returns a ready store.
func NewSQLite(path string) (*Store, error) {
	db, err := Open(Options{Driver: DriverSQLite, DSN: path})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, DriverSQLite); err != nil {
		Close(db)
		return nil, err
	}
	return New(db), nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	return Close(s.db)
}

// ownedBy restricts a query to rows owned by owner. A nil owner leaves the
// query unscoped.
func ownedBy(owner *int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner == nil {
			return db
		}
		return db.Where("user_id = ?", *owner)
	}
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Internal(fmt.Sprintf("query %s", what), err)
}
