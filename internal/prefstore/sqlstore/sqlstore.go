// Package sqlstore implements prefstore.Backend on a SQL table through gorm.
package sqlstore

import (
	"errors"
	"fmt"
	"time"

	"alertprefs/internal/prefstore"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Preference is one persisted key.
type Preference struct {
	Key       string `gorm:"column:pref_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name regardless of naming strategy.
func (Preference) TableName() string {
	return "preferences"
}

// Store implements prefstore.Backend with one row per key.
type Store struct {
	db *gorm.DB
}

// New wraps db and migrates the preferences table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("migrating preferences table: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenSQLite opens (or creates) a SQLite database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the value for key and whether it was found.
func (s *Store) Get(key string) (string, bool, error) {
	var p Preference
	err := s.db.Where("pref_key = ?", key).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Value, true, nil
}

// Set upserts value under key.
func (s *Store) Set(key, value string) error {
	p := Preference{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&p).Error
}

// All returns every stored key-value pair.
func (s *Store) All() (map[string]string, error) {
	var rows []Preference
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

var _ prefstore.Backend = (*Store)(nil)
