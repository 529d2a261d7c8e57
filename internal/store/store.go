package store

import "database/sql"

// Store holds all sub-stores used by the application.
type Store struct {
	DB        *sql.DB
	Reference ReferenceStore
	Entities  EntityStore
	Facts     FactStore
	Metrics   MetricStore
	Runs      RunStore
}

// New creates a Store with all sub-stores initialized.
func New(db *sql.DB) *Store {
	return &Store{
		DB:        db,
		Reference: NewSQLiteReferenceStore(db),
		Entities:  NewSQLiteEntityStore(db),
		Facts:     NewSQLiteFactStore(db),
		Metrics:   NewSQLiteMetricStore(db),
		Runs:      NewSQLiteRunStore(db),
	}
}
