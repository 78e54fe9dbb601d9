package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// DB exposes the underlying handle for wiring that needs it (health checks, migrations).
func (d *Database) DB() *gorm.DB {
	return d.db
}

func (d *Database) WithContext(ctx context.Context) *Database {
	return &Database{db: d.db.WithContext(ctx)}
}

// Transaction runs fn against a Database bound to a single transaction. Every
// call made inside fn must go through tx.
func (d *Database) Transaction(ctx context.Context, fn func(tx *Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx})
	})
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) isPostgres() bool {
	return d.db.Dialector.Name() == "postgres"
}

// forUpdate adds a row lock on dialects that support one.
func (d *Database) forUpdate() *gorm.DB {
	if d.isPostgres() {
		return d.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
