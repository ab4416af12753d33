package database

import (
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLite3Database opens a database with the cgo based mattn/go-sqlite3 driver.
func NewSQLite3Database(connectionString string) (DatabaseService, error) {
	db, err := openSQLDatabase("sqlite3", connectionString)
	if err != nil {
		return nil, err
	}
	return db, nil
}
