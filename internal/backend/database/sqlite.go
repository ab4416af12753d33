package database

import (
	_ "modernc.org/sqlite"
)

// NewSQLiteDatabase opens a database with the pure Go modernc.org/sqlite driver.
func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := openSQLDatabase("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	return db, nil
}
