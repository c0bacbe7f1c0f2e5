package handler

import "errors"

// ErrDatabaseNotInitialized is returned when the database is not initialized
var ErrDatabaseNotInitialized = errors.New("database not initialized")
