// Package errors pkg/db/errors.go provides errors for the db package.

package db

import "errors"

var (
	// Core database errors.

	ErrInvalidTransaction = errors.New("invalid transaction type")
	ErrInvalidRows        = errors.New("invalid rows type")

	// Operation errors.

	ErrFailedToBeginTx = errors.New("failed to begin transaction")
	ErrFailedToScan    = errors.New("failed to scan")
	ErrFailedToQuery   = errors.New("failed to query")
	ErrFailedToInsert  = errors.New("failed to insert")
	ErrFailedToUpdate  = errors.New("failed to update")
	ErrFailedToDelete  = errors.New("failed to delete")
	ErrFailedToInit    = errors.New("failed to initialize schema")
	ErrFailedOpenDB    = errors.New("failed to open database")
)
