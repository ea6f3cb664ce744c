// Package db pkg/db/sql_wrappers.go wraps the database/sql types so the
// concrete driver satisfies the interfaces in pkg/db/interfaces.go. Keeping
// the domain components on the interfaces decouples them from the sql
// package and lets tests swap the whole engine.
package db

import (
	"database/sql"
	"log"
)

// SQLRow wraps sql.Row to implement the Row interface.
type SQLRow struct {
	*sql.Row
}

// SQLRows wraps sql.Rows to implement the Rows interface.
type SQLRows struct {
	*sql.Rows
}

// SQLResult wraps sql.Result to implement the Result interface.
type SQLResult struct {
	sql.Result
}

// SQLTx wraps sql.Tx to implement the Transaction interface.
type SQLTx struct {
	*sql.Tx
}

func (tx *SQLTx) Exec(query string, args ...interface{}) (Result, error) {
	result, err := tx.Tx.Exec(query, args...)
	if err != nil {
		return nil, err
	}

	return &SQLResult{result}, nil
}

func (tx *SQLTx) Query(query string, args ...interface{}) (Rows, error) {
	rows, err := tx.Tx.Query(query, args...)
	if err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &SQLRows{rows}, nil
}

func (tx *SQLTx) QueryRow(query string, args ...interface{}) Row {
	return &SQLRow{tx.Tx.QueryRow(query, args...)}
}

// CloseRows safely closes a Rows type and logs any error.
func CloseRows(rows Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}

// RollbackOnError rolls a transaction back when err is non-nil, logging any
// rollback failure. Commit paths call it via defer with a named error.
func RollbackOnError(tx Transaction, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("failed to rollback transaction: %v", rbErr)
		}
	}
}
