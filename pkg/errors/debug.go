package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the loggable view of a failure: the typed code, the full
// unwrap chain, and postgres diagnostics when a driver error is buried in it.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
}

// Dump flattens err for structured logging. Both postgres drivers in use
// (pgx for gorm, lib/pq for goose) are recognized.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	dump := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		dump.Code = typed.Code()
	}
	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		dump.Chain = append(dump.Chain, fmt.Sprintf("%T: %v", cause, cause))
	}
	dump.attachPG(err)
	return dump
}

func (d *ErrorDump) attachPG(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGMessage = pgxErr.Message
		d.PGDetail = pgxErr.Detail
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGConstraint = pgxErr.ConstraintName
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGMessage = pqErr.Message
		d.PGDetail = pqErr.Detail
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGConstraint = pqErr.Constraint
	}
}
