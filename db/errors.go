package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Constraint violations reported by the storage engine. Model operations return them
// wrapped in a *ConstraintError, so both errors.Is(err, ErrUniqueViolation) and
// errors.As(err, &driverErr) work on the result.
var (
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrCheckViolation      = errors.New("check constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrNotNullViolation    = errors.New("not null violation")
)

type ConstraintError struct {
	Kind       error
	Constraint string // constraint, index or column name, when the driver reports one
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error() + " (" + e.Constraint + "): " + e.Err.Error()
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify wraps driver level constraint errors from SQLite, MySQL and PostgreSQL.
// Other errors (including gorm.ErrRecordNotFound) are returned as they are.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}
	kind, constraint := classify(err)
	if kind == nil {
		return err
	}
	return &ConstraintError{Kind: kind, Constraint: constraint, Err: err}
}

func classify(err error) (error, string) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code != sqlite3.ErrConstraint {
			return nil, ""
		}
		msg := sqliteErr.Error()
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrUniqueViolation, after(msg, "constraint failed: ")
		case sqlite3.ErrConstraintCheck:
			return ErrCheckViolation, after(msg, "constraint failed: ")
		case sqlite3.ErrConstraintForeignKey:
			return ErrForeignKeyViolation, ""
		case sqlite3.ErrConstraintNotNull:
			return ErrNotNullViolation, after(msg, "constraint failed: ")
		}
		return nil, ""
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			// Duplicate entry '1-2' for key 'follows.unique_follow'
			key := between(mysqlErr.Message, "for key '", "'")
			if i := strings.LastIndex(key, "."); i >= 0 {
				key = key[i+1:]
			}
			return ErrUniqueViolation, key
		case 3819:
			// Check constraint 'user_not_equal_following' is violated.
			return ErrCheckViolation, between(mysqlErr.Message, "constraint '", "'")
		case 1644:
			// SIGNAL SQLSTATE '45000' from a trigger standing in for a CHECK, the message is the rule name
			if string(mysqlErr.SQLState[:]) == "45000" {
				return ErrCheckViolation, mysqlErr.Message
			}
		case 1451, 1452:
			return ErrForeignKeyViolation, between(mysqlErr.Message, "CONSTRAINT `", "`")
		case 1048, 1364:
			return ErrNotNullViolation, between(mysqlErr.Message, "'", "'")
		}
		return nil, ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrUniqueViolation, pgErr.ConstraintName
		case "23514":
			return ErrCheckViolation, pgErr.ConstraintName
		case "23503":
			return ErrForeignKeyViolation, pgErr.ConstraintName
		case "23502":
			return ErrNotNullViolation, pgErr.ColumnName
		}
	}
	return nil, ""
}

func after(s, prefix string) string {
	if i := strings.Index(s, prefix); i >= 0 {
		return s[i+len(prefix):]
	}
	return ""
}

func between(s, start, end string) string {
	rest := after(s, start)
	if i := strings.Index(rest, end); i >= 0 {
		return rest[:i]
	}
	return rest
}
