package database

import "database/sql"

// Queryable covers the query surface shared by sqlx DB and Tx handles.
// Stores accept this type so that the caller remains in control of
// transaction boundaries (see WrapTx).
type Queryable interface {
	Exec(query string, args ...any) (sql.Result, error)
	Get(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
	NamedExec(query string, arg any) (sql.Result, error)
	Rebind(query string) string
}
