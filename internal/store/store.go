package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// execOne runs a statement that must touch exactly one row.
// No matching row is reported as sql.ErrNoRows, same as a failed Get.
func execOne(ctx context.Context, e sqlx.ExecerContext, query string, args ...any) error {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

func rowsOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// selectIn runs a query containing a single "IN (?)" over ids.
func selectIn[T any](ctx context.Context, q sqlx.QueryerContext, dest *[]T, query string, args ...any) error {
	expanded, params, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, q, dest, sqlx.Rebind(sqlx.QUESTION, expanded), params...)
}
