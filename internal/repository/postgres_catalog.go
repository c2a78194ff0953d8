package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"tower-takeoff/internal/domain"
)

// PostgresCatalogRepo reads the piece catalog table. Column values are returned verbatim;
// only the filter columns are addressed by name.
type PostgresCatalogRepo struct {
	db    *sql.DB
	table string
}

func NewPostgresCatalogRepo(db *sql.DB, table string) *PostgresCatalogRepo {
	if table == "" {
		table = "piezas"
	}
	return &PostgresCatalogRepo{db: db, table: table}
}

func (r *PostgresCatalogRepo) QueryPieces(ctx context.Context, filters domain.Filters) ([]domain.Piece, error) {
	return r.SearchPieces(ctx, filters, 0)
}

func (r *PostgresCatalogRepo) SearchPieces(ctx context.Context, filters domain.Filters, limit int) ([]domain.Piece, error) {
	where, args, err := buildWhere(filters, 1)
	if err != nil {
		return nil, err
	}

	query := `SELECT * FROM ` + pq.QuoteIdentifier(r.table)
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query pieces", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, storeErr("read columns", err)
	}

	out := []domain.Piece{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storeErr("scan piece", err)
		}
		for i, v := range values {
			// lib/pq hands numeric columns back as []byte
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, domain.NewPiece(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate pieces", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) DistinctValues(ctx context.Context, field string, others domain.Filters) ([]string, error) {
	if !domain.IsFilterColumn(field) {
		return nil, unknownColumn(field)
	}
	col := textExpr(field)

	where := []string{
		pq.QuoteIdentifier(field) + ` IS NOT NULL`,
		col + ` <> ''`,
	}
	extra, args, err := buildWhere(others.Without(field), 1)
	if err != nil {
		return nil, err
	}
	where = append(where, extra...)

	query := `SELECT DISTINCT ` + col + ` AS value FROM ` + pq.QuoteIdentifier(r.table) +
		` WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY value`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("distinct "+field, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, storeErr("scan "+field, err)
		}
		if v.Valid {
			out = append(out, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate "+field, err)
	}
	return out, nil
}

// buildWhere renders active filters as case-insensitive equality predicates with $n placeholders
// starting at argN. Only whitelisted columns are accepted.
func buildWhere(filters domain.Filters, argN int) ([]string, []any, error) {
	where := []string{}
	args := []any{}
	for _, f := range filters.Active() {
		if !domain.IsFilterColumn(f.Field) {
			return nil, nil, unknownColumn(f.Field)
		}
		where = append(where, fmt.Sprintf("UPPER(%s) = UPPER(TRIM($%d))", textExpr(f.Field), argN))
		args = append(args, *f.Value)
		argN++
	}
	return where, args, nil
}

func textExpr(field string) string {
	return "TRIM(CAST(" + pq.QuoteIdentifier(field) + " AS TEXT))"
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

func unknownColumn(field string) error {
	return fmt.Errorf("%w: unknown catalog column %q", domain.ErrInvalidInput, field)
}
