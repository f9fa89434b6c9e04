package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store persists rows of type T. T's `db` tags must name id, owner_id,
// created_at and every schema field.
type Store[T any] struct {
	db     DB
	schema Schema
}

func NewStore[T any](db DB, schema Schema) *Store[T] {
	return &Store[T]{db: db, schema: schema}
}

func (s *Store[T]) Schema() Schema { return s.schema }

func (s *Store[T]) List(ctx context.Context, ownerID string) ([]T, error) {
	rows, err := s.db.Query(ctx, s.schema.listSQL(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.schema.Table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.schema.Table, err)
	}
	return out, nil
}

func (s *Store[T]) Create(ctx context.Context, ownerID string, v Values) (T, error) {
	query, args := s.schema.insertSQL(uuid.NewString(), ownerID, v)
	return s.one(ctx, "create", query, args)
}

func (s *Store[T]) Update(ctx context.Context, ownerID, id string, v Values) (T, error) {
	query, args := s.schema.updateSQL(ownerID, id, v)
	rec, err := s.one(ctx, "update", query, args)
	if !errors.Is(err, ErrNotFound) || !s.schema.touchesRange(v) {
		return rec, err
	}
	// the range guard also yields no row; tell it apart from a missing id
	tag, err := s.db.Exec(ctx, s.schema.existsSQL(), ownerID, id)
	if err != nil {
		return rec, fmt.Errorf("update %s: %w", s.schema.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return rec, ErrNotFound
	}
	return rec, fmt.Errorf("%w: %s", ErrInvalidInput, s.schema.rangeMessage())
}

func (s *Store[T]) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := s.db.Exec(ctx, s.schema.deleteSQL(), ownerID, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.schema.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store[T]) one(ctx context.Context, op, query string, args []any) (T, error) {
	var zero T
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", op, s.schema.Table, err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, fmt.Errorf("%s %s: %w", op, s.schema.Table, err)
	}
	return rec, nil
}

// selectList renders dates as YYYY-MM-DD and nulls as empty strings so rows
// scan straight into string fields.
func (s Schema) selectList() string {
	cols := []string{"id::text AS id", "owner_id"}
	for _, f := range s.Fields {
		switch f.Kind {
		case Date:
			cols = append(cols, fmt.Sprintf("coalesce(to_char(%[1]s, 'YYYY-MM-DD'), '') AS %[1]s", f.Name))
		default:
			cols = append(cols, fmt.Sprintf("coalesce(%[1]s, '') AS %[1]s", f.Name))
		}
	}
	cols = append(cols, "created_at")
	return strings.Join(cols, ", ")
}

func (s Schema) listSQL() string {
	order := s.OrderBy
	if order == "" {
		order = "created_at DESC"
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE owner_id = $1 ORDER BY %s", s.selectList(), s.Table, order)
}

func (s Schema) insertSQL(id, ownerID string, v Values) (string, []any) {
	cols := []string{"id", "owner_id"}
	marks := []string{"$1", "$2"}
	args := []any{id, ownerID}
	for _, f := range s.Fields {
		val, ok := v[f.Name]
		if !ok {
			continue
		}
		args = append(args, val)
		cols = append(cols, f.Name)
		marks = append(marks, fmt.Sprintf("$%d", len(args)))
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.Table, strings.Join(cols, ", "), strings.Join(marks, ", "), s.selectList())
	return q, args
}

func (s Schema) updateSQL(ownerID, id string, v Values) (string, []any) {
	args := []any{ownerID, id}
	var sets []string
	marks := map[string]string{}
	for _, f := range s.Fields {
		val, ok := v[f.Name]
		if !ok {
			continue
		}
		args = append(args, val)
		marks[f.Name] = fmt.Sprintf("$%d", len(args))
		sets = append(sets, fmt.Sprintf("%s = %s", f.Name, marks[f.Name]))
	}
	where := "owner_id = $1 AND id::text = $2"
	if s.touchesRange(v) {
		where += " AND " + s.rangeGuard(marks)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
		s.Table, strings.Join(sets, ", "), where, s.selectList())
	return q, args
}

func (s Schema) touchesRange(v Values) bool {
	if s.Range[0] == "" {
		return false
	}
	_, start := v[s.Range[0]]
	_, end := v[s.Range[1]]
	return start || end
}

// rangeGuard matches only rows whose start/end pair stays ordered once the
// update is applied. A side the update leaves alone is read from the row.
func (s Schema) rangeGuard(marks map[string]string) string {
	side := func(name string) string {
		if m, ok := marks[name]; ok {
			return m + "::date"
		}
		return name
	}
	start, end := side(s.Range[0]), side(s.Range[1])
	return fmt.Sprintf("(%[1]s IS NULL OR %[2]s IS NULL OR %[2]s >= %[1]s)", start, end)
}

func (s Schema) rangeMessage() string {
	return fmt.Sprintf("%s must not be before %s", s.Range[1], s.Range[0])
}

func (s Schema) existsSQL() string {
	return fmt.Sprintf("SELECT 1 FROM %s WHERE owner_id = $1 AND id::text = $2", s.Table)
}

func (s Schema) deleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE owner_id = $1 AND id::text = $2", s.Table)
}
