// Package pg implements party.Store on PostgreSQL. Queries are assembled
// from the entity descriptors so every registry entity shares one storage
// path.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"partydesk.org/internal/party"
)

type Store struct {
	db  *sql.DB
	reg *party.Registry
}

var _ party.Store = (*Store)(nil)

func Open(dsn string, reg *party.Registry) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db, reg: reg}, nil
}

// New wraps an existing handle; used by tests running against sqlmock.
func New(db *sql.DB, reg *party.Registry) *Store {
	return &Store{db: db, reg: reg}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) List(ctx context.Context, d *party.Descriptor) ([]party.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY id`, selectColumns(d), d.Table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []party.Record
	for rows.Next() {
		rec, err := scanRecord(d, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, d *party.Descriptor, id int64) (party.Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1`, selectColumns(d), d.Table), id)
	rec, err := scanRecord(d, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, party.ErrNotFound
	}
	return rec, err
}

func (s *Store) Create(ctx context.Context, d *party.Descriptor, rec party.Record) (party.Record, error) {
	if err := s.checkDuplicate(ctx, d, rec, 0); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	cols := d.Columns()
	args := make([]any, 0, len(cols)+1)
	var id int64
	if d.Party {
		// Subtypes share the party id space: allocate the supertype row
		// first and insert the leaf under the same id.
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO party DEFAULT VALUES RETURNING id`).Scan(&id); err != nil {
			return nil, err
		}
		names := append([]string{"id"}, cols...)
		args = append(args, id)
		for _, c := range cols {
			args = append(args, rec[c])
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s) VALUES (%s)`,
			d.Table, strings.Join(names, ", "), placeholders(len(names), 1)), args...); err != nil {
			return nil, err
		}
	} else {
		for _, c := range cols {
			args = append(args, rec[c])
		}
		if err := tx.QueryRowContext(ctx, fmt.Sprintf(
			`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
			d.Table, strings.Join(cols, ", "), placeholders(len(cols), 1)), args...).Scan(&id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := rec.Clone()
	created["id"] = id
	return created, nil
}

func (s *Store) Update(ctx context.Context, d *party.Descriptor, id int64, update party.Record) (party.Record, error) {
	current, err := s.Get(ctx, d, id)
	if err != nil {
		return nil, err
	}
	merged := d.Merge(current, update)
	if err := s.checkDuplicate(ctx, d, merged, id); err != nil {
		return nil, err
	}

	cols := d.Columns()
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
		args = append(args, merged[c])
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $%d`,
		d.Table, strings.Join(sets, ", "), len(cols)+1), args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, party.ErrNotFound
	}
	return merged, nil
}

func (s *Store) Delete(ctx context.Context, d *party.Descriptor, id int64) error {
	for _, dep := range d.Dependents {
		ref, ok := s.reg.Lookup(dep.Entity)
		if !ok {
			return fmt.Errorf("unknown dependent entity %q", dep.Entity)
		}
		var exists bool
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
			ref.Table, dep.Column), id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return party.ErrReferenced
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE id = $1`, d.Table), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return party.ErrNotFound
	}
	if d.Party {
		if _, err := tx.ExecContext(ctx, `DELETE FROM party WHERE id = $1`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// checkDuplicate enforces the descriptor's UniqueBy column sets against
// existing rows. excludeID skips the row being updated. IS NOT DISTINCT
// FROM makes jointly-NULL optional columns (an open-ended thrudate, say)
// count as equal, matching the in-memory store's MatchesUnique.
func (s *Store) checkDuplicate(ctx context.Context, d *party.Descriptor, rec party.Record, excludeID int64) error {
	for _, set := range d.UniqueBy {
		conds := make([]string, 0, len(set)+1)
		args := make([]any, 0, len(set)+1)
		for i, c := range set {
			conds = append(conds, fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", c, i+1))
			args = append(args, rec[c])
		}
		if excludeID != 0 {
			conds = append(conds, fmt.Sprintf("id <> $%d", len(set)+1))
			args = append(args, excludeID)
		}
		var exists bool
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT EXISTS (SELECT 1 FROM %s WHERE %s)`,
			d.Table, strings.Join(conds, " AND ")), args...).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return party.ErrDuplicate
		}
	}
	return nil
}

// selectColumns casts date columns to text so scanning stays uniform with
// the record representation.
func selectColumns(d *party.Descriptor) string {
	cols := make([]string, 0, len(d.Fields)+1)
	cols = append(cols, "id")
	for _, f := range d.Fields {
		if f.Kind == party.KindDate {
			cols = append(cols, f.Name+"::text")
		} else {
			cols = append(cols, f.Name)
		}
	}
	return strings.Join(cols, ", ")
}

func placeholders(n, start int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(out, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(d *party.Descriptor, row rowScanner) (party.Record, error) {
	var id int64
	dests := make([]any, 0, len(d.Fields)+1)
	dests = append(dests, &id)

	strs := make([]sql.NullString, 0, len(d.Fields))
	ints := make([]sql.NullInt64, 0, len(d.Fields))
	// Pre-size so appends never reallocate out from under the dest pointers.
	for _, f := range d.Fields {
		switch f.Kind {
		case party.KindInt, party.KindRef:
			ints = append(ints, sql.NullInt64{})
		default:
			strs = append(strs, sql.NullString{})
		}
	}
	si, ii := 0, 0
	for _, f := range d.Fields {
		switch f.Kind {
		case party.KindInt, party.KindRef:
			dests = append(dests, &ints[ii])
			ii++
		default:
			dests = append(dests, &strs[si])
			si++
		}
	}
	if err := row.Scan(dests...); err != nil {
		return nil, err
	}

	rec := party.Record{"id": id}
	si, ii = 0, 0
	for _, f := range d.Fields {
		switch f.Kind {
		case party.KindInt, party.KindRef:
			if ints[ii].Valid {
				rec[f.Name] = ints[ii].Int64
			}
			ii++
		default:
			if strs[si].Valid {
				rec[f.Name] = strs[si].String
			}
			si++
		}
	}
	return rec, nil
}
