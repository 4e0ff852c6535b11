package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX. Multi-statement
// operations run in their own transaction when db is a *sql.DB and join the
// caller's transaction when db is a *sql.Tx.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) atomically(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.InTx(ctx, r.db, fn)
}

func (r *SQLiteRepository) stamp(rec Record) int64 {
	if rec.UpdatedAt.IsZero() {
		return r.now().UnixNano()
	}
	return rec.UpdatedAt.UnixNano()
}

const selectColumns = `SELECT collection, id, payload, sync_state, pending_op, updated_at FROM mirror`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var ts int64
	if err := s.Scan(&rec.Collection, &rec.ID, &rec.Payload, &rec.State, &rec.Op, &ts); err != nil {
		return Record{}, err
	}
	rec.UpdatedAt = time.Unix(0, ts)
	return rec, nil
}

func getRecord(ctx context.Context, db dbx.DBTX, collection, id string) (*Record, error) {
	row := db.QueryRowContext(ctx, selectColumns+` WHERE collection = ? AND id = ?`, collection, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mirror[%s/%s]: %w", collection, id, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, collection, id string) (*Record, error) {
	return getRecord(ctx, r.db, collection, id)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select mirror records: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mirror row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mirror rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) List(ctx context.Context, collection string) ([]Record, error) {
	return r.query(ctx, selectColumns+` WHERE collection = ? ORDER BY updated_at, rowid`, collection)
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]Record, error) {
	return r.query(ctx, selectColumns+` WHERE sync_state = ? ORDER BY updated_at, rowid`, StatePending)
}

func upsert(ctx context.Context, db dbx.DBTX, rec Record, ts int64) error {
	if rec.Payload == nil {
		rec.Payload = []byte("{}")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO mirror (collection, id, payload, sync_state, pending_op, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			payload = excluded.payload,
			sync_state = excluded.sync_state,
			pending_op = excluded.pending_op,
			updated_at = excluded.updated_at
	`, rec.Collection, rec.ID, rec.Payload, rec.State, rec.Op, ts)
	if err != nil {
		return fmt.Errorf("failed to upsert mirror[%s/%s]: %w", rec.Collection, rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) PutSynced(ctx context.Context, rec Record) error {
	rec.State, rec.Op = StateSynced, OpNone
	return upsert(ctx, r.db, rec, r.stamp(rec))
}

func (r *SQLiteRepository) ReplaceSynced(ctx context.Context, collection string, recs []Record) error {
	ts := r.now().UnixNano()
	return r.atomically(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM mirror WHERE collection = ? AND sync_state = ?`, collection, StateSynced); err != nil {
			return fmt.Errorf("failed to drop synced mirror[%s]: %w", collection, err)
		}
		for i, rec := range recs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO mirror (collection, id, payload, sync_state, pending_op, updated_at)
				VALUES (?, ?, ?, ?, '', ?)
				ON CONFLICT(collection, id) DO NOTHING
			`, collection, rec.ID, rec.Payload, StateSynced, ts+int64(i))
			if err != nil {
				return fmt.Errorf("failed to insert mirror[%s/%s]: %w", collection, rec.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) MarkPending(ctx context.Context, rec Record, op Op) error {
	ts := r.stamp(rec)
	return r.atomically(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		prev, err := getRecord(ctx, tx, rec.Collection, rec.ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		if prev != nil && prev.Pending() && prev.Op == OpCreate {
			switch op {
			case OpDelete:
				return remove(ctx, tx, rec.Collection, rec.ID)
			case OpUpdate:
				// keep the create's place in the replay order
				op, ts = OpCreate, prev.UpdatedAt.UnixNano()
			}
		}
		if op == OpDelete && len(rec.Payload) == 0 && prev != nil {
			rec.Payload = prev.Payload
		}

		rec.State, rec.Op = StatePending, op
		return upsert(ctx, tx, rec, ts)
	})
}

func (r *SQLiteRepository) Confirm(ctx context.Context, oldID string, rec Record) error {
	return r.atomically(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := remove(ctx, tx, rec.Collection, oldID); err != nil {
			return err
		}
		rec.State, rec.Op = StateSynced, OpNone
		return upsert(ctx, tx, rec, r.stamp(rec))
	})
}

func remove(ctx context.Context, db dbx.DBTX, collection, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM mirror WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete mirror[%s/%s]: %w", collection, id, err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, collection, id string) error {
	return remove(ctx, r.db, collection, id)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM mirror`); err != nil {
		return fmt.Errorf("failed to clear mirror: %w", err)
	}
	return nil
}
