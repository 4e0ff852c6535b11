package mirror

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("mirror record not found")

// SyncState tells whether a record matches the server.
type SyncState string

const (
	StateSynced  SyncState = "synced"
	StatePending SyncState = "pending"
)

// Op is the operation a pending record still has to replay.
type Op string

const (
	OpNone   Op = ""
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Record is one mirrored item.
type Record struct {
	Collection string
	ID         string
	Payload    []byte
	State      SyncState
	Op         Op
	UpdatedAt  time.Time
}

func (r Record) Pending() bool { return r.State == StatePending }

type Repository interface {
	// Get returns ErrNotFound when the record is not mirrored.
	Get(ctx context.Context, collection, id string) (*Record, error)

	// List returns every record of the collection, pending deletes included,
	// oldest change first.
	List(ctx context.Context, collection string) ([]Record, error)

	// ReplaceSynced swaps the synced part of a collection for recs. Pending
	// records are kept and win over a server copy with the same id.
	ReplaceSynced(ctx context.Context, collection string, recs []Record) error

	// PutSynced stores a server-confirmed record.
	PutSynced(ctx context.Context, rec Record) error

	// MarkPending records a local change, coalescing with an earlier pending
	// change of the same record.
	MarkPending(ctx context.Context, rec Record, op Op) error

	// ListPending returns pending records of all collections in the order the
	// changes were made.
	ListPending(ctx context.Context) ([]Record, error)

	// Confirm replaces the pending record (collection, oldID) with the synced
	// server copy rec. rec.ID may differ from oldID for offline creates.
	Confirm(ctx context.Context, oldID string, rec Record) error

	Remove(ctx context.Context, collection, id string) error
	Clear(ctx context.Context) error
}
