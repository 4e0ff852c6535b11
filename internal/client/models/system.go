package models

import "time"

// Backup is a server-side backup archive.
type Backup struct {
	ID          ID        `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BackupType  string    `json:"backup_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b Backup) RecordID() ID { return b.ID }

func (b Backup) WithID(id ID) Backup {
	b.ID = id
	return b
}

// Snapshot is a restorable point-in-time copy of the platform data.
type Snapshot struct {
	ID          ID        `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s Snapshot) RecordID() ID { return s.ID }

func (s Snapshot) WithID(id ID) Snapshot {
	s.ID = id
	return s
}
