package models

// UserRecord is a user account as seen from the admin panel.
type UserRecord struct {
	ID         ID       `json:"id,omitempty"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Role       RoleName `json:"role"`
	IsActive   bool     `json:"is_active"`
	DateJoined string   `json:"date_joined"`
	Password   string   `json:"password,omitempty"`
}

func (u UserRecord) RecordID() ID { return u.ID }

// Redacted drops the write-only password before the record is mirrored.
func (u UserRecord) Redacted() UserRecord {
	u.Password = ""
	return u
}

func (u UserRecord) WithID(id ID) UserRecord {
	u.ID = id
	return u
}
