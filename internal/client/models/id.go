package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identifies a server or locally created record. The backend sends
// integer primary keys for some resources and UUID strings for others, so
// both JSON forms are accepted.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// LocalPrefix marks IDs assigned by the client while offline.
const LocalPrefix = "local-"

// IsLocal reports whether the record was created offline and has not been
// confirmed by the server yet.
func (id ID) IsLocal() bool {
	return strings.HasPrefix(string(id), LocalPrefix)
}
