// Package archive builds the superuser "system report": the local mirror of
// every collection plus summary counters, serialised as JSON and written to
// a local directory or an S3-compatible bucket.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
)

// Collections are the mirrored collections included in a report.
var Collections = []string{
	query.KeyAdminUsers,
	query.KeyAdminLanguages,
	query.KeyRoles,
	query.KeyPermissions,
	query.KeyUsersWithRoles,
	query.KeyBackups,
	query.KeySnapshots,
	"role-assignments",
}

type SystemStatus struct {
	TotalUsers     int `json:"total_users"`
	ActiveUsers    int `json:"active_users"`
	AdminUsers     int `json:"admin_users"`
	PendingChanges int `json:"pending_changes"`
}

type Item struct {
	ID        string          `json:"id"`
	State     string          `json:"sync_state"`
	Op        string          `json:"pending_op,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// Report never carries session data.
type Report struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	SystemStatus SystemStatus      `json:"system_status"`
	Collections  map[string][]Item `json:"collections"`
}

// Build reads the mirror into a report.
func Build(ctx context.Context, repo mirror.Repository, now time.Time) (*Report, error) {
	r := &Report{
		GeneratedAt: now.UTC(),
		Collections: make(map[string][]Item, len(Collections)),
	}

	for _, name := range Collections {
		recs, err := repo.List(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if len(recs) == 0 {
			continue
		}
		items := make([]Item, 0, len(recs))
		for _, rec := range recs {
			if rec.Pending() {
				r.SystemStatus.PendingChanges++
			}
			data := json.RawMessage(rec.Payload)
			if !json.Valid(data) {
				data = json.RawMessage("null")
			}
			items = append(items, Item{
				ID:        rec.ID,
				State:     string(rec.State),
				Op:        string(rec.Op),
				UpdatedAt: rec.UpdatedAt.UTC(),
				Data:      data,
			})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		r.Collections[name] = items

		if name == query.KeyAdminUsers {
			r.SystemStatus.count(recs)
		}
	}
	return r, nil
}

func (s *SystemStatus) count(recs []mirror.Record) {
	for _, rec := range recs {
		if rec.Pending() && rec.Op == mirror.OpDelete {
			continue
		}
		var u models.UserRecord
		if err := json.Unmarshal(rec.Payload, &u); err != nil {
			continue
		}
		s.TotalUsers++
		if u.IsActive {
			s.ActiveUsers++
		}
		if u.Role == models.RoleAdmin || u.Role == models.RoleSuperuser {
			s.AdminUsers++
		}
	}
}

// FileName is the report name for the given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("system-report-%s.json", t.UTC().Format(time.DateOnly))
}
