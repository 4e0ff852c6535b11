package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/access"
	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

// SystemAPI is the backend surface used by SystemService.
type SystemAPI interface {
	ListBackups(ctx context.Context) ([]models.Backup, error)
	CreateBackup(ctx context.Context, b models.Backup) (*models.Backup, error)
	DeleteBackup(ctx context.Context, id models.ID) error
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
	CreateSnapshot(ctx context.Context, s models.Snapshot) (*models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id models.ID) error
	RestoreSnapshot(ctx context.Context, id models.ID) error
}

// Exporter writes a system report somewhere and returns where.
type Exporter interface {
	Export(ctx context.Context) (string, error)
}

// Default account seeded by FactoryReset.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@example.com"
)

type SystemService interface {
	Backups(ctx context.Context) ([]models.Listed[models.Backup], error)
	CreateBackup(ctx context.Context, b models.Backup) models.MutationResult[models.Backup]
	DeleteBackup(ctx context.Context, id models.ID) models.MutationResult[models.Backup]

	Snapshots(ctx context.Context) ([]models.Listed[models.Snapshot], error)
	CreateSnapshot(ctx context.Context, s models.Snapshot) models.MutationResult[models.Snapshot]
	DeleteSnapshot(ctx context.Context, id models.ID) models.MutationResult[models.Snapshot]
	// RestoreSnapshot needs the server; it is never applied locally.
	RestoreSnapshot(ctx context.Context, id models.ID) models.MutationResult[models.Snapshot]

	// LockAll deactivates every account except the acting one.
	LockAll(ctx context.Context) models.MutationResult[[]models.UserRecord]
	UnlockAll(ctx context.Context) models.MutationResult[[]models.UserRecord]

	// FactoryReset wipes all local state, leaves a single default
	// superuser in the local user list and ends the session.
	FactoryReset(ctx context.Context) models.MutationResult[models.UserRecord]
	// ClearCache drops cached reads without touching the local mirror.
	ClearCache(ctx context.Context) error
	Export(ctx context.Context) (string, error)
}

type systemService struct {
	api       SystemAPI
	users     UserService
	deps      Deps
	logger    logging.Logger
	exporter  Exporter
	now       func() time.Time
	backups   *collection[models.Backup]
	snapshots *collection[models.Snapshot]
}

func NewSystemService(api SystemAPI, users UserService, exporter Exporter, deps Deps) SystemService {
	return &systemService{
		api:      api,
		users:    users,
		deps:     deps,
		logger:   deps.logger(),
		exporter: exporter,
		now:      time.Now,
		backups: &collection[models.Backup]{
			name:   query.KeyBackups,
			noun:   "Backup",
			mirror: deps.Mirror,
			cache:  deps.Cache,
			logger: deps.logger(),
			remote: remoteOps[models.Backup]{
				create: api.CreateBackup,
				delete: func(ctx context.Context, b models.Backup) error { return api.DeleteBackup(ctx, b.ID) },
			},
		},
		snapshots: &collection[models.Snapshot]{
			name:   query.KeySnapshots,
			noun:   "Snapshot",
			mirror: deps.Mirror,
			cache:  deps.Cache,
			logger: deps.logger(),
			remote: remoteOps[models.Snapshot]{
				create: api.CreateSnapshot,
				delete: func(ctx context.Context, s models.Snapshot) error { return api.DeleteSnapshot(ctx, s.ID) },
			},
		},
	}
}

func (s *systemService) authorize(action access.Action) error {
	return access.Authorize(s.deps.Session.Role(), action)
}

func (s *systemService) Backups(ctx context.Context) ([]models.Listed[models.Backup], error) {
	if err := s.authorize(access.ManageBackups); err != nil {
		return nil, err
	}
	return s.backups.list(ctx, s.api.ListBackups)
}

func (s *systemService) CreateBackup(ctx context.Context, b models.Backup) models.MutationResult[models.Backup] {
	if err := s.authorize(access.ManageBackups); err != nil {
		return rejected(b, err)
	}
	if err := validate.Apply(validate.Required("name", b.Name, "Name is required")); err != nil {
		return rejected(b, err)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now().UTC()
	}
	return s.backups.apply(ctx, mirror.OpCreate, b, func(ctx context.Context) (*models.Backup, error) {
		return s.api.CreateBackup(ctx, b)
	})
}

func (s *systemService) DeleteBackup(ctx context.Context, id models.ID) models.MutationResult[models.Backup] {
	b := models.Backup{ID: id}
	if err := s.authorize(access.ManageBackups); err != nil {
		return rejected(b, err)
	}
	if existing, err := s.backups.get(ctx, id); err == nil {
		b = existing
	}
	return s.backups.apply(ctx, mirror.OpDelete, b, func(ctx context.Context) (*models.Backup, error) {
		return nil, s.api.DeleteBackup(ctx, id)
	})
}

func (s *systemService) Snapshots(ctx context.Context) ([]models.Listed[models.Snapshot], error) {
	if err := s.authorize(access.ManageBackups); err != nil {
		return nil, err
	}
	return s.snapshots.list(ctx, s.api.ListSnapshots)
}

func (s *systemService) CreateSnapshot(ctx context.Context, sn models.Snapshot) models.MutationResult[models.Snapshot] {
	if err := s.authorize(access.ManageBackups); err != nil {
		return rejected(sn, err)
	}
	if err := validate.Apply(validate.Required("name", sn.Name, "Name is required")); err != nil {
		return rejected(sn, err)
	}
	if sn.CreatedAt.IsZero() {
		sn.CreatedAt = s.now().UTC()
	}
	return s.snapshots.apply(ctx, mirror.OpCreate, sn, func(ctx context.Context) (*models.Snapshot, error) {
		return s.api.CreateSnapshot(ctx, sn)
	})
}

func (s *systemService) DeleteSnapshot(ctx context.Context, id models.ID) models.MutationResult[models.Snapshot] {
	sn := models.Snapshot{ID: id}
	if err := s.authorize(access.ManageBackups); err != nil {
		return rejected(sn, err)
	}
	if existing, err := s.snapshots.get(ctx, id); err == nil {
		sn = existing
	}
	return s.snapshots.apply(ctx, mirror.OpDelete, sn, func(ctx context.Context) (*models.Snapshot, error) {
		return nil, s.api.DeleteSnapshot(ctx, id)
	})
}

func (s *systemService) RestoreSnapshot(ctx context.Context, id models.ID) models.MutationResult[models.Snapshot] {
	sn := models.Snapshot{ID: id}
	if err := s.authorize(access.RestoreSnapshot); err != nil {
		return rejected(sn, err)
	}
	if id.IsLocal() {
		return failed(sn, "Failed to restore snapshot", fmt.Errorf("snapshot %s is not synced yet: %w", id, client.ErrNotFound))
	}
	if err := s.api.RestoreSnapshot(ctx, id); err != nil {
		return failed(sn, "Failed to restore snapshot", err)
	}
	s.deps.Cache.Clear()
	return models.MutationResult[models.Snapshot]{
		Outcome: models.Confirmed,
		Item:    sn,
		Message: "Snapshot restored successfully",
	}
}

func (s *systemService) LockAll(ctx context.Context) models.MutationResult[[]models.UserRecord] {
	return s.setAllActive(ctx, false)
}

func (s *systemService) UnlockAll(ctx context.Context) models.MutationResult[[]models.UserRecord] {
	return s.setAllActive(ctx, true)
}

func (s *systemService) setAllActive(ctx context.Context, active bool) models.MutationResult[[]models.UserRecord] {
	verb := "locked"
	if active {
		verb = "unlocked"
	}
	if err := s.authorize(access.LockAllAccounts); err != nil {
		return rejected[[]models.UserRecord](nil, err)
	}
	listed, err := s.users.List(ctx)
	if err != nil {
		return failed[[]models.UserRecord](nil, "Failed to load users", err)
	}

	var self models.ID
	if u := s.deps.Session.Current().User; u != nil {
		self = u.ID
	}

	var (
		changed []models.UserRecord
		local   int
		errs    []error
	)
	for _, l := range listed {
		u := l.Item
		if u.ID == self || u.IsActive == active {
			continue
		}
		res := s.users.SetStatus(ctx, u.ID, active)
		switch res.Outcome {
		case models.Failed:
			errs = append(errs, fmt.Errorf("%s: %w", u.Username, res.Err))
			continue
		case models.AppliedLocally:
			local++
		}
		changed = append(changed, res.Item)
	}

	msg := fmt.Sprintf("%d accounts %s", len(changed), verb)
	if local > 0 {
		msg += fmt.Sprintf(" (%d pending sync)", local)
	}
	switch {
	case len(errs) > 0 && len(changed) == 0:
		return failed(changed, "Failed to update accounts", errors.Join(errs...))
	case len(errs) > 0:
		return models.MutationResult[[]models.UserRecord]{
			Outcome: models.Confirmed,
			Item:    changed,
			Message: fmt.Sprintf("%s, %d failed", msg, len(errs)),
			Err:     errors.Join(errs...),
		}
	case local > 0:
		return models.MutationResult[[]models.UserRecord]{Outcome: models.AppliedLocally, Item: changed, Message: msg}
	}
	return models.MutationResult[[]models.UserRecord]{Outcome: models.Confirmed, Item: changed, Message: msg}
}

func (s *systemService) FactoryReset(ctx context.Context) models.MutationResult[models.UserRecord] {
	admin := models.UserRecord{
		ID:         "1",
		Username:   DefaultAdminUsername,
		Email:      DefaultAdminEmail,
		Role:       models.RoleSuperuser,
		IsActive:   true,
		DateJoined: s.now().UTC().Format(time.DateOnly),
	}
	if err := s.authorize(access.FactoryReset); err != nil {
		return rejected(admin, err)
	}

	if err := s.deps.Mirror.Clear(ctx); err != nil {
		return failed(admin, "Factory reset failed", err)
	}
	if err := s.deps.KV.Clear(ctx); err != nil {
		return failed(admin, "Factory reset failed", err)
	}
	s.deps.Cache.Clear()

	payload, err := json.Marshal(admin)
	if err == nil {
		err = s.deps.Mirror.PutSynced(ctx, mirror.Record{
			Collection: query.KeyAdminUsers,
			ID:         admin.ID.String(),
			Payload:    payload,
		})
	}
	if err != nil {
		return failed(admin, "Factory reset failed", err)
	}

	if err := s.deps.Session.Purge(ctx); err != nil {
		return failed(admin, "Factory reset failed", err)
	}
	s.logger.Warn(ctx, "factory reset completed")
	return models.MutationResult[models.UserRecord]{
		Outcome: models.Confirmed,
		Item:    admin,
		Message: "Factory reset completed - system restored to defaults",
	}
}

func (s *systemService) ClearCache(ctx context.Context) error {
	if err := s.authorize(access.ManageBackups); err != nil {
		return err
	}
	s.deps.Cache.Clear()
	return nil
}

func (s *systemService) Export(ctx context.Context) (string, error) {
	if err := s.authorize(access.ExportSystemState); err != nil {
		return "", err
	}
	if s.exporter == nil {
		return "", errors.New("export is not configured")
	}
	return s.exporter.Export(ctx)
}
