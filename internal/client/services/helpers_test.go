package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/localdb"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
)

// backend is the state shared by the fake APIs.
type backend struct {
	mu       sync.Mutex
	down     bool
	failWith error
	calls    map[string]int
}

func (b *backend) setDown(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = v
}

func (b *backend) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWith = err
}

func (b *backend) call(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls == nil {
		b.calls = make(map[string]int)
	}
	b.calls[name]++
	if b.down {
		return fmt.Errorf("dial tcp: connection refused: %w", client.ErrUnavailable)
	}
	return b.failWith
}

func (b *backend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

// table is an in-memory server-side collection.
type table[T record[T]] struct {
	b     *backend
	name  string
	mu    sync.Mutex
	items []T
	next  int
}

func (t *table[T]) list(context.Context) ([]T, error) {
	if err := t.b.call(t.name + ".list"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T(nil), t.items...), nil
}

func (t *table[T]) create(_ context.Context, item T) (*T, error) {
	if err := t.b.call(t.name + ".create"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	item = item.WithID(models.ID(strconv.Itoa(100 + t.next)))
	t.items = append(t.items, item)
	return &item, nil
}

func (t *table[T]) update(_ context.Context, item T) (*T, error) {
	if err := t.b.call(t.name + ".update"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		if t.items[i].RecordID() == item.RecordID() {
			t.items[i] = item
			return &item, nil
		}
	}
	return nil, &client.APIError{Status: 404, Detail: "Not found."}
}

func (t *table[T]) remove(_ context.Context, id models.ID) error {
	if err := t.b.call(t.name + ".delete"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		if t.items[i].RecordID() == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Detail: "Not found."}
}

func (t *table[T]) snapshot() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]T(nil), t.items...)
}

func (t *table[T]) find(id models.ID) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, it := range t.items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

type fakeLanguages struct{ *table[models.Language] }

func (f fakeLanguages) List(ctx context.Context) ([]models.Language, error) { return f.list(ctx) }
func (f fakeLanguages) Create(ctx context.Context, l models.Language) (*models.Language, error) {
	return f.create(ctx, l)
}
func (f fakeLanguages) Update(ctx context.Context, l models.Language) (*models.Language, error) {
	return f.update(ctx, l)
}
func (f fakeLanguages) Delete(ctx context.Context, id models.ID) error { return f.remove(ctx, id) }

type fakeUsers struct {
	*table[models.UserRecord]
	// created keeps the records as sent, passwords included.
	created []models.UserRecord
}

func (f *fakeUsers) List(ctx context.Context) ([]models.UserRecord, error) { return f.list(ctx) }
func (f *fakeUsers) Create(ctx context.Context, u models.UserRecord) (*models.UserRecord, error) {
	out, err := f.create(ctx, u.Redacted())
	if err != nil {
		return nil, err
	}
	f.created = append(f.created, u)
	return out, nil
}
func (f *fakeUsers) Update(ctx context.Context, u models.UserRecord) (*models.UserRecord, error) {
	return f.update(ctx, u)
}
func (f *fakeUsers) Delete(ctx context.Context, id models.ID) error { return f.remove(ctx, id) }

func (f *fakeUsers) UpdateRole(ctx context.Context, id models.ID, role models.RoleName) (*models.UserRecord, error) {
	u, ok := f.find(id)
	if !ok {
		return nil, &client.APIError{Status: 404}
	}
	u.Role = role
	return f.update(ctx, u)
}

func (f *fakeUsers) UpdateStatus(ctx context.Context, id models.ID, active bool) (*models.UserRecord, error) {
	u, ok := f.find(id)
	if !ok {
		return nil, &client.APIError{Status: 404}
	}
	u.IsActive = active
	return f.update(ctx, u)
}

type fakeRoles struct {
	*table[models.Role]
	permissions []models.Permission
	withRoles   []models.UserWithRoles

	mu       sync.Mutex
	assigned []models.RoleAssignment
	removed  []models.RoleAssignment
}

func (f *fakeRoles) ListPermissions(context.Context) ([]models.Permission, error) {
	if err := f.b.call("permissions.list"); err != nil {
		return nil, err
	}
	return f.permissions, nil
}
func (f *fakeRoles) List(ctx context.Context) ([]models.Role, error) { return f.list(ctx) }
func (f *fakeRoles) Create(ctx context.Context, r models.Role) (*models.Role, error) {
	return f.create(ctx, r)
}
func (f *fakeRoles) Update(ctx context.Context, r models.Role) (*models.Role, error) {
	return f.update(ctx, r)
}
func (f *fakeRoles) Delete(ctx context.Context, id models.ID) error { return f.remove(ctx, id) }

func (f *fakeRoles) UsersWithRoles(context.Context) ([]models.UserWithRoles, error) {
	if err := f.b.call("users_with_roles.list"); err != nil {
		return nil, err
	}
	return f.withRoles, nil
}

func (f *fakeRoles) Assign(_ context.Context, a models.RoleAssignment) error {
	if err := f.b.call("assign"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned = append(f.assigned, a)
	return nil
}

func (f *fakeRoles) Remove(_ context.Context, a models.RoleAssignment) error {
	if err := f.b.call("remove"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, a)
	return nil
}

type fakeSystem struct {
	backups   *table[models.Backup]
	snapshots *table[models.Snapshot]
	restored  []models.ID
}

func (f *fakeSystem) ListBackups(ctx context.Context) ([]models.Backup, error) {
	return f.backups.list(ctx)
}
func (f *fakeSystem) CreateBackup(ctx context.Context, b models.Backup) (*models.Backup, error) {
	return f.backups.create(ctx, b)
}
func (f *fakeSystem) DeleteBackup(ctx context.Context, id models.ID) error {
	return f.backups.remove(ctx, id)
}
func (f *fakeSystem) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	return f.snapshots.list(ctx)
}
func (f *fakeSystem) CreateSnapshot(ctx context.Context, s models.Snapshot) (*models.Snapshot, error) {
	return f.snapshots.create(ctx, s)
}
func (f *fakeSystem) DeleteSnapshot(ctx context.Context, id models.ID) error {
	return f.snapshots.remove(ctx, id)
}
func (f *fakeSystem) RestoreSnapshot(_ context.Context, id models.ID) error {
	if err := f.snapshots.b.call("snapshots.restore"); err != nil {
		return err
	}
	f.restored = append(f.restored, id)
	return nil
}

type fakeSession struct {
	mu     sync.Mutex
	sess   models.Session
	purged int
}

func newFakeSession(id models.ID, role models.RoleName) *fakeSession {
	return &fakeSession{sess: models.NewSession(&models.User{ID: id, Username: "actor", Role: role}, "tok")}
}

func (f *fakeSession) Role() models.RoleName {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess.Role()
}

func (f *fakeSession) Current() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess.Clone()
}

func (f *fakeSession) Purge(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged++
	f.sess = models.Session{}
	return nil
}

type fakeExporter struct {
	location string
	err      error
	calls    int
}

func (f *fakeExporter) Export(context.Context) (string, error) {
	f.calls++
	return f.location, f.err
}

type env struct {
	backend   *backend
	repos     *localdb.Repositories
	cache     *query.Cache
	session   *fakeSession
	users     *fakeUsers
	languages fakeLanguages
	roles     *fakeRoles
	system    *fakeSystem
	exporter  *fakeExporter
	svc       *Services
}

func newEnv(t *testing.T, role models.RoleName) *env {
	t.Helper()
	repos, err := localdb.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	b := &backend{}
	e := &env{
		backend:   b,
		repos:     repos,
		cache:     query.New(0),
		session:   newFakeSession("1", role),
		users:     &fakeUsers{table: &table[models.UserRecord]{b: b, name: "users"}},
		languages: fakeLanguages{&table[models.Language]{b: b, name: "languages"}},
		roles:     &fakeRoles{table: &table[models.Role]{b: b, name: "roles", next: 50}},
		system: &fakeSystem{
			backups:   &table[models.Backup]{b: b, name: "backups"},
			snapshots: &table[models.Snapshot]{b: b, name: "snapshots"},
		},
		exporter: &fakeExporter{location: "file:///tmp/report.json"},
	}
	e.svc = New(APIs{
		Users:     e.users,
		Languages: e.languages,
		Roles:     e.roles,
		System:    e.system,
	}, e.exporter, Deps{
		Mirror:  repos.Mirror,
		KV:      repos.KV,
		Cache:   e.cache,
		Session: e.session,
	})
	return e
}

func items[T any](listed []models.Listed[T]) []T {
	out := make([]T, 0, len(listed))
	for _, l := range listed {
		out = append(out, l.Item)
	}
	return out
}
