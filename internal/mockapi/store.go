package mockapi

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type account struct {
	models.UserRecord
	hash       []byte
	reputation int
	verified   bool
}

func (a *account) profile() *models.User {
	return &models.User{
		ID:              a.ID,
		Username:        a.Username,
		Email:           a.Email,
		Role:            a.Role,
		ReputationScore: a.reputation,
		IsVerified:      a.verified,
	}
}

// dataset is the restorable part of the store.
type dataset struct {
	users       []*account
	languages   []models.Language
	roles       []models.Role
	assignments []models.RoleAssignment
}

func (d dataset) clone() dataset {
	out := dataset{
		users:       make([]*account, 0, len(d.users)),
		languages:   slices.Clone(d.languages),
		roles:       make([]models.Role, 0, len(d.roles)),
		assignments: slices.Clone(d.assignments),
	}
	for _, u := range d.users {
		c := *u
		out.users = append(out.users, &c)
	}
	for _, r := range d.roles {
		out.roles = append(out.roles, cloneRole(r))
	}
	return out
}

type snapshot struct {
	models.Snapshot
	data dataset
}

// Store keeps all mock API data in memory.
type Store struct {
	mu   sync.RWMutex
	cost int
	next int
	now  func() time.Time

	dataset
	permissions []models.Permission
	backups     []models.Backup
	snapshots   []snapshot

	revoked     map[string]struct{}
	resetTokens map[string]models.ID
	codes       map[models.ID]string
}

func NewStore(cost int) *Store {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{
		cost:        cost,
		next:        1000,
		now:         time.Now,
		revoked:     make(map[string]struct{}),
		resetTokens: make(map[string]models.ID),
		codes:       make(map[models.ID]string),
	}
}

func (s *Store) nextID() models.ID {
	s.next++
	return models.ID(strconv.Itoa(s.next))
}

func (s *Store) hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), s.cost)
}

func (s *Store) findUser(match func(*account) bool) *account {
	for _, u := range s.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (s *Store) userByID(id models.ID) *account {
	return s.findUser(func(a *account) bool { return a.ID == id })
}

// Authenticate checks a username and password against the stored hash.
func (s *Store) Authenticate(username, password string) (*account, bool) {
	s.mu.RLock()
	u := s.findUser(func(a *account) bool { return strings.EqualFold(a.Username, username) })
	s.mu.RUnlock()
	if u == nil {
		// keep the timing of unknown users close to known ones
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinvali"), []byte(password))
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return nil, false
	}
	c := *u
	return &c, true
}

func (s *Store) User(id models.ID) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.userByID(id)
	if u == nil {
		return nil, false
	}
	c := *u
	return &c, true
}

func (s *Store) UsernameTaken(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(a *account) bool { return strings.EqualFold(a.Username, username) }) != nil
}

func (s *Store) EmailTaken(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(a *account) bool { return strings.EqualFold(a.Email, email) }) != nil
}

func (s *Store) CreateUser(u models.UserRecord, password string) (*account, error) {
	h, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUser(func(a *account) bool {
		return strings.EqualFold(a.Username, u.Username) || strings.EqualFold(a.Email, u.Email)
	}) != nil {
		return nil, ErrAlreadyExists
	}
	u.ID = s.nextID()
	u.Password = ""
	if u.DateJoined == "" {
		u.DateJoined = s.now().UTC().Format(time.DateOnly)
	}
	a := &account{UserRecord: u, hash: h}
	s.users = append(s.users, a)
	c := *a
	return &c, nil
}

func (s *Store) Users() []models.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.UserRecord)
	}
	return out
}

// UpdateUser applies fn to the stored user under the write lock.
func (s *Store) UpdateUser(id models.ID, fn func(*account) error) (models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByID(id)
	if u == nil {
		return models.UserRecord{}, ErrNotFound
	}
	if err := fn(u); err != nil {
		return models.UserRecord{}, err
	}
	return u.UserRecord, nil
}

func (s *Store) SetPassword(id models.ID, password string) error {
	h, err := s.hash(password)
	if err != nil {
		return err
	}
	_, err = s.UpdateUser(id, func(a *account) error {
		a.hash = h
		return nil
	})
	return err
}

func (s *Store) DeleteUser(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.users, func(a *account) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	s.assignments = slices.DeleteFunc(s.assignments, func(a models.RoleAssignment) bool { return a.UserID == id })
	return nil
}

func (s *Store) Languages() []models.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.languages)
}

func (s *Store) CreateLanguage(l models.Language) (models.Language, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.languages, func(x models.Language) bool { return strings.EqualFold(x.Name, l.Name) }) {
		return l, ErrAlreadyExists
	}
	l.ID = s.nextID()
	s.languages = append(s.languages, l)
	return l, nil
}

func (s *Store) UpdateLanguage(l models.Language) (models.Language, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.languages, func(x models.Language) bool { return x.ID == l.ID })
	if i < 0 {
		return l, ErrNotFound
	}
	s.languages[i] = l
	return l, nil
}

func (s *Store) DeleteLanguage(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.languages)
	s.languages = slices.DeleteFunc(s.languages, func(x models.Language) bool { return x.ID == id })
	if len(s.languages) == n {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Permissions() []models.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.permissions)
}

func cloneRole(r models.Role) models.Role {
	r.PermissionIDs = slices.Clone(r.PermissionIDs)
	return r
}

func (s *Store) Roles() []models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, cloneRole(r))
	}
	return out
}

func (s *Store) Role(id models.ID) (models.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.roles, func(r models.Role) bool { return r.ID == id })
	if i < 0 {
		return models.Role{}, false
	}
	return cloneRole(s.roles[i]), true
}

func (s *Store) CreateRole(r models.Role) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.roles, func(x models.Role) bool { return strings.EqualFold(x.Name, r.Name) }) {
		return r, ErrAlreadyExists
	}
	r.ID = s.nextID()
	if r.PermissionIDs == nil {
		r.PermissionIDs = []models.ID{}
	}
	s.roles = append(s.roles, r)
	return r, nil
}

func (s *Store) UpdateRole(r models.Role) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.roles, func(x models.Role) bool { return x.ID == r.ID })
	if i < 0 {
		return r, ErrNotFound
	}
	if r.PermissionIDs == nil {
		r.PermissionIDs = []models.ID{}
	}
	s.roles[i] = r
	return r, nil
}

func (s *Store) DeleteRole(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.roles)
	s.roles = slices.DeleteFunc(s.roles, func(x models.Role) bool { return x.ID == id })
	if len(s.roles) == n {
		return ErrNotFound
	}
	s.assignments = slices.DeleteFunc(s.assignments, func(a models.RoleAssignment) bool { return a.RoleID == id })
	return nil
}

func (s *Store) UsersWithRoles() []models.UserWithRoles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserWithRoles, 0, len(s.users))
	for _, u := range s.users {
		uw := models.UserWithRoles{ID: u.ID, Username: u.Username, Roles: []models.Role{}}
		for _, a := range s.assignments {
			if a.UserID != u.ID {
				continue
			}
			if i := slices.IndexFunc(s.roles, func(r models.Role) bool { return r.ID == a.RoleID }); i >= 0 {
				uw.Roles = append(uw.Roles, cloneRole(s.roles[i]))
			}
		}
		out = append(out, uw)
	}
	return out
}

func (s *Store) Assign(a models.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByID(a.UserID) == nil || !slices.ContainsFunc(s.roles, func(r models.Role) bool { return r.ID == a.RoleID }) {
		return ErrNotFound
	}
	if slices.Contains(s.assignments, a) {
		return ErrAlreadyExists
	}
	s.assignments = append(s.assignments, a)
	return nil
}

func (s *Store) Unassign(a models.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.assignments, a)
	if i < 0 {
		return ErrNotFound
	}
	s.assignments = slices.Delete(s.assignments, i, i+1)
	return nil
}

func (s *Store) Backups() []models.Backup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.backups)
}

func (s *Store) CreateBackup(b models.Backup) models.Backup {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID()
	if b.BackupType == "" {
		b.BackupType = "full"
	}
	b.CreatedAt = s.now().UTC()
	s.backups = append(s.backups, b)
	return b
}

func (s *Store) DeleteBackup(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.backups)
	s.backups = slices.DeleteFunc(s.backups, func(b models.Backup) bool { return b.ID == id })
	if len(s.backups) == n {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Snapshots() []models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Snapshot, 0, len(s.snapshots))
	for _, sn := range s.snapshots {
		out = append(out, sn.Snapshot)
	}
	return out
}

// CreateSnapshot captures users, languages, roles and assignments.
func (s *Store) CreateSnapshot(sn models.Snapshot) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn.ID = s.nextID()
	sn.CreatedAt = s.now().UTC()
	s.snapshots = append(s.snapshots, snapshot{Snapshot: sn, data: s.dataset.clone()})
	return sn
}

func (s *Store) DeleteSnapshot(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.snapshots)
	s.snapshots = slices.DeleteFunc(s.snapshots, func(x snapshot) bool { return x.ID == id })
	if len(s.snapshots) == n {
		return ErrNotFound
	}
	return nil
}

func (s *Store) RestoreSnapshot(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.snapshots, func(x snapshot) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.dataset = s.snapshots[i].data.clone()
	return nil
}

func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

func (s *Store) Revoked(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[token]
	return ok
}

// IssueResetToken stores a password reset token for the account with email.
// ok is false when no account uses that address.
func (s *Store) IssueResetToken(email, token string) (models.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUser(func(a *account) bool { return strings.EqualFold(a.Email, email) })
	if u == nil {
		return "", false
	}
	s.resetTokens[token] = u.ID
	return u.ID, true
}

// ConsumeResetToken returns true once for a token issued to uid.
func (s *Store) ConsumeResetToken(uid models.ID, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.resetTokens[token]
	if !ok || owner != uid {
		return false
	}
	delete(s.resetTokens, token)
	return true
}

func (s *Store) SetCode(id models.ID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[id] = code
}

// CheckCode verifies and consumes a two-factor code.
func (s *Store) CheckCode(id models.ID, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.codes[id]
	if !ok || want != code {
		return false
	}
	delete(s.codes, id)
	if u := s.userByID(id); u != nil {
		u.verified = true
	}
	return true
}
