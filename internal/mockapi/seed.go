package mockapi

import (
	"fmt"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

// Demo accounts. Every sample user shares SamplePassword; the admin login
// matches the one shown on the sign-in screen.
const (
	AdminUsername  = "admin"
	AdminPassword  = "admin123"
	SamplePassword = "password123"
)

func ptr[T any](v T) *T { return &v }

var seedUsers = []struct {
	rec      models.UserRecord
	password string
}{
	{models.UserRecord{ID: "1", Username: "john_doe", Email: "john@example.com", Role: models.RoleContributor, IsActive: true, DateJoined: "2024-01-15"}, SamplePassword},
	{models.UserRecord{ID: "2", Username: "mary_smith", Email: "mary@example.com", Role: models.RoleReviewer, IsActive: true, DateJoined: "2024-01-20"}, SamplePassword},
	{models.UserRecord{ID: "3", Username: "david_wilson", Email: "david@example.com", Role: models.RoleLanguageLead, IsActive: false, DateJoined: "2024-01-10"}, SamplePassword},
	{models.UserRecord{ID: "4", Username: "rootadmin", Email: "root@example.com", Role: models.RoleSuperuser, IsActive: true, DateJoined: "2024-01-01"}, SamplePassword},
	{models.UserRecord{ID: "5", Username: AdminUsername, Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true, DateJoined: "2024-01-01"}, AdminPassword},
}

var seedLanguages = []models.Language{
	{ID: "1", Name: "Bassa", ISOCode: "bsq", Family: models.FamilyKru, EstimatedSpeakers: ptr(600000), EndangermentLevel: models.EndangermentSafe,
		Regions: "Grand Bassa, Rivercess, Margibi", Description: "Kru language with its own Vah script."},
	{ID: "2", Name: "Kpelle", ISOCode: "xpe", Family: models.FamilyMande, EstimatedSpeakers: ptr(800000), EndangermentLevel: models.EndangermentSafe,
		Regions: "Bong, Lofa, Gbarpolu", Description: "Most widely spoken indigenous language of Liberia."},
	{ID: "3", Name: "Vai", ISOCode: "vai", Family: models.FamilyMande, EstimatedSpeakers: ptr(150000), EndangermentLevel: models.EndangermentVulnerable,
		Regions: "Grand Cape Mount", Description: "Mande language written in the Vai syllabary."},
	{ID: "4", Name: "Krahn", ISOCode: "krw", Family: models.FamilyKru, EstimatedSpeakers: ptr(120000), EndangermentLevel: models.EndangermentVulnerable,
		Regions: "Grand Gedeh, River Gee, Sinoe"},
	{ID: "5", Name: "Gio", ISOCode: "dnj", Family: models.FamilyMande, EstimatedSpeakers: ptr(350000), EndangermentLevel: models.EndangermentSafe,
		Regions: "Nimba"},
}

var seedPermissions = []struct{ category, codename, name string }{
	{"user_management", "view_users", "View users"},
	{"user_management", "create_users", "Create users"},
	{"user_management", "edit_users", "Edit users"},
	{"user_management", "delete_users", "Delete users"},
	{"user_management", "manage_user_roles", "Manage user roles"},
	{"content_management", "view_languages", "View languages"},
	{"content_management", "manage_languages", "Manage languages"},
	{"content_management", "view_contributions", "View contributions"},
	{"content_management", "review_contributions", "Review contributions"},
	{"content_management", "delete_contributions", "Delete contributions"},
	{"system_management", "view_system_settings", "View system settings"},
	{"system_management", "edit_system_settings", "Edit system settings"},
	{"system_management", "manage_backups", "Manage backups"},
	{"system_management", "view_logs", "View logs"},
	{"data_management", "export_data", "Export data"},
	{"data_management", "import_data", "Import data"},
	{"data_management", "delete_data", "Delete data"},
	{"data_management", "manage_snapshots", "Manage snapshots"},
	{"security", "manage_roles", "Manage roles"},
	{"security", "manage_admin_roles", "Manage admin roles"},
	{"security", "view_audit_log", "View audit log"},
	{"security", "audit_system", "Audit system"},
}

// Seed fills an empty store with the sample data set.
func (s *Store) Seed() error {
	for _, su := range seedUsers {
		h, err := s.hash(su.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", su.rec.Username, err)
		}
		s.users = append(s.users, &account{UserRecord: su.rec, hash: h, verified: true})
	}
	s.languages = append(s.languages, seedLanguages...)
	for i, p := range seedPermissions {
		s.permissions = append(s.permissions, models.Permission{
			ID:       models.ID(fmt.Sprint(i + 1)),
			Name:     p.name,
			Codename: p.codename,
			Category: p.category,
		})
	}
	s.roles = append(s.roles,
		models.Role{ID: "1", Name: "Content Moderator", Description: "Reviews and curates contributions",
			PermissionIDs: []models.ID{"6", "8", "9", "10"}},
		models.Role{ID: "2", Name: "System Administrator", Description: "Full system access", IsAdminRole: true,
			PermissionIDs: []models.ID{"1", "2", "3", "4", "5", "11", "12", "13", "14", "18", "19", "20"}},
	)
	s.assignments = append(s.assignments, models.RoleAssignment{UserID: "2", RoleID: "1"})
	return nil
}
