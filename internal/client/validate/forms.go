package validate

import (
	"fmt"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

func Credentials(c models.Credentials) error {
	return Apply(
		Required("username", c.Username, "Username is required"),
		Required("password", c.Password, "Password is required"),
	)
}

func Registration(f models.RegisterForm) error {
	return Apply(
		Required("username", f.Username, "Username is required"),
		MinLen("username", f.Username, common.MinUsernameLength,
			fmt.Sprintf("Username must be at least %d characters", common.MinUsernameLength)),
		Required("email", f.Email, "Email is required"),
		Email("email", f.Email),
		Required("password", f.Password, "Password is required"),
		MinLen("password", f.Password, common.MinPasswordLength,
			fmt.Sprintf("Password must be at least %d characters", common.MinPasswordLength)),
		Equal("password_confirm", f.PasswordConfirm, f.Password, "Passwords do not match"),
	)
}

// NewUser checks the admin "add user" form. The password is mandatory here
// even though the record keeps it write-only.
func NewUser(u models.UserRecord) error {
	return Apply(
		Required("username", u.Username, "Username is required"),
		MinLen("username", u.Username, common.MinUsernameLength,
			fmt.Sprintf("Username must be at least %d characters", common.MinUsernameLength)),
		Required("email", u.Email, "Email is required"),
		Email("email", u.Email),
		Required("role", string(u.Role), "Role is required"),
		OneOf("role", u.Role, models.AllRoles, "Unknown role"),
		Required("password", u.Password, "Password is required"),
		MinLen("password", u.Password, common.MinPasswordLength,
			fmt.Sprintf("Password must be at least %d characters", common.MinPasswordLength)),
	)
}

func Language(l models.Language) error {
	return Apply(
		Required("name", l.Name, "Language name is required"),
		Required("regions", l.Regions, "Regions are required"),
		OneOf("family", l.Family, models.LanguageFamilies, "Unknown language family"),
		OneOf("endangerment_level", l.EndangermentLevel, models.EndangermentLevels, "Unknown endangerment level"),
		MaxLen("description", l.Description, common.MaxDescriptionLength),
		Rule{
			Field:   "estimated_speakers",
			Check:   func() bool { return l.EstimatedSpeakers == nil || *l.EstimatedSpeakers >= 0 },
			Message: "Speaker count cannot be negative",
		},
	)
}

func Role(r models.Role) error {
	return Apply(
		Required("name", r.Name, "Role name is required"),
		MaxLen("description", r.Description, common.MaxDescriptionLength),
	)
}
