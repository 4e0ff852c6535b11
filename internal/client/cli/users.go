package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/shared"
)

func (a *App) Users(ctx context.Context, _ []string) error {
	users, err := a.svc.Users.List(ctx)
	if err != nil {
		return err
	}
	table(a.out, "ID\tUSERNAME\tEMAIL\tROLE\tACTIVE\tJOINED\t", func(tw io.Writer) {
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", u.Item.ID, u.Item.Username, u.Item.Email,
				models.FormatLabel(string(u.Item.Role)), yesNo(u.Item.IsActive), u.Item.DateJoined, pendingMark(u.Pending))
		}
	})
	return nil
}

func (a *App) AddUser(ctx context.Context, _ []string) error {
	var u models.UserRecord
	var err error
	if u.Username, err = a.ask("Username"); err != nil {
		return err
	}
	if u.Email, err = a.ask("Email"); err != nil {
		return err
	}
	role, err := a.ask("Role (" + joinLabels(models.AllRoles) + ")")
	if err != nil {
		return err
	}
	u.Role, _ = models.ParseRole(role)
	password, err := getPassword("Initial password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)
	u.Password = string(password)

	report(a, a.svc.Users.Create(ctx, u))
	return nil
}

func (a *App) SetRole(ctx context.Context, args []string) error {
	role, ok := models.ParseRole(strings.Join(args[1:], " "))
	if !ok {
		return validate.FromFields(map[string][]string{"role": {"Select a valid role"}})
	}
	report(a, a.svc.Users.SetRole(ctx, models.ID(args[0]), role))
	return nil
}

func (a *App) SetStatus(ctx context.Context, args []string) error {
	var active bool
	switch strings.ToLower(args[1]) {
	case "active", "on", "true":
		active = true
	case "inactive", "off", "false":
	default:
		return validate.FromFields(map[string][]string{"status": {"Use active or inactive"}})
	}
	report(a, a.svc.Users.SetStatus(ctx, models.ID(args[0]), active))
	return nil
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if !Confirm(a.reader, "Delete user "+args[0]+"?", "yes", a.out) {
		a.println("Cancelled.")
		return nil
	}
	report(a, a.svc.Users.Delete(ctx, models.ID(args[0])))
	return nil
}
