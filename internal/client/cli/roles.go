package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
)

func (a *App) Roles(ctx context.Context, _ []string) error {
	roles, err := a.svc.Roles.List(ctx)
	if err != nil {
		return err
	}
	table(a.out, "ID\tNAME\tADMIN\tPERMISSIONS\t", func(tw io.Writer) {
		for _, r := range roles {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Item.ID, r.Item.Name, yesNo(r.Item.IsAdminRole),
				len(r.Item.PermissionIDs), pendingMark(r.Pending))
		}
	})

	users, err := a.svc.Assignments.UsersWithRoles(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	a.println()
	table(a.out, "USER\tROLES\t", func(tw io.Writer) {
		for _, u := range users {
			names := make([]string, len(u.Item.Roles))
			for i, r := range u.Item.Roles {
				names[i] = r.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Item.Username, strings.Join(names, ", "), pendingMark(u.Pending))
		}
	})
	return nil
}

func (a *App) Permissions(ctx context.Context, _ []string) error {
	perms, err := a.svc.Roles.Permissions(ctx)
	if err != nil {
		return err
	}
	table(a.out, "ID\tCODENAME\tCATEGORY\tNAME", func(tw io.Writer) {
		for _, p := range perms {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Item.ID, p.Item.Codename, p.Item.Category, p.Item.Name)
		}
	})
	return nil
}

// AddRole accepts permissions by codename or id.
func (a *App) AddRole(ctx context.Context, _ []string) error {
	perms, err := a.svc.Roles.Permissions(ctx)
	if err != nil {
		return err
	}
	byKey := make(map[string]models.ID, 2*len(perms))
	for _, p := range perms {
		byKey[p.Item.Codename] = p.Item.ID
		byKey[string(p.Item.ID)] = p.Item.ID
	}

	var r models.Role
	if r.Name, err = a.ask("Name"); err != nil {
		return err
	}
	if r.Description, err = GetMultiline(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}
	keys, err := GetList(a.reader, "Permissions (comma separated codenames)", a.out)
	if err != nil {
		return err
	}
	r.PermissionIDs = make([]models.ID, 0, len(keys))
	for _, k := range keys {
		id, ok := byKey[k]
		if !ok {
			return validate.FromFields(map[string][]string{"permission_ids": {"Unknown permission " + k}})
		}
		r.PermissionIDs = append(r.PermissionIDs, id)
	}
	r.IsAdminRole = Confirm(a.reader, "Admin role?", "y", a.out)

	report(a, a.svc.Roles.Create(ctx, r))
	return nil
}

func (a *App) DeleteRole(ctx context.Context, args []string) error {
	report(a, a.svc.Roles.Delete(ctx, models.ID(args[0])))
	return nil
}

func (a *App) AssignRole(ctx context.Context, args []string) error {
	report(a, a.svc.Assignments.Assign(ctx, models.RoleAssignment{UserID: models.ID(args[0]), RoleID: models.ID(args[1])}))
	return nil
}

func (a *App) RemoveRole(ctx context.Context, args []string) error {
	report(a, a.svc.Assignments.Remove(ctx, models.RoleAssignment{UserID: models.ID(args[0]), RoleID: models.ID(args[1])}))
	return nil
}
