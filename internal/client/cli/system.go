package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/router"
)

func (a *App) Sync(ctx context.Context, _ []string) error {
	rep, err := a.svc.Sync.Sync(ctx)
	if err != nil {
		a.println("Sync stopped:", describe(err))
	}
	a.println(rep.String())
	for _, f := range rep.Failed {
		a.printf("  %s %s %s: %s\n", f.Op, f.Collection, f.ID, describe(f.Err))
	}
	return nil
}

func (a *App) Backups(ctx context.Context, _ []string) error {
	backups, err := a.svc.System.Backups(ctx)
	if err != nil {
		return err
	}
	table(a.out, "ID\tNAME\tTYPE\tCREATED\t", func(tw io.Writer) {
		for _, b := range backups {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.Item.ID, b.Item.Name, b.Item.BackupType,
				stamp(b.Item.CreatedAt), pendingMark(b.Pending))
		}
	})
	return nil
}

func (a *App) CreateBackup(ctx context.Context, args []string) error {
	report(a, a.svc.System.CreateBackup(ctx, models.Backup{Name: strings.Join(args, " "), BackupType: "full"}))
	return nil
}

func (a *App) Snapshots(ctx context.Context, _ []string) error {
	snaps, err := a.svc.System.Snapshots(ctx)
	if err != nil {
		return err
	}
	table(a.out, "ID\tNAME\tCREATED\t", func(tw io.Writer) {
		for _, s := range snaps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Item.ID, s.Item.Name, stamp(s.Item.CreatedAt), pendingMark(s.Pending))
		}
	})
	return nil
}

func (a *App) CreateSnapshot(ctx context.Context, args []string) error {
	report(a, a.svc.System.CreateSnapshot(ctx, models.Snapshot{Name: strings.Join(args, " ")}))
	return nil
}

func (a *App) RestoreSnapshot(ctx context.Context, args []string) error {
	if !Confirm(a.reader, "Restore snapshot "+args[0]+"? Current data will be replaced.", "RESTORE", a.out) {
		a.println("Cancelled.")
		return nil
	}
	report(a, a.svc.System.RestoreSnapshot(ctx, models.ID(args[0])))
	return nil
}

func (a *App) LockAll(ctx context.Context, _ []string) error {
	if !Confirm(a.reader, "Deactivate every other account?", "LOCK", a.out) {
		a.println("Cancelled.")
		return nil
	}
	report(a, a.svc.System.LockAll(ctx))
	return nil
}

func (a *App) UnlockAll(ctx context.Context, _ []string) error {
	report(a, a.svc.System.UnlockAll(ctx))
	return nil
}

func (a *App) FactoryReset(ctx context.Context, _ []string) error {
	if !Confirm(a.reader, "Wipe all local data and log out?", "RESET", a.out) {
		a.println("Cancelled.")
		return nil
	}
	r := a.svc.System.FactoryReset(ctx)
	report(a, r)
	if r.Outcome != models.Failed {
		a.nav.Open(router.PathRoot)
	}
	return nil
}

func (a *App) Export(ctx context.Context, _ []string) error {
	where, err := a.svc.System.Export(ctx)
	if err != nil {
		return err
	}
	a.println("Report written to", where)
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
