package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

type SystemAPI struct{ g *Gateway }

func (g *Gateway) System() *SystemAPI { return &SystemAPI{g: g} }

func (a *SystemAPI) ListBackups(ctx context.Context) ([]models.Backup, error) {
	return list[models.Backup](ctx, a.g, "system/backups/")
}

func (a *SystemAPI) CreateBackup(ctx context.Context, b models.Backup) (*models.Backup, error) {
	var out models.Backup
	if err := a.g.send(ctx, http.MethodPost, "system/backups/", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SystemAPI) DeleteBackup(ctx context.Context, id models.ID) error {
	return a.g.send(ctx, http.MethodDelete, "system/backups/"+url.PathEscape(id.String())+"/", nil, nil)
}

func (a *SystemAPI) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	return list[models.Snapshot](ctx, a.g, "system/snapshots/")
}

func (a *SystemAPI) CreateSnapshot(ctx context.Context, s models.Snapshot) (*models.Snapshot, error) {
	var out models.Snapshot
	if err := a.g.send(ctx, http.MethodPost, "system/snapshots/", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SystemAPI) DeleteSnapshot(ctx context.Context, id models.ID) error {
	return a.g.send(ctx, http.MethodDelete, "system/snapshots/"+url.PathEscape(id.String())+"/", nil, nil)
}

// RestoreSnapshot asks the server to roll its data back to the snapshot.
func (a *SystemAPI) RestoreSnapshot(ctx context.Context, id models.ID) error {
	return a.g.send(ctx, http.MethodPost, "system/snapshots/"+url.PathEscape(id.String())+"/", nil, nil)
}
