package services

import (
	"context"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/kv"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

// SessionSource is the part of *session.Store the services rely on.
type SessionSource interface {
	Role() models.RoleName
	Current() models.Session
	Purge(ctx context.Context) error
}

// Deps are shared by all services.
type Deps struct {
	Mirror  mirror.Repository
	KV      kv.Repository
	Cache   *query.Cache
	Session SessionSource
	Logger  logging.Logger
}

func (d Deps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.Discard()
	}
	return d.Logger
}
