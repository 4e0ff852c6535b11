package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/langcrowd/internal/client/access"
	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

// replayer is a collection able to push its pending records.
type replayer interface {
	collectionName() string
	replay(ctx context.Context, rec mirror.Record, ids map[models.ID]models.ID) error
	invalidate()
}

// SyncFailure is a pending change the backend rejected. It stays pending,
// except for changes to records the server no longer has, which are dropped.
type SyncFailure struct {
	Collection string
	ID         string
	Op         mirror.Op
	Err        error
}

type SyncReport struct {
	Confirmed int
	Pending   int
	Failed    []SyncFailure
}

func (r SyncReport) String() string {
	s := fmt.Sprintf("%d synced, %d pending", r.Confirmed, r.Pending)
	if len(r.Failed) > 0 {
		s += fmt.Sprintf(", %d rejected", len(r.Failed))
	}
	return s
}

type Syncer interface {
	// Sync replays pending local changes in the order they were made. It
	// stops at the first change that cannot reach the backend.
	Sync(ctx context.Context) (SyncReport, error)
	PendingCount(ctx context.Context) (int, error)
}

type syncer struct {
	mu      sync.Mutex
	mirror  mirror.Repository
	session SessionSource
	logger  logging.Logger
	byName  map[string]replayer
}

func newSyncer(deps Deps, reps ...replayer) *syncer {
	s := &syncer{
		mirror:  deps.Mirror,
		session: deps.Session,
		logger:  deps.logger(),
		byName:  make(map[string]replayer, len(reps)),
	}
	for _, r := range reps {
		s.byName[r.collectionName()] = r
	}
	return s
}

func (s *syncer) PendingCount(ctx context.Context) (int, error) {
	pending, err := s.mirror.ListPending(ctx)
	return len(pending), err
}

func (s *syncer) Sync(ctx context.Context) (SyncReport, error) {
	var report SyncReport
	if err := access.Authorize(s.session.Role(), access.SyncPending); err != nil {
		return report, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.mirror.ListPending(ctx)
	if err != nil {
		return report, err
	}
	if len(pending) == 0 {
		return report, nil
	}

	touched := make(map[string]replayer)
	defer func() {
		for _, r := range touched {
			r.invalidate()
		}
	}()

	ids := make(map[models.ID]models.ID)
	for i, rec := range pending {
		r, ok := s.byName[rec.Collection]
		if !ok {
			report.Pending++
			s.logger.Warn(ctx, "no replayer for pending record", "collection", rec.Collection, "id", rec.ID)
			continue
		}

		err := r.replay(ctx, rec, ids)
		if err == nil {
			touched[rec.Collection] = r
			report.Confirmed++
			s.logger.Debug(ctx, "pending change synced", "collection", rec.Collection, "id", rec.ID, "op", rec.Op)
			continue
		}

		switch {
		case errors.Is(err, client.ErrUnavailable), errors.Is(err, client.ErrUnauthorized), ctx.Err() != nil:
			report.Pending += len(pending) - i
			s.logger.Info(ctx, "sync interrupted", "synced", report.Confirmed, "left", len(pending)-i, "err", err)
			return report, err
		case errors.Is(err, errRecordGone):
			touched[rec.Collection] = r
			report.Failed = append(report.Failed, SyncFailure{Collection: rec.Collection, ID: rec.ID, Op: rec.Op, Err: err})
			s.logger.Warn(ctx, "pending change dropped", "collection", rec.Collection, "id", rec.ID, "op", rec.Op, "err", err)
		case client.IsFallbackEligible(err):
			report.Pending++
		default:
			report.Pending++
			report.Failed = append(report.Failed, SyncFailure{Collection: rec.Collection, ID: rec.ID, Op: rec.Op, Err: err})
			s.logger.Warn(ctx, "pending change rejected", "collection", rec.Collection, "id", rec.ID, "op", rec.Op, "err", err)
		}
	}

	s.logger.Info(ctx, "sync finished", "synced", report.Confirmed, "pending", report.Pending)
	return report, nil
}
