package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/common"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

// record is implemented by every mirrored model.
type record[T any] interface {
	RecordID() models.ID
	WithID(id models.ID) T
}

// remoteOps are the backend calls used to replay pending changes.
type remoteOps[T any] struct {
	create func(ctx context.Context, item T) (*T, error)
	update func(ctx context.Context, item T) (*T, error)
	delete func(ctx context.Context, item T) error
}

// collection binds one mirrored collection to its cache key and backend.
type collection[T record[T]] struct {
	name        string
	noun        string
	mirror      mirror.Repository
	cache       *query.Cache
	logger      logging.Logger
	remote      remoteOps[T]
	invalidates []string

	// sanitize runs before a record is written to the mirror.
	sanitize func(T) T
	// transient collections only hold pending changes; confirmed records
	// are dropped because the server view is read through another key.
	transient bool
	// remap rewrites references to records created offline once the server
	// has assigned their real ids.
	remap func(T, map[models.ID]models.ID) T
}

func (c *collection[T]) keys() []string {
	return append([]string{c.name}, c.invalidates...)
}

func (c *collection[T]) invalidate() {
	c.cache.Invalidate(c.keys()...)
}

func (c *collection[T]) encode(item T) ([]byte, error) {
	if c.sanitize != nil {
		item = c.sanitize(item)
	}
	return json.Marshal(item)
}

func (c *collection[T]) decode(payload []byte) (T, error) {
	var item T
	err := json.Unmarshal(payload, &item)
	return item, err
}

// list serves the collection: remote first, mirror when the backend is out
// of reach.
func (c *collection[T]) list(ctx context.Context, fetch func(ctx context.Context) ([]T, error)) ([]models.Listed[T], error) {
	items, err := query.Fetch(ctx, c.cache, c.name, func(ctx context.Context) ([]models.Listed[T], error) {
		remote, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.replaceSynced(ctx, remote); err != nil {
			return nil, err
		}
		return c.fromMirror(ctx)
	})
	if err == nil {
		return items, nil
	}
	if !client.IsFallbackEligible(err) {
		return nil, err
	}
	c.logger.Warn(ctx, "backend unavailable, serving local copy", "collection", c.name, "err", err)
	return c.fromMirror(ctx)
}

func (c *collection[T]) replaceSynced(ctx context.Context, items []T) error {
	recs := make([]mirror.Record, 0, len(items))
	for _, it := range items {
		payload, err := c.encode(it)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.name, err)
		}
		recs = append(recs, mirror.Record{ID: it.RecordID().String(), Payload: payload})
	}
	return c.mirror.ReplaceSynced(ctx, c.name, recs)
}

// fromMirror returns the mirrored records, pending deletes excluded.
func (c *collection[T]) fromMirror(ctx context.Context) ([]models.Listed[T], error) {
	recs, err := c.mirror.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]models.Listed[T], 0, len(recs))
	for _, r := range recs {
		if r.Pending() && r.Op == mirror.OpDelete {
			continue
		}
		item, err := c.decode(r.Payload)
		if err != nil {
			c.logger.Warn(ctx, "skipping undecodable mirror record", "collection", c.name, "id", r.ID, "err", err)
			continue
		}
		out = append(out, models.Listed[T]{Item: item, Pending: r.Pending()})
	}
	return out, nil
}

// overlay applies the pending changes of c on top of items read through
// another key.
func (c *collection[T]) overlay(ctx context.Context, items []models.Listed[T]) ([]models.Listed[T], error) {
	recs, err := c.mirror.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(items)
	for _, r := range recs {
		if !r.Pending() {
			continue
		}
		idx := slices.IndexFunc(out, func(l models.Listed[T]) bool { return l.Item.RecordID().String() == r.ID })
		if r.Op == mirror.OpDelete {
			if idx >= 0 {
				out = slices.Delete(out, idx, idx+1)
			}
			continue
		}
		item, err := c.decode(r.Payload)
		if err != nil {
			c.logger.Warn(ctx, "skipping undecodable mirror record", "collection", c.name, "id", r.ID, "err", err)
			continue
		}
		entry := models.Listed[T]{Item: item, Pending: true}
		if idx >= 0 {
			out[idx] = entry
		} else {
			out = append(out, entry)
		}
	}
	return out, nil
}

// get returns the mirrored copy of id.
func (c *collection[T]) get(ctx context.Context, id models.ID) (T, error) {
	var zero T
	rec, err := c.mirror.Get(ctx, c.name, id.String())
	if err != nil {
		if errors.Is(err, mirror.ErrNotFound) {
			return zero, fmt.Errorf("%s %s: %w", strings.ToLower(c.noun), id, common.ErrorNotFound)
		}
		return zero, err
	}
	if rec.Pending() && rec.Op == mirror.OpDelete {
		return zero, fmt.Errorf("%s %s: %w", strings.ToLower(c.noun), id, common.ErrorNotFound)
	}
	return c.decode(rec.Payload)
}

func newLocalID() models.ID {
	return models.ID(models.LocalPrefix + uuid.NewString())
}

var verbs = map[mirror.Op][2]string{
	mirror.OpCreate: {"add", "added"},
	mirror.OpUpdate: {"update", "updated"},
	mirror.OpDelete: {"delete", "deleted"},
}

// apply runs one mutation: remote first, mirror as pending when the
// backend cannot be reached.
func (c *collection[T]) apply(ctx context.Context, op mirror.Op, item T, remote func(ctx context.Context) (*T, error)) models.MutationResult[T] {
	verb := verbs[op]

	confirmed, err := remote(ctx)
	if err == nil {
		result := item
		if confirmed != nil {
			result = *confirmed
		}
		if err := c.storeConfirmed(ctx, op, item, result); err != nil {
			c.logger.Warn(ctx, "could not update local copy", "collection", c.name, "err", err)
		}
		c.invalidate()
		return models.MutationResult[T]{
			Outcome: models.Confirmed,
			Item:    result,
			Message: fmt.Sprintf("%s %s successfully", c.noun, verb[1]),
		}
	}

	if !c.fallbackAllowed(op, item, err) {
		return failed(item, fmt.Sprintf("Failed to %s %s", verb[0], strings.ToLower(c.noun)), err)
	}

	if op == mirror.OpCreate && item.RecordID() == "" {
		item = item.WithID(newLocalID())
	}
	payload, perr := c.encode(item)
	if perr == nil {
		perr = c.mirror.MarkPending(ctx, mirror.Record{
			Collection: c.name,
			ID:         item.RecordID().String(),
			Payload:    payload,
		}, op)
	}
	if perr != nil {
		return failed(item, fmt.Sprintf("Failed to %s %s", verb[0], strings.ToLower(c.noun)), errors.Join(err, perr))
	}

	c.logger.Info(ctx, "change kept locally", "collection", c.name, "op", op, "id", item.RecordID(), "cause", err)
	c.invalidate()
	return models.MutationResult[T]{
		Outcome: models.AppliedLocally,
		Item:    item,
		Message: fmt.Sprintf("%s %s locally (pending sync)", c.noun, verb[1]),
	}
}

// fallbackAllowed narrows IsFallbackEligible for calls on a single record:
// a 404 there means the record is gone unless it never reached the server.
func (c *collection[T]) fallbackAllowed(op mirror.Op, item T, err error) bool {
	if !client.IsFallbackEligible(err) {
		return false
	}
	if op == mirror.OpCreate || c.transient || !errors.Is(err, client.ErrNotFound) {
		return true
	}
	return item.RecordID().IsLocal()
}

func (c *collection[T]) storeConfirmed(ctx context.Context, op mirror.Op, sent, confirmed T) error {
	if op == mirror.OpDelete || c.transient {
		return c.mirror.Remove(ctx, c.name, sent.RecordID().String())
	}
	if confirmed.RecordID() == "" {
		return nil
	}
	payload, err := c.encode(confirmed)
	if err != nil {
		return err
	}
	return c.mirror.PutSynced(ctx, mirror.Record{Collection: c.name, ID: confirmed.RecordID().String(), Payload: payload})
}

func failed[T any](item T, prefix string, err error) models.MutationResult[T] {
	return models.MutationResult[T]{
		Outcome: models.Failed,
		Item:    item,
		Message: prefix + ": " + describe(err),
		Err:     err,
	}
}

// rejected reports a change refused before any request was made.
func rejected[T any](item T, err error) models.MutationResult[T] {
	return models.MutationResult[T]{
		Outcome: models.Failed,
		Item:    item,
		Message: describe(err),
		Err:     err,
	}
}

// describe turns an error into a message for the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, client.ErrForbidden):
		return "You do not have permission to perform this action"
	case errors.Is(err, common.ErrorNotAuthenticated), errors.Is(err, client.ErrUnauthorized):
		return "Please log in again"
	case errors.Is(err, validate.ErrInvalid):
		return err.Error()
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		return apiErr.Error()
	}
	return err.Error()
}

var (
	errNotReplayable = errors.New("operation cannot be replayed")
	// errRecordGone marks a change to a record the server no longer has.
	errRecordGone = errors.New("record no longer exists on the server")
)

// replay pushes one pending record to the backend and, on success, swaps it
// for the confirmed copy. Server ids assigned to offline creates are added
// to ids.
func (c *collection[T]) replay(ctx context.Context, rec mirror.Record, ids map[models.ID]models.ID) error {
	item, err := c.decode(rec.Payload)
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", c.name, rec.ID, err)
	}
	if c.remap != nil {
		item = c.remap(item, ids)
	}

	switch rec.Op {
	case mirror.OpDelete:
		if c.remote.delete == nil {
			return errNotReplayable
		}
		if err := c.remote.delete(ctx, item); err != nil {
			return c.dropGone(ctx, rec, err)
		}
		return c.mirror.Remove(ctx, c.name, rec.ID)

	case mirror.OpCreate, mirror.OpUpdate:
		call := c.remote.update
		sent := item
		if rec.Op == mirror.OpCreate {
			call = c.remote.create
			if item.RecordID().IsLocal() {
				sent = item.WithID("")
			}
		}
		if call == nil {
			return errNotReplayable
		}
		confirmed, err := call(ctx, sent)
		if err != nil {
			if rec.Op == mirror.OpUpdate {
				return c.dropGone(ctx, rec, err)
			}
			return err
		}
		result := item
		if confirmed != nil && (*confirmed).RecordID() != "" {
			result = *confirmed
		}
		if result.RecordID() != models.ID(rec.ID) {
			ids[models.ID(rec.ID)] = result.RecordID()
		}
		if c.transient {
			return c.mirror.Remove(ctx, c.name, rec.ID)
		}
		payload, err := c.encode(result)
		if err != nil {
			return err
		}
		return c.mirror.Confirm(ctx, rec.ID, mirror.Record{
			Collection: c.name,
			ID:         result.RecordID().String(),
			Payload:    payload,
		})
	}
	return errNotReplayable
}

// dropGone discards a pending change the server answered with 404 for.
// Other errors are returned as they are.
func (c *collection[T]) dropGone(ctx context.Context, rec mirror.Record, err error) error {
	if !errors.Is(err, client.ErrNotFound) {
		return err
	}
	if rerr := c.mirror.Remove(ctx, c.name, rec.ID); rerr != nil {
		return errors.Join(err, rerr)
	}
	return fmt.Errorf("%w: %w", errRecordGone, err)
}

func (c *collection[T]) collectionName() string { return c.name }
