package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"panchayat/internal/docstore"
	"panchayat/internal/models"
	"panchayat/internal/security"
)

// Record is a pointer to a reference-data document carrying server-owned metadata.
type Record[T any] interface {
	*T
	Metadata() *models.Meta
}

type objectHolder interface {
	ObjectKeys() []string
}

type CleanupQueue interface {
	EnqueueObjectCleanup(ctx context.Context, objectKey string) error
}

// ContentService manages one kind of reference data. Authorization happens before
// any of its methods are called.
type ContentService[T any, P Record[T]] struct {
	store   docstore.Store[T]
	cleanup CleanupQueue
	now     func() time.Time
	log     zerolog.Logger
}

func NewContentService[T any, P Record[T]](kind string, store docstore.Store[T], cleanup CleanupQueue, log zerolog.Logger) *ContentService[T, P] {
	return &ContentService[T, P]{
		store:   store,
		cleanup: cleanup,
		now:     time.Now,
		log:     log.With().Str("resource", kind).Logger(),
	}
}

func (s *ContentService[T, P]) List(ctx context.Context, filter docstore.Filter) ([]T, error) {
	return s.store.FindMany(ctx, filter, docstore.NewestFirst)
}

func (s *ContentService[T, P]) Get(ctx context.Context, key string) (T, error) {
	return s.store.FindByKey(ctx, key)
}

func (s *ContentService[T, P]) Create(ctx context.Context, actor security.Identity, doc T) (T, error) {
	P(&doc).Metadata().Stamp(actor.UserID, s.now().UTC(), nil)
	if err := s.store.Create(ctx, &doc); err != nil {
		var zero T
		return zero, err
	}
	return doc, nil
}

// Replace overwrites every client-owned field of the stored document with doc.
func (s *ContentService[T, P]) Replace(ctx context.Context, key string, doc T) (T, error) {
	var zero T
	prev, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return zero, err
	}

	meta := P(&prev).Metadata()
	P(&doc).Metadata().Stamp(meta.CreatedBy, s.now().UTC(), meta)
	if err := s.store.UpdateByKey(ctx, key, &doc); err != nil {
		return zero, err
	}
	s.cleanupReplaced(ctx, &prev, &doc)
	return doc, nil
}

func (s *ContentService[T, P]) Delete(ctx context.Context, key string) error {
	deleted, err := s.store.DeleteByKey(ctx, key)
	if err != nil {
		return err
	}
	if holder, ok := any(&deleted).(objectHolder); ok {
		s.enqueueCleanup(ctx, holder.ObjectKeys())
	}
	return nil
}

func (s *ContentService[T, P]) cleanupReplaced(ctx context.Context, prev, next *T) {
	before, ok := any(prev).(objectHolder)
	if !ok {
		return
	}
	kept := map[string]struct{}{}
	for _, key := range any(next).(objectHolder).ObjectKeys() {
		kept[key] = struct{}{}
	}

	var dropped []string
	for _, key := range before.ObjectKeys() {
		if _, ok := kept[key]; !ok {
			dropped = append(dropped, key)
		}
	}
	s.enqueueCleanup(ctx, dropped)
}

// enqueueCleanup is best effort: a failed enqueue leaves an orphaned object, never a
// failed request.
func (s *ContentService[T, P]) enqueueCleanup(ctx context.Context, keys []string) {
	if s.cleanup == nil {
		return
	}
	for _, key := range keys {
		if err := s.cleanup.EnqueueObjectCleanup(ctx, key); err != nil {
			s.log.Error().Err(err).Str("object_key", key).Msg("enqueue object cleanup failed")
		}
	}
}
