// Package journal persists the ledger event stream. The journal is
// append-only: it is written exactly once per committed ledger mutation and
// is the only place where per-post history (including comments) can be
// queried — the ledger itself deliberately keeps no such index. On boot the
// journal is replayed to rebuild ledger state.
package journal

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Store defines the interface for event journal operations
type Store interface {
	Append(ctx context.Context, ev *models.Event) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]models.Event, error)
	ListByPost(ctx context.Context, postID uint64, limit, offset int) ([]models.Event, error)
	ListByProposal(ctx context.Context, proposalID uint64, limit, offset int) ([]models.Event, error)
	ListByActor(ctx context.Context, actor string, limit, offset int) ([]models.Event, error)
	ListByKind(ctx context.Context, kind string, limit, offset int) ([]models.Event, error)
	ForEach(ctx context.Context, fn func(*models.Event) error) error
}

// gormStore implements Store
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a new event journal backed by the given database.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Append(ctx context.Context, ev *models.Event) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Event{}).Count(&n).Error
	return n, err
}

func (s *gormStore) List(ctx context.Context, limit, offset int) ([]models.Event, error) {
	return s.list(ctx, s.db.WithContext(ctx), limit, offset)
}

func (s *gormStore) ListByPost(ctx context.Context, postID uint64, limit, offset int) ([]models.Event, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("post_id = ?", postID), limit, offset)
}

func (s *gormStore) ListByProposal(ctx context.Context, proposalID uint64, limit, offset int) ([]models.Event, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("proposal_id = ?", proposalID), limit, offset)
}

func (s *gormStore) ListByActor(ctx context.Context, actor string, limit, offset int) ([]models.Event, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("actor = ?", actor), limit, offset)
}

func (s *gormStore) ListByKind(ctx context.Context, kind string, limit, offset int) ([]models.Event, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("kind = ?", kind), limit, offset)
}

func (s *gormStore) list(_ context.Context, tx *gorm.DB, limit, offset int) ([]models.Event, error) {
	var events []models.Event
	err := tx.Order("seq ASC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ForEach streams every event in sequence order. Used for replay; events are
// fetched in batches so an arbitrarily long journal does not need to fit in
// memory at once.
func (s *gormStore) ForEach(ctx context.Context, fn func(*models.Event) error) error {
	const batchSize = 500

	lastSeq := uint64(0)
	for {
		var batch []models.Event
		err := s.db.WithContext(ctx).
			Where("seq > ?", lastSeq).
			Order("seq ASC").
			Limit(batchSize).
			Find(&batch).Error
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
		}
		lastSeq = batch[len(batch)-1].Seq
	}
}
