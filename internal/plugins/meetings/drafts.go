package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// draftKeyPrefix is the Redis key prefix for creation drafts.
const draftKeyPrefix = "meetingbrew:draft:"

// maxUpdateAttempts bounds how often Update retries after losing a race
// with another write to the same draft.
const maxUpdateAttempts = 32

// errDraftContended is returned when Update keeps losing races.
var errDraftContended = errors.New("draft is being modified too often")

// DraftStore persists creation drafts between requests.
type DraftStore interface {
	// Get returns the draft, or nil if it never existed or has expired.
	Get(ctx context.Context, id string) (*Draft, error)
	// Save writes the draft and restarts its expiry.
	Save(ctx context.Context, d *Draft) error
	// Update loads the draft, applies fn and writes the result back,
	// atomically with respect to other writers: when the draft changes in
	// between, the load and fn are repeated on the new version. A missing
	// draft returns nil without calling fn. Nothing is written if fn fails.
	Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

// redisDraftStore keeps drafts as JSON strings with a sliding TTL.
type redisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftStore creates a Redis-backed DraftStore.
func NewDraftStore(rdb *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{rdb: rdb, ttl: ttl}
}

func (s *redisDraftStore) Get(ctx context.Context, id string) (*Draft, error) {
	return s.load(ctx, s.rdb, id)
}

func (s *redisDraftStore) Save(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKeyPrefix+d.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

func (s *redisDraftStore) Update(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	key := draftKeyPrefix + id

	var result *Draft
	txf := func(tx *redis.Tx) error {
		d, err := s.load(ctx, tx, id)
		if err != nil || d == nil {
			result = nil
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding draft: %w", err)
		}

		// EXEC fails with TxFailedErr if the key changed since WATCH.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		result = d
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("updating draft %s: %w", id, errDraftContended)
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load reads a draft through r, so Update can read inside its WATCH.
func (s *redisDraftStore) load(ctx context.Context, r stringGetter, id string) (*Draft, error) {
	data, err := r.Get(ctx, draftKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding draft %s: %w", id, err)
	}
	return &d, nil
}

func (s *redisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}
