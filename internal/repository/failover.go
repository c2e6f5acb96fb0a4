package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"spotbook/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSessionStore prefers the primary store and falls back to the
// secondary when the primary errors, retrying the primary after a cooldown.
// A session miss is not a failure and never triggers failover.
type FailoverSessionStore struct {
	primary   domain.SessionStore
	fallback  domain.SessionStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const failoverRetryAfter = time.Minute

func NewFailoverSessionStore(primary, fallback domain.SessionStore, logger *zerolog.Logger) *FailoverSessionStore {
	return &FailoverSessionStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary session store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverSessionStore) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > failoverRetryAfter
}

func (r *FailoverSessionStore) Resolve(ctx context.Context, token string) (int64, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		userID, err := r.primary.Resolve(ctx, token)
		if err == nil || errors.Is(err, ErrSessionNotFound) {
			r.isDown.Store(false)
			return userID, err
		}
		r.markDown(err)
	}
	return r.fallback.Resolve(ctx, token)
}

func (r *FailoverSessionStore) Put(ctx context.Context, token string, userID int64) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.Put(ctx, token, userID)
		if err == nil {
			r.isDown.Store(false)
			// Mirror into the fallback so an outage mid-session still resolves.
			_ = r.fallback.Put(ctx, token, userID)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Put(ctx, token, userID)
}

func (r *FailoverSessionStore) Delete(ctx context.Context, token string) error {
	_ = r.fallback.Delete(ctx, token)
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		err := r.primary.Delete(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return nil
}
