package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/cache"
	"go.uber.org/zap"
)

const userCacheTTL = 15 * time.Minute

// cachedUserRepository is a read-through cache decorator over a
// UserRepository. Cache failures never fail the underlying operation; the
// database stays authoritative.
type cachedUserRepository struct {
	inner  UserRepository
	cache  *cache.Client
	logger *zap.Logger
}

// NewCachedUserRepository wraps a user repository with Redis-backed
// read-through caching on the ID and email lookup paths.
func NewCachedUserRepository(inner UserRepository, c *cache.Client, logger *zap.Logger) UserRepository {
	return &cachedUserRepository{inner: inner, cache: c, logger: logger}
}

func userIDKey(id uint) string {
	return fmt.Sprintf("user:id:%d", id)
}

func userEmailKey(email string) string {
	return "user:email:" + models.NormalizeEmail(email)
}

func (r *cachedUserRepository) Create(user *models.User) error {
	if err := r.inner.Create(user); err != nil {
		return err
	}
	r.invalidate(user)
	return nil
}

func (r *cachedUserRepository) GetByID(id uint) (*models.User, error) {
	ctx := context.Background()

	var cached models.User
	if err := r.cache.GetJSON(ctx, userIDKey(id), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("user cache read failed", zap.Uint("user_id", id), zap.Error(err))
	}

	user, err := r.inner.GetByID(id)
	if err != nil {
		return nil, err
	}
	r.store(user)
	return user, nil
}

func (r *cachedUserRepository) GetByEmail(email string) (*models.User, error) {
	ctx := context.Background()

	var cached models.User
	if err := r.cache.GetJSON(ctx, userEmailKey(email), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("user cache read failed", zap.String("key", userEmailKey(email)), zap.Error(err))
	}

	user, err := r.inner.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	r.store(user)
	return user, nil
}

func (r *cachedUserRepository) GetByResetToken(token string) (*models.User, error) {
	// Token lookups are rare and short-lived, not worth caching.
	return r.inner.GetByResetToken(token)
}

func (r *cachedUserRepository) GetOrCreateByEmail(user *models.User) (*models.User, bool, error) {
	stored, created, err := r.inner.GetOrCreateByEmail(user)
	if err != nil {
		return nil, false, err
	}
	r.store(stored)
	return stored, created, nil
}

func (r *cachedUserRepository) Update(user *models.User) error {
	if err := r.inner.Update(user); err != nil {
		return err
	}
	r.invalidate(user)
	return nil
}

func (r *cachedUserRepository) List(offset, limit int) ([]models.User, error) {
	return r.inner.List(offset, limit)
}

func (r *cachedUserRepository) Count() (int64, error) {
	return r.inner.Count()
}

func (r *cachedUserRepository) store(user *models.User) {
	ctx := context.Background()
	if err := r.cache.SetJSON(ctx, userIDKey(user.ID), user, userCacheTTL); err != nil {
		r.logger.Warn("user cache write failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	if err := r.cache.SetJSON(ctx, userEmailKey(user.Email), user, userCacheTTL); err != nil {
		r.logger.Warn("user cache write failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (r *cachedUserRepository) invalidate(user *models.User) {
	ctx := context.Background()
	if err := r.cache.Delete(ctx, userIDKey(user.ID), userEmailKey(user.Email)); err != nil {
		r.logger.Warn("user cache invalidation failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
