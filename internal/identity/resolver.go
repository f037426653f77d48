// Package identity maps external phone identifiers to internal user ids.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"io.winapps.microjournal/internal/faults"
	"io.winapps.microjournal/internal/store"
)

const (
	phoneCacheKeyPrefix = "phone_user:"
	phoneCacheTTL       = 24 * time.Hour
)

// NormalizePhone strips the channel scheme tag (e.g. "whatsapp:") and
// surrounding whitespace, leaving the canonical E.164-ish key used for
// storage and lookup. Normalizing twice is a no-op.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if i := strings.IndexByte(phone, ':'); i >= 0 {
		phone = phone[i+1:]
	}
	return strings.TrimSpace(phone)
}

// Resolver resolves phone numbers to user uids and back. A nil redis
// client disables caching.
type Resolver struct {
	mappings store.MappingStore
	redis    *redis.Client
	logger   *zap.SugaredLogger
}

func NewResolver(mappings store.MappingStore, redisClient *redis.Client, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{mappings: mappings, redis: redisClient, logger: logger}
}

// ResolveUser returns the uid mapped to the given phone identifier, or a
// not-found fault when the number is unmapped.
func (r *Resolver) ResolveUser(ctx context.Context, phone string) (string, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return "", faults.New(faults.KindValidation, "empty phone identifier")
	}

	if r.redis != nil {
		if uid, err := r.redis.Get(ctx, phoneCacheKeyPrefix+phone).Result(); err == nil && uid != "" {
			return uid, nil
		}
	}

	uid, err := r.mappings.UserForPhone(ctx, phone)
	if err != nil {
		return "", err
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, phoneCacheKeyPrefix+phone, uid, phoneCacheTTL).Err(); err != nil {
			r.logger.Warnw("failed to cache phone mapping", "phone", phone, "error", err)
		}
	}
	return uid, nil
}

// ResolvePhone returns the phone identifier mapped to the given uid.
func (r *Resolver) ResolvePhone(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", faults.New(faults.KindValidation, "empty user id")
	}
	return r.mappings.PhoneForUser(ctx, uid)
}

// Associate maps a phone identifier to a user. The mapping is keyed by
// phone number and last writer wins: re-associating a number that already
// belongs to another user silently takes it over, which is logged but not
// rejected.
func (r *Resolver) Associate(ctx context.Context, phone, uid string) error {
	phone = NormalizePhone(phone)
	if phone == "" || uid == "" {
		return faults.New(faults.KindValidation, "phone and user id are required")
	}

	prior, err := r.mappings.Upsert(ctx, phone, uid)
	if err != nil {
		return err
	}
	if prior != "" && prior != uid {
		r.logger.Warnw("phone number re-associated to a different user",
			"phone", phone, "previous_uid", prior, "new_uid", uid)
	}

	if r.redis != nil {
		if err := r.redis.Set(ctx, phoneCacheKeyPrefix+phone, uid, phoneCacheTTL).Err(); err != nil {
			r.logger.Warnw("failed to refresh phone mapping cache", "phone", phone, "error", err)
		}
	}
	return nil
}
