package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"supplyfin/internal/domain/calendar"
	"supplyfin/pkg/logger"
)

const (
	freeDaysKey     = "supplyfin:free_days:active"
	defaultFreeDTTL = 10 * time.Minute
)

// FreeDays caches the active holiday list, which every planned-date check
// reads. Writes go to the wrapped repository and drop the cached list.
// Redis failures degrade to direct repository reads.
type FreeDays struct {
	calendar.FreeDayRepository

	client redis.Cmdable
	ttl    time.Duration
}

var _ calendar.FreeDayRepository = (*FreeDays)(nil)

// NewFreeDays wraps repo. A zero ttl uses ten minutes.
func NewFreeDays(repo calendar.FreeDayRepository, client redis.Cmdable, ttl time.Duration) *FreeDays {
	if ttl <= 0 {
		ttl = defaultFreeDTTL
	}
	return &FreeDays{FreeDayRepository: repo, client: client, ttl: ttl}
}

func (c *FreeDays) ListActive(ctx context.Context) ([]*calendar.FreeDay, error) {
	data, err := c.client.Get(ctx, freeDaysKey).Bytes()
	switch {
	case err == nil:
		var days []*calendar.FreeDay
		if err := json.Unmarshal(data, &days); err == nil {
			return days, nil
		}
		logger.Warn(ctx, "corrupted free days cache entry")
		c.invalidate(ctx)
	case !errors.Is(err, redis.Nil):
		logger.Warn(ctx, "free days cache read failed", "error", err)
	}

	days, err := c.FreeDayRepository.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(days); err == nil {
		if err := c.client.Set(ctx, freeDaysKey, data, c.ttl).Err(); err != nil {
			logger.Warn(ctx, "free days cache write failed", "error", err)
		}
	}
	return days, nil
}

func (c *FreeDays) Create(ctx context.Context, day *calendar.FreeDay) error {
	if err := c.FreeDayRepository.Create(ctx, day); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *FreeDays) Update(ctx context.Context, day *calendar.FreeDay) error {
	if err := c.FreeDayRepository.Update(ctx, day); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *FreeDays) invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, freeDaysKey).Err(); err != nil {
		logger.Warn(ctx, "free days cache invalidation failed", "error", err)
	}
}
