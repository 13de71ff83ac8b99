package facilityRepo

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"frontline/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const facilitySearchPrefix = "facility:search:"

// cachedFacilityRepo wraps a FacilityRepository with a Redis read-through
// cache for department searches. Entries expire so out-of-band reimports
// of the facility table eventually show up.
type cachedFacilityRepo struct {
	inner FacilityRepository
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedFacilityRepo wraps repo with a Redis cache for SearchByDepartment.
func NewCachedFacilityRepo(inner FacilityRepository, cache *redis.Client, ttl time.Duration) FacilityRepository {
	return &cachedFacilityRepo{inner: inner, cache: cache, ttl: ttl}
}

func (r *cachedFacilityRepo) SearchByDepartment(ctx context.Context, query string) ([]models.Facility, error) {
	key := facilitySearchPrefix + strings.ToLower(query)

	if data, err := r.cache.Get(ctx, key).Result(); err == nil {
		var facilities []models.Facility
		if err := json.Unmarshal([]byte(data), &facilities); err == nil {
			return facilities, nil
		}
	}

	facilities, err := r.inner.SearchByDepartment(ctx, query)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(facilities); err == nil {
		if err := r.cache.Set(ctx, key, b, r.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache facility search", zap.String("query", query), zap.Error(err))
		}
	}

	return facilities, nil
}

func (r *cachedFacilityRepo) GetByID(ctx context.Context, id int64) (*models.Facility, error) {
	return r.inner.GetByID(ctx, id)
}
