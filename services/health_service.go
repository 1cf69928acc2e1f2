package services

import (
	"context"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pinger is satisfied by every feedback store.
type Pinger interface {
	Ping(ctx context.Context) error
}

const storePingAttempts = 3

type HealthService struct {
	store       Pinger
	redisClient redis.UniversalClient
	version     string
	startTime   time.Time
	retryDelay  time.Duration
	log         *zap.SugaredLogger
}

// NewHealthService checks the feedback store and, when configured, Redis.
// redisClient may be nil.
func NewHealthService(store Pinger, redisClient redis.UniversalClient, version string) *HealthService {
	return &HealthService{
		store:       store,
		redisClient: redisClient,
		version:     version,
		startTime:   time.Now(),
		retryDelay:  100 * time.Millisecond,
		log:         logger.GetLogger(),
	}
}

// CheckHealth reports DOWN when the store is unreachable. Redis only carries
// events and rate limits, so losing it degrades the service.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)
	overallStatus := types.HealthStatusUp

	storeStatus := h.checkStore(ctx)
	components["store"] = storeStatus
	if storeStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	}

	if h.redisClient != nil {
		redisStatus := h.checkRedis(ctx)
		components["redis"] = redisStatus
		if redisStatus.Status != types.HealthStatusUp && overallStatus == types.HealthStatusUp {
			overallStatus = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkStore(ctx context.Context) types.HealthComponent {
	var err error
	for attempt := 1; attempt <= storePingAttempts; attempt++ {
		if err = h.store.Ping(ctx); err == nil {
			if attempt > 1 {
				return types.HealthComponent{
					Status:  types.HealthStatusDegraded,
					Details: "Store responded after retry",
				}
			}
			return types.HealthComponent{Status: types.HealthStatusUp}
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < storePingAttempts && h.retryDelay > 0 {
			time.Sleep(h.retryDelay)
		}
	}

	h.log.Errorw("Store health check failed", "error", err)
	return types.HealthComponent{
		Status:  types.HealthStatusDown,
		Details: "Store connection failed",
	}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
