package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// RateLimitService throttles abuse-prone endpoints. Counters live in Redis
// with a fixed window per client key; generation endpoints get tight limits
// since every call costs gateway tokens.
type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	Description  string
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		"login": {
			EndpointType: "login",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			Description:  "Login attempts rate limit",
		},
		"register": {
			EndpointType: "register",
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			Description:  "Registration rate limit",
		},
		"guest_session": {
			EndpointType: "guest_session",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			Description:  "Guest session creation rate limit",
		},
		"mission_create": {
			EndpointType: "mission_create",
			MaxRequests:  10,
			WindowSize:   5 * time.Minute,
			Description:  "Mission generation rate limit",
		},
		"choice": {
			EndpointType: "choice",
			MaxRequests:  30,
			WindowSize:   1 * time.Minute,
			Description:  "Choice submission rate limit",
		},
		"custom_choice": {
			EndpointType: "custom_choice",
			MaxRequests:  10,
			WindowSize:   1 * time.Minute,
			Description:  "Custom choice rate limit",
		},
	}
}

func (svc *RateLimitService) config(endpointType string) *RateLimitConfig {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return svc.configs[endpointType]
}

// Middleware returns a fiber handler enforcing the named endpoint's limit.
// The client key is the player identity when present, the remote IP
// otherwise. An unknown endpoint type passes everything through.
func (svc *RateLimitService) Middleware(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg := svc.config(endpointType)
		if cfg == nil {
			return c.Next()
		}

		clientKey := c.Get(shared.PlayerHeader)
		if id, ok := c.Locals(shared.PlayerID).(string); ok && id != "" {
			clientKey = id
		}
		if clientKey == "" {
			clientKey = c.IP()
		}

		allowed, retryAfter, err := svc.allow(c.UserContext(), endpointType, clientKey, cfg)
		if err != nil {
			// Redis trouble must not take the game down
			log.WithError(err).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}
		if !allowed {
			c.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			return shared.NewAppError(fiber.StatusTooManyRequests, nil, "rate limit exceeded")
		}
		return c.Next()
	}
}

func (svc *RateLimitService) allow(ctx context.Context, endpointType, clientKey string, cfg *RateLimitConfig) (bool, time.Duration, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", endpointType, clientKey)

	count, err := svc.redisSvc.Increment(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, key, cfg.WindowSize); err != nil {
			return false, 0, err
		}
	}
	if count > int64(cfg.MaxRequests) {
		ttl, err := svc.redisSvc.TTL(ctx, key)
		if err != nil || ttl < 0 {
			ttl = cfg.WindowSize
		}
		return false, ttl, nil
	}
	return true, 0, nil
}
