package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/afinmh/TajweeDo/shared"
)

// Limiter counts a hit against key in a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int64
	WindowSize   time.Duration
	Description  string
}

var (
	// AnswerRateLimit caps answer submissions per user.
	AnswerRateLimit = RateLimitConfig{
		EndpointType: "answer_submit",
		MaxRequests:  60,
		WindowSize:   time.Minute,
		Description:  "Answer submission rate limit",
	}

	// ClaimRateLimit caps daily login claims per user.
	ClaimRateLimit = RateLimitConfig{
		EndpointType: "daily_login_claim",
		MaxRequests:  10,
		WindowSize:   time.Minute,
		Description:  "Daily login claim rate limit",
	}
)

// RateLimit keys on the authenticated user, or the client IP for anonymous calls.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, config RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := UserIDFrom(c)
		if identifier == "" {
			identifier = getClientIP(c)
		}
		key := fmt.Sprintf("ratelimit:%s:%s", config.EndpointType, identifier)

		allowed, remaining, err := limiter.Allow(c.UserContext(), key, config.MaxRequests, config.WindowSize)
		if err != nil {
			log.WithFields(log.Fields{
				"endpoint_type": config.EndpointType,
				"identifier":    identifier,
				"error":         err.Error(),
			}).Warn("Rate limit check failed")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(config.MaxRequests, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(config.WindowSize.Seconds())))
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.", shared.ErrorBody{
				Error:     "RATE_LIMITED",
				Retryable: true,
			})
		}

		return c.Next()
	}
}

func getClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.IP()
}
