package middleware

import (
	"math"
	"strconv"

	"healthcore/internal/infrastructure/ratelimit"
	"healthcore/pkg/errors"

	"github.com/labstack/echo/v4"
)

// RateLimit throttles action per authenticated user, falling back to the
// client IP for anonymous routes.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, retryAfter := limiter.Allow(key, action)
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return errors.TooManyRequests("Rate limit exceeded. Please try again later.")
			}

			return next(c)
		}
	}
}
