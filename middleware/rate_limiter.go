package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimiter throttles the credential endpoints. Each client IP gets a token
// bucket refilled at perMinute requests per minute; entries idle for ten
// minutes are evicted so the map stays bounded.
func RateLimiter(perMinute int) fiber.Handler {
	type visitor struct {
		bucket   *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			mu.Lock()
			for ip, v := range visitors {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(visitors, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *fiber.Ctx) error {
		ip := c.IP()

		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{
				bucket: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
			}
			visitors[ip] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.bucket.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts. Please try again later.",
			})
		}

		return c.Next()
	}
}
