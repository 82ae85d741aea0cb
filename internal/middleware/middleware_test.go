package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, userID string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := domain.PlatePalClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func withUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

func TestVerifyToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", VerifyToken(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c) + "|" + c.Locals(EmailKey).(string))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", "u1", time.Hour), fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, "u1", -time.Minute), fiber.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, "u1", time.Hour), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "u1|u1@example.com", string(body))
			}
		})
	}
}

func TestRateLimiter_DailyAllowance(t *testing.T) {
	mr, client := newTestRedis(t)
	premium := map[string]bool{"pro": true}

	limiter := NewRateLimiter(client, RateLimitConfig{
		KeyPrefix:    "quota:analyses",
		FreeLimit:    2,
		PremiumLimit: 4,
	}, func(ctx context.Context, userID string) (bool, error) {
		return premium[userID], nil
	})
	limiter.now = func() time.Time { return time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC) }

	app := fiber.New()
	app.Post("/analyze/:user", func(c *fiber.Ctx) error {
		c.Locals(UserIDKey, c.Params("user"))
		return c.Next()
	}, limiter.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	do := func(user string) (int, string) {
		resp, err := app.Test(httptest.NewRequest("POST", "/analyze/"+user, nil))
		require.NoError(t, err)
		return resp.StatusCode, resp.Header.Get("X-RateLimit-Remaining")
	}

	status, remaining := do("free")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1", remaining)
	status, _ = do("free")
	assert.Equal(t, fiber.StatusOK, status)
	status, remaining = do("free")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "0", remaining)

	for i := 0; i < 4; i++ {
		status, _ = do("pro")
		assert.Equal(t, fiber.StatusOK, status)
	}
	status, _ = do("pro")
	assert.Equal(t, fiber.StatusTooManyRequests, status)

	assert.True(t, mr.Exists("quota:analyses:free:2025-06-02"))
	assert.Equal(t, 9*time.Hour, mr.TTL("quota:analyses:free:2025-06-02"))

	// the window rolls over at local midnight
	limiter.now = func() time.Time { return time.Date(2025, 6, 3, 0, 5, 0, 0, time.UTC) }
	status, _ = do("free")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 23*time.Hour+55*time.Minute, mr.TTL("quota:analyses:free:2025-06-03"))

	mr.FastForward(9 * time.Hour)
	assert.False(t, mr.Exists("quota:analyses:free:2025-06-02"))
	assert.True(t, mr.Exists("quota:analyses:free:2025-06-03"))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{KeyPrefix: "q", FreeLimit: 1, PremiumLimit: 1}, func(context.Context, string) (bool, error) {
		return false, errors.New("mongo down")
	})

	app := fiber.New()
	app.Post("/", withUser("u1"), limiter.Middleware(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	mr.Close()
	resp, err := app.Test(httptest.NewRequest("POST", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "rate limit check failed", resp.Header.Get("X-RateLimit-Error"))
}

func TestRateLimiter_RequiresUser(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := NewRateLimiter(client, RateLimitConfig{KeyPrefix: "q", FreeLimit: 1}, nil)

	app := fiber.New()
	app.Post("/", limiter.Middleware(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("POST", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestIdempotencyMiddleware(t *testing.T) {
	mr, client := newTestRedis(t)

	calls := 0
	app := fiber.New()
	app.Use(withUser("u1"), IdempotencyMiddleware(client, time.Hour))
	app.Post("/meals", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "call": calls})
	})

	post := func(correlationID string) (*httptestResponse, error) {
		req := httptest.NewRequest("POST", "/meals", strings.NewReader("{}"))
		if correlationID != "" {
			req.Header.Set("X-Correlation-ID", correlationID)
		}
		resp, err := app.Test(req)
		if err != nil {
			return nil, err
		}
		body, _ := io.ReadAll(resp.Body)
		return &httptestResponse{status: resp.StatusCode, body: string(body), replay: resp.Header.Get("X-Idempotent-Replay")}, nil
	}

	first, err := post("abc")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, first.status)

	require.Eventually(t, func() bool { return mr.Exists("idempotency:u1:abc") }, time.Second, 10*time.Millisecond)

	replay, err := post("abc")
	require.NoError(t, err)
	assert.Equal(t, "true", replay.replay)
	assert.JSONEq(t, first.body, replay.body)
	assert.Equal(t, 1, calls)

	_, err = post("")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

type httptestResponse struct {
	status int
	body   string
	replay string
}
