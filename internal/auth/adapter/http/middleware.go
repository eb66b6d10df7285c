package http

import (
	"context"
	"strings"
	"time"

	"firebase-kit/internal/auth/domain/model"
	"firebase-kit/internal/shared/outcome"
	"firebase-kit/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const tokenLocalsKey = "auth_token"

// TokenVerifier checks the credentials a request presents
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) outcome.Outcome[*model.Token]
	VerifySessionCookie(ctx context.Context, cookie string) outcome.Outcome[*model.Token]
}

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	verifier   TokenVerifier
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(verifier TokenVerifier, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:   verifier,
		cookieName: cookieName,
	}
}

// CORS middleware with security headers
func (m *AuthMiddleware) CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,X-Request-ID",
		AllowCredentials: allowOrigins != "*",
		MaxAge:           86400, // 24 hours
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter limits sign-in style endpoints per client address
func (m *AuthMiddleware) RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON([2]any{false, "rate limit exceeded"})
		},
	})
}

// Protect returns middleware that requires a valid id token or session cookie
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := m.authenticate(c)
		if !ok {
			return unauthorized(c)
		}
		m.attach(c, token)
		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid credential is present and
// continues anonymously otherwise.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := m.authenticate(c); ok {
			m.attach(c, token)
		}
		return c.Next()
	}
}

// RequireClaim returns middleware that requires claim to be true on the
// caller's token. It authenticates the request itself when Protect has not
// run yet.
func (m *AuthMiddleware) RequireClaim(claim string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := GetToken(c)
		if !ok {
			if token, ok = m.authenticate(c); !ok {
				return unauthorized(c)
			}
			m.attach(c, token)
		}

		if granted, _ := token.Claims[claim].(bool); !granted {
			return c.Status(fiber.StatusForbidden).JSON([2]any{false, "insufficient permissions"})
		}
		return c.Next()
	}
}

// authenticate prefers a bearer id token and falls back to the session cookie.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.Token, bool) {
	ctx := c.UserContext()

	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		out := m.verifier.VerifyIDToken(ctx, strings.TrimPrefix(header, "Bearer "))
		return out.Payload, out.OK
	}
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		out := m.verifier.VerifySessionCookie(ctx, cookie)
		return out.Payload, out.OK
	}
	return nil, false
}

func (m *AuthMiddleware) attach(c *fiber.Ctx, token *model.Token) {
	c.Locals(tokenLocalsKey, token)
	c.SetUserContext(utils.WithUserID(c.UserContext(), token.UID))
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON([2]any{false, "authentication required"})
}

// GetToken returns the verified token attached by the middleware
func GetToken(c *fiber.Ctx) (*model.Token, bool) {
	token, ok := c.Locals(tokenLocalsKey).(*model.Token)
	return token, ok && token != nil
}

// GetUserID returns the uid of the authenticated caller
func GetUserID(c *fiber.Ctx) (string, bool) {
	token, ok := GetToken(c)
	if !ok {
		return "", false
	}
	return token.UID, true
}

// IsAuthenticated reports whether the middleware attached a caller
func IsAuthenticated(c *fiber.Ctx) bool {
	_, ok := GetToken(c)
	return ok
}
