package http

import (
	"strings"
	"time"

	"firebase-kit/internal/auth/config"
	"firebase-kit/internal/auth/domain/model"
	"firebase-kit/internal/auth/usecase"
	"firebase-kit/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminClaim is the custom claim required by the user management routes
const AdminClaim = "admin"

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase *usecase.AuthUsecase
	cookie  *config.Config
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc *usecase.AuthUsecase, cfg *config.Config) *AuthHTTPHandler {
	return &AuthHTTPHandler{usecase: uc, cookie: cfg}
}

// RegisterRoutes mounts the auth routes. User management requires the admin
// claim; /me requires any authenticated caller.
func (h *AuthHTTPHandler) RegisterRoutes(router fiber.Router, middleware *AuthMiddleware) {
	router.Post("/sign-in", h.SignIn)
	router.Get("/action", h.ApplyActionCode)
	router.Post("/action", h.ApplyActionCode)
	router.Post("/links/verify-email", h.EmailVerificationLink)
	router.Post("/links/password-reset", h.PasswordResetLink)
	router.Post("/sessions", h.CreateSession)
	router.Delete("/sessions", h.ClearSession)
	router.Post("/sessions/verify", h.VerifySession)
	router.Post("/tokens/verify", h.VerifyIDToken)

	router.Get("/me", middleware.Protect(), h.GetCurrentUser)

	admin := middleware.RequireClaim(AdminClaim)
	router.Post("/tokens/custom", admin, h.CustomToken)
	router.Get("/users", admin, h.ListUsers)
	router.Post("/users", admin, h.CreateUser)
	router.Get("/users/:uid", admin, h.GetUser)
	router.Patch("/users/:uid", admin, h.UpdateUser)
	router.Delete("/users/:uid", admin, h.DeleteUser)
}

type emailRequest struct {
	Email string `json:"email"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionRequest struct {
	IDToken string `json:"idToken"`
	// ExpiresIn is in seconds; zero uses the configured session TTL
	ExpiresIn int `json:"expiresIn"`
}

type tokenRequest struct {
	IDToken       string `json:"idToken"`
	SessionCookie string `json:"sessionCookie"`
}

type customTokenRequest struct {
	UID    string                 `json:"uid"`
	Claims map[string]interface{} `json:"claims"`
}

type actionRequest struct {
	Mode        string `json:"mode" query:"mode"`
	OOBCode     string `json:"oobCode" query:"oobCode"`
	NewPassword string `json:"newPassword" query:"-"`
}

// SignIn checks an email and password on backends that support it
func (h *AuthHTTPHandler) SignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return utils.BadRequest(c, "Invalid request body")
	}
	return utils.Respond(c, h.usecase.SignIn(c.UserContext(), req.Email, req.Password), fiber.StatusOK)
}

// ApplyActionCode redeems an action link, read from the query on GET
func (h *AuthHTTPHandler) ApplyActionCode(c *fiber.Ctx) error {
	var req actionRequest
	var err error
	if c.Method() == fiber.MethodGet {
		err = c.QueryParser(&req)
	} else {
		err = c.BodyParser(&req)
	}
	if err != nil || req.Mode == "" || req.OOBCode == "" {
		return utils.BadRequest(c, "mode and oobCode are required")
	}
	return utils.Respond(c, h.usecase.ApplyActionCode(c.UserContext(), req.Mode, req.OOBCode, req.NewPassword), fiber.StatusOK)
}

// EmailVerificationLink generates a verification link for an email
func (h *AuthHTTPHandler) EmailVerificationLink(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return utils.BadRequest(c, "email is required")
	}
	return utils.Respond(c, h.usecase.EmailVerificationLink(c.UserContext(), req.Email), fiber.StatusOK)
}

// PasswordResetLink generates a password reset link for an email
func (h *AuthHTTPHandler) PasswordResetLink(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return utils.BadRequest(c, "email is required")
	}
	return utils.Respond(c, h.usecase.PasswordResetLink(c.UserContext(), req.Email), fiber.StatusOK)
}

// CreateSession exchanges an id token for a session cookie and sets it
func (h *AuthHTTPHandler) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil || req.IDToken == "" || req.ExpiresIn < 0 {
		return utils.BadRequest(c, "idToken is required")
	}

	expiresIn := time.Duration(req.ExpiresIn) * time.Second
	if expiresIn == 0 {
		expiresIn = h.cookie.SessionTTL
	}
	out := h.usecase.CreateSessionCookie(c.UserContext(), req.IDToken, expiresIn)
	if out.OK {
		h.setCookie(c, out.Payload, expiresIn)
	}
	return utils.Respond(c, out, fiber.StatusOK)
}

// ClearSession removes the session cookie
func (h *AuthHTTPHandler) ClearSession(c *fiber.Ctx) error {
	h.clearCookie(c)
	return c.JSON([2]any{true, nil})
}

// VerifySession verifies the session cookie from the body or the request cookie
func (h *AuthHTTPHandler) VerifySession(c *fiber.Ctx) error {
	var req tokenRequest
	_ = c.BodyParser(&req)
	cookie := req.SessionCookie
	if cookie == "" {
		cookie = c.Cookies(h.cookie.CookieName)
	}
	if cookie == "" {
		return utils.BadRequest(c, "sessionCookie is required")
	}
	return utils.Respond(c, h.usecase.VerifySessionCookie(c.UserContext(), cookie), fiber.StatusOK)
}

// VerifyIDToken verifies an id token from the body or the bearer header
func (h *AuthHTTPHandler) VerifyIDToken(c *fiber.Ctx) error {
	var req tokenRequest
	_ = c.BodyParser(&req)
	token := req.IDToken
	if token == "" {
		token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	if token == "" {
		return utils.BadRequest(c, "idToken is required")
	}
	return utils.Respond(c, h.usecase.VerifyIDToken(c.UserContext(), token), fiber.StatusOK)
}

// GetCurrentUser returns the authenticated caller's account
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	uid, ok := GetUserID(c)
	if !ok {
		return unauthorized(c)
	}
	return utils.Respond(c, h.usecase.GetUser(c.UserContext(), uid), fiber.StatusOK)
}

// CustomToken mints a custom token for a uid
func (h *AuthHTTPHandler) CustomToken(c *fiber.Ctx) error {
	var req customTokenRequest
	if err := c.BodyParser(&req); err != nil || req.UID == "" {
		return utils.BadRequest(c, "uid is required")
	}
	return utils.Respond(c, h.usecase.CustomToken(c.UserContext(), req.UID, req.Claims), fiber.StatusOK)
}

// ListUsers pages through users, or looks one up by ?email=
func (h *AuthHTTPHandler) ListUsers(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		return utils.Respond(c, h.usecase.GetUserByEmail(c.UserContext(), email), fiber.StatusOK)
	}
	pageSize := c.QueryInt("pageSize", 0)
	if pageSize < 0 {
		return utils.BadRequest(c, "pageSize must not be negative")
	}
	return utils.Respond(c, h.usecase.ListUsers(c.UserContext(), pageSize, c.Query("pageToken")), fiber.StatusOK)
}

// CreateUser creates an account
func (h *AuthHTTPHandler) CreateUser(c *fiber.Ctx) error {
	var req model.UserToCreate
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	return utils.Respond(c, h.usecase.CreateUser(c.UserContext(), &req), fiber.StatusCreated)
}

// GetUser returns one account
func (h *AuthHTTPHandler) GetUser(c *fiber.Ctx) error {
	return utils.Respond(c, h.usecase.GetUser(c.UserContext(), c.Params("uid")), fiber.StatusOK)
}

// UpdateUser changes the attributes present in the body
func (h *AuthHTTPHandler) UpdateUser(c *fiber.Ctx) error {
	var req model.UserToUpdate
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	return utils.Respond(c, h.usecase.UpdateUser(c.UserContext(), c.Params("uid"), &req), fiber.StatusOK)
}

// DeleteUser removes an account
func (h *AuthHTTPHandler) DeleteUser(c *fiber.Ctx) error {
	return utils.Respond(c, h.usecase.DeleteUser(c.UserContext(), c.Params("uid")), fiber.StatusOK)
}

// Helper methods

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    value,
		Path:     h.cookie.CookiePath,
		Domain:   h.cookie.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   h.cookie.CookieSecure,
		HTTPOnly: h.cookie.CookieHTTPOnly,
		SameSite: h.cookie.CookieSameSite,
		Expires:  time.Now().Add(ttl),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     h.cookie.CookiePath,
		Domain:   h.cookie.CookieDomain,
		MaxAge:   -1,
		Secure:   h.cookie.CookieSecure,
		HTTPOnly: h.cookie.CookieHTTPOnly,
		SameSite: h.cookie.CookieSameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
