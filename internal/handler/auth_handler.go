package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/service"
)

const refreshCookieName = "platepal-refresh-token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService    *service.AuthService
	tokenService   *service.TokenService
	profileService *service.ProfileService
	refreshExpiry  time.Duration
	secureCookies  bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *service.AuthService,
	tokenService *service.TokenService,
	profileService *service.ProfileService,
	refreshExpiry time.Duration,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		tokenService:   tokenService,
		profileService: profileService,
		refreshExpiry:  refreshExpiry,
		secureCookies:  secureCookies,
	}
}

// LoginOrRegister handles POST /v1/auth/login
func (h *AuthHandler) LoginOrRegister(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return fail(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	ctx := c.UserContext()
	resp, err := h.authService.LoginOrRegister(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, service.ErrEmailLinked) {
			return respondError(c, "Auth", err)
		}
		return fail(c, fiber.StatusUnauthorized, "invalid firebase token")
	}

	tokenPair, err := h.tokenService.GenerateTokenPair(ctx, resp.User, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return respondError(c, "Auth", err)
	}

	hasProfile := false
	if _, err := h.profileService.GetProfile(ctx, resp.User.ID); err == nil {
		hasProfile = true
	} else if !errors.Is(err, domain.ErrProfileRequired) {
		return respondError(c, "Auth", err)
	}

	h.setRefreshCookie(c, tokenPair.RefreshToken, time.Now().Add(h.refreshExpiry))

	message := "Welcome back!"
	if resp.IsNewUser {
		message = "Welcome! Your account has been created."
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"token":       tokenPair.AccessToken,
		"expires_in":  tokenPair.ExpiresIn,
		"is_new_user": resp.IsNewUser,
		"has_profile": hasProfile,
		"message":     message,
		"user": fiber.Map{
			"id":    resp.User.ID,
			"email": resp.User.Email,
			"name":  resp.User.Name,
		},
	})
}

// RefreshToken handles POST /v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		return fail(c, fiber.StatusUnauthorized, "no refresh token provided")
	}

	tokenPair, err := h.tokenService.RefreshAccessToken(c.UserContext(), refreshToken, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		h.clearRefreshCookie(c)
		return respondError(c, "Auth", err)
	}

	h.setRefreshCookie(c, tokenPair.RefreshToken, time.Now().Add(h.refreshExpiry))
	return c.JSON(fiber.Map{
		"success":    true,
		"token":      tokenPair.AccessToken,
		"expires_in": tokenPair.ExpiresIn,
	})
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := c.Cookies(refreshCookieName); refreshToken != "" {
		_ = h.tokenService.RevokeRefreshToken(c.UserContext(), refreshToken)
	}
	h.clearRefreshCookie(c)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	h.setRefreshCookie(c, "", time.Now().Add(-1*time.Hour))
}
