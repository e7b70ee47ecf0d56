// Package handlers turns HTTP requests into service calls.
//
// Handlers stay thin: decode the request, call one service method, write
// the envelope. Business rules live in services.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/pkg/i18n"
	"github.com/akinalp/forum/pkg/ratelimit"
	"github.com/akinalp/forum/services"
)

type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.Limiter
}

// NewAuthHandler: a nil loginLimiter disables login rate limiting.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
	}
}

// Register godoc
// POST /api/auth/register
// Body carries the captcha id and answer from GET /api/captcha.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, i18n.FromRequest(r).T("common.invalidBody"))
		return
	}

	tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		loc := i18n.FromRequest(r)
		switch {
		case errors.Is(err, services.ErrCaptchaFailed):
			pkg.ErrorWithMessage(w, http.StatusBadRequest, loc.T("auth.captchaFailed"))
		case errors.Is(err, pkg.ErrAlreadyExists):
			pkg.ErrorWithMessage(w, http.StatusConflict, loc.T("auth.usernameTaken"))
		default:
			pkg.Error(w, err)
		}
		return
	}

	pkg.JSON(w, http.StatusCreated, tokens)
}

// Login godoc
// POST /api/auth/login
//
// Attempts are limited per client IP. A successful login clears the
// counter so a member who mistyped once is not locked out later.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromRequest(r)

	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests, loc.TWithParams("auth.tooManyAttempts",
			map[string]string{"wait": ratelimit.FormatRetryMessage(retryAfter)}))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, loc.T("common.invalidBody"))
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, pkg.ErrUnauthorized) {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, loc.T("auth.invalidCredentials"))
			return
		}
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, tokens)
}

// Me godoc
// GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, i18n.FromRequest(r).T("auth.unauthorized"))
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}
