package handlers

import (
	"net/http"
	"strconv"

	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/pkg/i18n"
	"github.com/akinalp/forum/pkg/ratelimit"
	"github.com/akinalp/forum/services"
)

type CaptchaHandler struct {
	captchaService services.CaptchaService
	limiter        *ratelimit.Limiter
}

// NewCaptchaHandler: limiter caps challenges per IP so the answer store
// cannot be flooded. nil disables the cap.
func NewCaptchaHandler(captchaService services.CaptchaService, limiter *ratelimit.Limiter) *CaptchaHandler {
	return &CaptchaHandler{captchaService: captchaService, limiter: limiter}
}

// Generate godoc
// GET /api/captcha
// The question is rendered in the Accept-Language language.
func (h *CaptchaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	loc := i18n.FromRequest(r)

	ip := ratelimit.ExtractIP(r)
	if h.limiter != nil && !h.limiter.Allow(ip) {
		retryAfter := h.limiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests, loc.TWithParams("captcha.tooMany",
			map[string]string{"wait": ratelimit.FormatRetryMessage(retryAfter)}))
		return
	}

	pkg.JSON(w, http.StatusOK, h.captchaService.Generate(loc.Lang()))
}
