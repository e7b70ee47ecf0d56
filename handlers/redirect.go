package handlers

import (
	"net/http"
	"strings"

	"github.com/akinalp/forum/searchparams"
)

// RedirectHandler turns bookmarkable query URLs into the client's
// fragment URLs, e.g. /forum?ss=go&pi=2 → <base>/#forum:ss=go&pi=2.
type RedirectHandler struct {
	baseURL string
}

func NewRedirectHandler(baseURL string) *RedirectHandler {
	return &RedirectHandler{baseURL: strings.TrimRight(baseURL, "/")}
}

// Forum godoc
// GET /forum?<forum params>
func (h *RedirectHandler) Forum(w http.ResponseWriter, r *http.Request) {
	req := searchparams.DecodeForumValues(r.URL.Query())
	h.redirect(w, r, "forum", req.Token())
}

// Users godoc
// GET /users?<user params>
func (h *RedirectHandler) Users(w http.ResponseWriter, r *http.Request) {
	req := searchparams.DecodeUserValues(r.URL.Query())
	h.redirect(w, r, "users", req.Token())
}

func (h *RedirectHandler) redirect(w http.ResponseWriter, r *http.Request, kind, token string) {
	target := h.baseURL + "/#" + kind
	if token != "" {
		target += ":" + token
	}
	http.Redirect(w, r, target, http.StatusFound)
}
