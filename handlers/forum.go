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
	"github.com/akinalp/forum/searchparams"
	"github.com/akinalp/forum/services"
)

type ForumHandler struct {
	forumService services.ForumService
	postLimiter  *ratelimit.PostLimiter
}

// NewForumHandler: a nil postLimiter disables the posting cooldown.
func NewForumHandler(forumService services.ForumService, postLimiter *ratelimit.PostLimiter) *ForumHandler {
	return &ForumHandler{forumService: forumService, postLimiter: postLimiter}
}

// TokenInfo describes a decoded search token.
type TokenInfo struct {
	Request searchparams.ForumSearch `json:"request"`
	View    searchparams.View        `json:"view"`
	Token   string                   `json:"token"`
}

// Search godoc
// GET /api/forum/search?ss=&ul=&uis=&pi=&bmid=&iot=&ioict=&iom=
// No parameters at all is the topic list under the forum root.
func (h *ForumHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := searchparams.DecodeForumValues(r.URL.Query())

	result, err := h.forumService.Search(r.Context(), req)
	if err != nil {
		writeSearchError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// News godoc
// GET /api/forum/news?pi=
func (h *ForumHandler) News(w http.ResponseWriter, r *http.Request) {
	page := searchparams.DefaultPageIndex
	if p := r.URL.Query().Get("pi"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			page = parsed
		}
	}

	result, err := h.forumService.News(r.Context(), page)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Token godoc
// GET /api/forum/token?t=<token>
// Decodes a token (a URL fragment works too) and returns the request it
// stands for with its canonical form.
func (h *ForumHandler) Token(w http.ResponseWriter, r *http.Request) {
	req := searchparams.DecodeForum(r.URL.Query().Get("t"))
	if err := req.Validate(); err != nil {
		writeSearchError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, TokenInfo{
		Request: req,
		View:    req.View(),
		Token:   req.Token(),
	})
}

// GetMessage godoc
// GET /api/forum/messages/{id}
func (h *ForumHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	msg, err := h.forumService.GetMessage(r.Context(), id)
	if err != nil {
		h.writeMessageError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, msg)
}

// Post godoc
// POST /api/forum/messages
// Body: { "parent_id": 0, "title": "...", "content": "..." }
// parent_id 0 starts a topic.
func (h *ForumHandler) Post(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, i18n.FromRequest(r).T("auth.unauthorized"))
		return
	}

	var req models.CreateForumMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, i18n.FromRequest(r).T("common.invalidBody"))
		return
	}

	if h.postLimiter != nil && !h.postLimiter.Allow(user.ID) {
		wait := h.postLimiter.CooldownSeconds(user.ID)
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests, i18n.FromRequest(r).TWithParams("forum.postTooFast",
			map[string]string{"wait": ratelimit.FormatRetryMessage(wait)}))
		return
	}

	msg, err := h.forumService.Post(r.Context(), user.ID, &req)
	if err != nil {
		h.writeMessageError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, msg)
}

// Approve godoc
// POST /api/forum/messages/{id}/approve
func (h *ForumHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, i18n.FromRequest(r).T("auth.unauthorized"))
		return
	}

	id, ok := messageID(w, r)
	if !ok {
		return
	}

	msg, err := h.forumService.Approve(r.Context(), user.ID, id)
	if err != nil {
		h.writeMessageError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, msg)
}

func (h *ForumHandler) writeMessageError(w http.ResponseWriter, r *http.Request, err error) {
	loc := i18n.FromRequest(r)
	switch {
	case errors.Is(err, pkg.ErrNotFound):
		pkg.ErrorWithMessage(w, http.StatusNotFound, loc.T("forum.messageNotFound"))
	case errors.Is(err, pkg.ErrForbidden):
		pkg.ErrorWithMessage(w, http.StatusForbidden, loc.T("forum.moderatorOnly"))
	default:
		pkg.Error(w, err)
	}
}

// messageID reads {id} from the path; on failure it has already written
// the response.
func messageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, i18n.FromRequest(r).T("forum.invalidMessageId"))
		return 0, false
	}
	return id, true
}
