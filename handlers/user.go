package handlers

import (
	"net/http"

	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/searchparams"
	"github.com/akinalp/forum/services"
)

type UserHandler struct {
	userSearchService services.UserSearchService
}

func NewUserHandler(userSearchService services.UserSearchService) *UserHandler {
	return &UserHandler{userSearchService: userSearchService}
}

// Search godoc
// GET /api/users/search?ss=&pi=&ion=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := searchparams.DecodeUserValues(r.URL.Query())

	result, err := h.userSearchService.Search(r.Context(), req)
	if err != nil {
		writeSearchError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Top10 godoc
// GET /api/users/top10?tc=posts|logins&sd=<days>
func (h *UserHandler) Top10(w http.ResponseWriter, r *http.Request) {
	req := searchparams.DecodeTop10Values(r.URL.Query())

	result, err := h.userSearchService.Top10(r.Context(), req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, result)
}
