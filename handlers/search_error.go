package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/pkg/i18n"
	"github.com/akinalp/forum/searchparams"
)

// writeSearchError localizes an overlong query; anything else goes through
// pkg.Error.
func writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *searchparams.ValidationError
	if errors.As(err, &verr) {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, i18n.FromRequest(r).TWithParams("search.queryTooLong",
			map[string]string{"max": strconv.Itoa(verr.Limit)}))
		return
	}
	pkg.Error(w, err)
}
