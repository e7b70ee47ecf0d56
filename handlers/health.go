package handlers

import (
	"net/http"

	"github.com/akinalp/forum/pkg"
)

// Health godoc
// GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
