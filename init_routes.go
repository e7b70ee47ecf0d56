package main

import (
	"net/http"

	"github.com/akinalp/forum/handlers"
	"github.com/akinalp/forum/middleware"
	"github.com/akinalp/forum/services"
	"github.com/akinalp/forum/static"
)

// initRoutes registers every endpoint. Literal paths must not be shadowed
// by wildcard ones; the 1.22 mux prefers the most specific pattern.
func initRoutes(mux *http.ServeMux, h *Handlers, authService services.AuthService) {
	authMw := middleware.NewAuthMiddleware(authService)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	authModerator := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(middleware.RequireModerator(handler))
	}

	mux.HandleFunc("GET /api/health", handlers.Health)

	// Auth
	mux.HandleFunc("GET /api/captcha", h.Captcha.Generate)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))

	// Forum
	mux.HandleFunc("GET /api/forum/search", h.Forum.Search)
	mux.HandleFunc("GET /api/forum/news", h.Forum.News)
	mux.HandleFunc("GET /api/forum/token", h.Forum.Token)
	mux.HandleFunc("GET /api/forum/messages/{id}", h.Forum.GetMessage)
	mux.Handle("POST /api/forum/messages", auth(h.Forum.Post))
	mux.Handle("POST /api/forum/messages/{id}/approve", authModerator(h.Forum.Approve))

	// Members
	mux.HandleFunc("GET /api/users/search", h.User.Search)
	mux.HandleFunc("GET /api/users/top10", h.User.Top10)

	// Bookmarkable links
	mux.HandleFunc("GET /forum", h.Redirect.Forum)
	mux.HandleFunc("GET /users", h.Redirect.Users)

	// Browsers cannot set headers on the upgrade request, so the JWT comes
	// in ?token= and the handler checks it itself.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	// Embedded client; the redirects above land here.
	mux.Handle("GET /", static.Handler())
}
