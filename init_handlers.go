package main

import (
	"github.com/akinalp/forum/config"
	"github.com/akinalp/forum/handlers"
	"github.com/akinalp/forum/ws"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Captcha  *handlers.CaptchaHandler
	Forum    *handlers.ForumHandler
	User     *handlers.UserHandler
	Redirect *handlers.RedirectHandler
	WS       *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:     handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		Captcha:  handlers.NewCaptchaHandler(svcs.Captcha, limiters.Captcha),
		Forum:    handlers.NewForumHandler(svcs.Forum, limiters.Post),
		User:     handlers.NewUserHandler(svcs.UserSearch),
		Redirect: handlers.NewRedirectHandler(cfg.App.BaseURL),
		WS:       ws.NewHandler(hub, svcs.Auth, cfg.App.AllowedOrigins),
	}
}
