package main

import (
	"database/sql"
	"log"

	"github.com/akinalp/forum/config"
	"github.com/akinalp/forum/pkg/cache"
	"github.com/akinalp/forum/pkg/ratelimit"
	"github.com/akinalp/forum/services"
	"github.com/akinalp/forum/ws"
)

type Services struct {
	Auth       services.AuthService
	Forum      services.ForumService
	UserSearch services.UserSearchService
	Captcha    services.CaptchaService
}

type RateLimiters struct {
	Login   *ratelimit.Limiter
	Captcha *ratelimit.Limiter
	Post    *ratelimit.PostLimiter
}

// Stop ends the limiters' cleanup goroutines.
func (l *RateLimiters) Stop() {
	l.Login.Stop()
	l.Captcha.Stop()
	l.Post.Stop()
}

// resultCaches are the search result stores. With REDIS_ADDR set they
// live in Redis and are shared by every instance; otherwise each process
// keeps its own.
type resultCaches struct {
	forum    cache.ResultCache[*services.ForumSearchResult]
	rankings cache.ResultCache[*services.Top10Result]
	closers  []func() error
}

func (c *resultCaches) Close() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			log.Printf("[main] failed to close cache: %v", err)
		}
	}
}

func initResultCaches(cfg *config.Config) (*resultCaches, error) {
	ttl := cfg.Search.CacheTTL

	if cfg.Redis.Addr == "" {
		forum := cache.NewMemoryResultCache[*services.ForumSearchResult](ttl)
		rankings := cache.NewMemoryResultCache[*services.Top10Result](ttl)
		log.Printf("[main] search result cache: memory (ttl=%s)", ttl)
		return &resultCaches{
			forum:    forum,
			rankings: rankings,
			closers:  []func() error{forum.Close, rankings.Close},
		}, nil
	}

	client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	log.Printf("[main] search result cache: redis at %s (ttl=%s)", cfg.Redis.Addr, ttl)
	return &resultCaches{
		forum:    cache.NewRedisResultCache[*services.ForumSearchResult](client, "forum:search", ttl),
		rankings: cache.NewRedisResultCache[*services.Top10Result](client, "forum:top10", ttl),
		closers:  []func() error{client.Close},
	}, nil
}

func initServices(db *sql.DB, repos *Repositories, hub ws.EventPublisher, caches *resultCaches, cfg *config.Config) (*Services, *RateLimiters) {
	captchaService := services.NewCaptchaService(cfg.Captcha.TTL)

	svcs := &Services{
		Auth: services.NewAuthService(
			repos.User,
			captchaService,
			cfg.JWT.Secret,
			cfg.JWT.AccessTokenDuration(),
			services.DefaultBcryptCost,
		),
		Forum:      services.NewForumService(db, repos.Forum, repos.User, hub, caches.forum),
		UserSearch: services.NewUserSearchService(repos.User, caches.rankings),
		Captcha:    captchaService,
	}

	rl := cfg.RateLimit
	limiters := &RateLimiters{
		Login:   ratelimit.NewLimiter(rl.LoginAttempts, rl.LoginWindow),
		Captcha: ratelimit.NewLimiter(rl.CaptchaRequests, rl.CaptchaWindow),
		Post:    ratelimit.NewPostLimiter(rl.Posts, rl.PostWindow, rl.PostCooldown),
	}

	return svcs, limiters
}
