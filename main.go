// Package main is the forum server entry point. It only wires things
// together:
//
//  1. config and logging
//  2. database (embedded migrations) and i18n
//  3. repositories, WebSocket hub, services, handlers
//  4. routes, CORS, request logging
//  5. HTTP server with graceful shutdown
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/forum/config"
	"github.com/akinalp/forum/database"
	"github.com/akinalp/forum/pkg/i18n"
	applog "github.com/akinalp/forum/pkg/log"
	"github.com/akinalp/forum/ws"
)

func main() {
	// ─── 1. Config + logging ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}

	applog.Init(applog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "forum",
	})
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database + i18n ───
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}
	db, err := database.New(cfg.Database.Path, migrations)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	locales, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		log.Fatalf("[main] failed to open embedded locales: %v", err)
	}
	if err := i18n.Load(locales); err != nil {
		log.Fatalf("[main] failed to load translations: %v", err)
	}

	// ─── 3. Layers ───
	repos := initRepositories(db.Conn)

	if err := resetPresence(context.Background(), repos.User); err != nil {
		log.Fatalf("[main] failed to reset presence: %v", err)
	}

	hub := ws.NewHub()
	registerHubCallbacks(hub, repos.User)
	go hub.Run()

	caches, err := initResultCaches(cfg)
	if err != nil {
		log.Fatalf("[main] failed to initialize result cache: %v", err)
	}
	defer caches.Close()

	svcs, limiters := initServices(db.Conn, repos, hub, caches, cfg)
	defer svcs.Captcha.Close()
	defer limiters.Stop()

	h := initHandlers(svcs, limiters, hub, cfg)

	// ─── 4. Routes + middleware ───
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		AllowCredentials: true,
	})

	handler := applog.HTTPMiddleware(applog.L())(corsHandler.Handler(mux))

	// ─── 5. HTTP server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// WebSocket clients first, so they see the close before the listener goes.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
