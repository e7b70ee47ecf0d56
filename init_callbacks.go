package main

import (
	"context"
	"log"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/repository"
	"github.com/akinalp/forum/ws"
)

// registerHubCallbacks keeps users.status in step with live connections;
// the member directory's only-online filter reads it. The hub runs the
// callbacks on their own goroutines.
func registerHubCallbacks(hub *ws.Hub, userRepo repository.UserRepository) {
	setStatus := func(userID int64, status models.UserStatus) {
		if err := userRepo.UpdateStatus(context.Background(), userID, status); err != nil {
			log.Printf("[presence] failed to set %s for user %d: %v", status, userID, err)
			return
		}
		hub.BroadcastToAll(ws.Event{
			Op:   ws.OpPresence,
			Data: ws.PresenceData{UserID: userID, Status: string(status)},
		})
		log.Printf("[presence] user %d is now %s", userID, status)
	}

	hub.OnUserConnect(func(userID int64) { setStatus(userID, models.UserStatusOnline) })
	hub.OnUserDisconnect(func(userID int64) { setStatus(userID, models.UserStatusOffline) })
}

// resetPresence marks everyone offline at startup; connections from a
// previous run are gone.
func resetPresence(ctx context.Context, userRepo repository.UserRepository) error {
	return userRepo.ResetStatuses(ctx)
}
