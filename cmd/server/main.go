// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/dvsk-dev/gamify/internal/auth"
	"github.com/dvsk-dev/gamify/internal/broadcast"
	"github.com/dvsk-dev/gamify/internal/cache"
	"github.com/dvsk-dev/gamify/internal/database"
	"github.com/dvsk-dev/gamify/internal/engine"
	"github.com/dvsk-dev/gamify/internal/handlers"
	"github.com/dvsk-dev/gamify/internal/middleware"
	"github.com/dvsk-dev/gamify/internal/scheduler"
	"github.com/dvsk-dev/gamify/internal/store"
)

func main() {
	auth.Init()
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		// The action log is optional; rooms run fine without it.
		log.Printf("redis unavailable, action history disabled: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	st := store.NewMemoryStore()
	bus := broadcast.NewBus()

	eng := engine.New(st)
	eng.Bus = bus
	eng.Recorder = &database.MatchRecorder{}

	timers := scheduler.New()
	timers.Fire = func(roomID string, deadline time.Time) {
		if _, err := eng.AutoSkip(context.Background(), roomID, deadline); err != nil {
			logger.WithField("room_id", roomID).WithError(err).Warn("auto skip failed")
		}
	}
	eng.Timers = timers
	defer timers.Shutdown()

	mux := http.NewServeMux()

	logged := middleware.LogMiddleware(logger)

	// user endpoints
	mux.Handle("/user/create", logged(http.HandlerFunc(handlers.CreateUserHandler)))
	mux.Handle("/user/login", logged(http.HandlerFunc(handlers.LoginHandler)))
	mux.Handle("/profile", logged(http.HandlerFunc(handlers.ProfileHandler)))
	mux.Handle("/profile/", logged(http.HandlerFunc(handlers.ProfileHandler)))
	mux.Handle("/leaderboard", logged(http.HandlerFunc(handlers.LeaderboardHandler)))

	// room endpoints
	mux.Handle("/rooms/create", logged(handlers.CreateRoomHandler(st)))
	mux.Handle("/rooms/join", logged(handlers.JoinRoomHandler(st, bus)))

	// room ws
	mux.Handle("/rooms/ws/", logged(handlers.RoomWSHandler(st, eng, bus, logger)))

	mux.Handle("/rooms/", logged(handlers.RoomDetailHandler(st)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
