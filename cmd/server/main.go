// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/pverdier/undercover/internal/config"
	"github.com/pverdier/undercover/internal/game"
	"github.com/pverdier/undercover/internal/handlers"
	"github.com/pverdier/undercover/internal/middleware"
	"github.com/pverdier/undercover/internal/words"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	registry := game.NewRegistry()
	hub := handlers.NewHub(logger)
	session := game.NewSession(registry, hub, hub, words.NewDictionary(), logger, cfg.HostGracePeriod)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, hub, session),
	)))
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
