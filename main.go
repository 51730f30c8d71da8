package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fourline/auth"
	"fourline/config"
	"fourline/game"
	httpserver "fourline/http"
	"fourline/store"
	"fourline/ws"
)

func main() {
	log.Println("Starting fourline server...")

	cfg := config.Load()
	log.Printf("Configuration loaded - Server port: %s, DB path: %s", cfg.ServerPort, cfg.DBPath)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Println("Database initialized successfully")

	sessionManager := auth.NewSessionManager(cfg.SessionSecret)
	authService := auth.NewService(db, sessionManager)
	players := game.NewPlayers(db)
	rooms := game.NewRooms(db)
	engine := game.NewEngine(db, game.NewRand(), cfg.GridRows, cfg.GridCols)
	lobbyManager := ws.NewLobbyManager()
	wsManager := ws.NewManager(players, rooms, engine, lobbyManager)
	sweeper := game.NewSweeper(db, cfg.SweepInterval)

	server := httpserver.NewServer(authService, rooms, wsManager, lobbyManager, db)
	srv := server.GetHTTPServer(cfg.ServerPort)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	go func() {
		log.Printf("Server listening on http://localhost%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
