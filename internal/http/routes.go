package http

import (
	"game_arcade/internal/config"
	"game_arcade/internal/game"
	"game_arcade/internal/http/handlers"
	"game_arcade/internal/http/middleware"
	"game_arcade/internal/repository"
	"game_arcade/internal/session"
	"game_arcade/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the realtime game subsystem and its REST directory
// onto the gin engine. db may be nil; the server then runs purely in-memory.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) (*session.Manager, *ws.Hub) {
	var matchRepo *repository.MatchRepository
	var recorder session.Recorder
	if db != nil {
		matchRepo = repository.NewMatchRepository(db)
		recorder = matchRepo
	}

	factory := game.NewFactory(game.NimConfig{
		PileSize:     cfg.NimPileSize,
		MaxTake:      cfg.NimMaxTake,
		TakeLastWins: cfg.NimTakeLastWins,
	})
	store := session.NewStore()
	manager := session.NewManager(store, factory, recorder, session.ManagerConfig{
		IdleTTL:       cfg.SessionIdleTTL,
		SweepInterval: cfg.SweepInterval,
	})
	hub := ws.NewHub(manager, store)

	gamesHandler := handlers.NewGamesHandler(manager, matchRepo)
	healthHandler := handlers.NewHealthHandler(db, version)

	r.Use(middleware.Metrics())

	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	{
		v1.GET("/games", gamesHandler.List)
		v1.GET("/games/:id", gamesHandler.Get)
		v1.GET("/me/matches", middleware.JWT(), gamesHandler.MyMatches)
	}

	// the realtime transport itself
	r.GET("/ws", ws.HandleWS(hub))

	return manager, hub
}
