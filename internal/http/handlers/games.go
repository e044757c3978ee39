package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"game_arcade/internal/game"
	"game_arcade/internal/http/middleware"
	"game_arcade/internal/repository"
	"game_arcade/internal/session"

	"github.com/gin-gonic/gin"
)

// GamesHandler serves the read-only session directory and, when persistence
// is configured, per-player match history. All writes go over the websocket.
type GamesHandler struct {
	Manager *session.Manager
	Matches *repository.MatchRepository // nil when DATABASE_URL is unset
}

func NewGamesHandler(manager *session.Manager, matches *repository.MatchRepository) *GamesHandler {
	return &GamesHandler{Manager: manager, Matches: matches}
}

// List returns snapshots of live sessions; ?type= and ?status= filter.
func (h *GamesHandler) List(c *gin.Context) {
	games := h.Manager.ListGames(
		game.Type(c.Query("type")),
		game.Status(c.Query("status")),
	)
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Get returns one session snapshot by id.
func (h *GamesHandler) Get(c *gin.Context) {
	snap, err := h.Manager.GetGame(c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// MyMatches returns the caller's archived match history.
func (h *GamesHandler) MyMatches(c *gin.Context) {
	if h.Matches == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "match history disabled"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.Matches.GetByUser(c.Request.Context(), middleware.PlayerID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": rows})
}
