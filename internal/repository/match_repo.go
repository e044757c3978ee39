package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"game_arcade/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository archives finished matches, one row per participant.
type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m *domain.Match) error {
	detailsJSON, err := json.Marshal(m.Details)
	if err != nil {
		return fmt.Errorf("marshal match details: %w", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO matches (user_id, game_type, opponent_id, session_id, result, details)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		m.UserID,
		m.GameType,
		m.OpponentID,
		m.SessionID,
		m.Result,
		detailsJSON,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// GetByUser lists a player's most recent matches, newest first.
func (r *MatchRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, game_type, opponent_id, session_id, result, details, created_at
		 FROM matches
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		var (
			m            domain.Match
			detailsBytes []byte
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.GameType, &m.OpponentID, &m.SessionID, &m.Result, &detailsBytes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if len(detailsBytes) > 0 {
			_ = json.Unmarshal(detailsBytes, &m.Details)
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}
