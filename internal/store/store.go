package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"coinche/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// RecordMatch stores a finished match and its four seats in one transaction.
func (db *DB) RecordMatch(ctx context.Context, rec ports.MatchRecord) error {
	uid, err := matchUUID(rec.MatchID)
	if err != nil {
		return err
	}
	id := uid.String()
	finished := rec.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO matches(id, table_id, variant, team_ns, team_ew, score_ns, score_ew, winner, hands, finished_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (id) DO NOTHING
		`, id, rec.TableID, rec.Variant, rec.TeamNS, rec.TeamEW, rec.ScoreNS, rec.ScoreEW, rec.Winner, rec.Hands, finished)
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}

		batch := &pgx.Batch{}
		for seat, userID := range rec.Players {
			batch.Queue(`
				INSERT INTO match_players(match_id, seat, user_id, name)
				VALUES ($1,$2,$3,$4)
				ON CONFLICT (match_id, seat) DO NOTHING
			`, id, seat, userID, rec.Names[seat])
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert players: %w", err)
		}
		return nil
	})
}

// RecentMatches returns the latest matches, newest first.
func (db *DB) RecentMatches(ctx context.Context, limit int) ([]ports.MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
		SELECT id, table_id, variant, team_ns, team_ew, score_ns, score_ew, winner, hands, finished_at
		  FROM matches
		 ORDER BY finished_at DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.MatchRecord
	index := map[string]int{}
	var ids []string
	for rows.Next() {
		var rec ports.MatchRecord
		if err := rows.Scan(&rec.MatchID, &rec.TableID, &rec.Variant, &rec.TeamNS, &rec.TeamEW,
			&rec.ScoreNS, &rec.ScoreEW, &rec.Winner, &rec.Hands, &rec.FinishedAt); err != nil {
			return nil, err
		}
		index[rec.MatchID] = len(out)
		ids = append(ids, rec.MatchID)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	prows, err := db.Query(ctx, `
		SELECT match_id, seat, user_id, name
		  FROM match_players
		 WHERE match_id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var id string
		var seat int
		var userID, name string
		if err := prows.Scan(&id, &seat, &userID, &name); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok && seat >= 0 && seat < len(out[i].Players) {
			out[i].Players[seat] = userID
			out[i].Names[seat] = name
		}
	}
	return out, prows.Err()
}

// matchUUID accepts a uuid match id, or derives a stable one from any other id
// such as a Nakama "<uuid>.<node>" match id.
func matchUUID(matchID string) (uuid.UUID, error) {
	if matchID == "" {
		return uuid.Nil, errors.New("match id is required")
	}
	if id, err := uuid.Parse(matchID); err == nil {
		return id, nil
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("coinche:match:"+matchID)), nil
}

var _ ports.MatchRecorder = (*DB)(nil)
