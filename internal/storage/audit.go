package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditStore interface {
	Record(ctx context.Context, actorID *int, action, details string)
	List(ctx context.Context, limit int) ([]*LogEntry, error)
}

type PostgresAuditStore struct {
	DB *pgxpool.Pool
}

// Record is fire-and-forget: an audit write never fails the request it logs.
func (s *PostgresAuditStore) Record(ctx context.Context, actorID *int, action, details string) {
	_, _ = s.DB.Exec(ctx,
		"INSERT INTO logs(actor_id, action, details) VALUES ($1,$2,$3)",
		actorID, action, details,
	)
}

func (s *PostgresAuditStore) List(ctx context.Context, limit int) ([]*LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := s.DB.Query(ctx,
		`SELECT l.id,
		        to_char(l.created_at, 'YYYY-MM-DD HH24:MI:SS') AS created_at,
		        COALESCE(p.full_name,'(deleted)') AS actor,
		        l.action,
		        l.details
		 FROM logs l
		 LEFT JOIN profiles p ON p.id=l.actor_id
		 ORDER BY l.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*LogEntry{}
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Actor, &e.Action, &e.Details); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
