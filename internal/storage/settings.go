package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hackhub/internal/logging"
)

// Well-known platform_settings keys.
const (
	SettingSMTP         = "smtp"
	SettingRegistration = "registration"
	SettingHomepage     = "homepage"
)

type SettingsStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	All(ctx context.Context) ([]*Setting, error)
}

type PostgresSettingsStore struct {
	DB *pgxpool.Pool
}

func (s *PostgresSettingsStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx,
		"SELECT value FROM platform_settings WHERE key=$1", key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *PostgresSettingsStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO platform_settings(key, value, updated_at)
		VALUES ($1,$2,now())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
	`, key, value)
	if err != nil {
		logging.Log.Errorf("SETTINGS: put %q failed: %v", key, err)
	}
	return err
}

func (s *PostgresSettingsStore) All(ctx context.Context) ([]*Setting, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT key, value, updated_at FROM platform_settings ORDER BY key ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Setting
	for rows.Next() {
		var st Setting
		var raw []byte
		if err := rows.Scan(&st.Key, &raw, &st.UpdatedAt); err != nil {
			return nil, err
		}
		st.Value = raw
		out = append(out, &st)
	}
	return out, rows.Err()
}

/* ===================== THEMES ===================== */

type ThemeStore interface {
	Create(ctx context.Context, t *Theme) error
	GetAll(ctx context.Context) ([]*Theme, error)
	Active(ctx context.Context) (*Theme, error)
	Update(ctx context.Context, t *Theme) error
	Activate(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type PostgresThemeStore struct {
	DB *pgxpool.Pool
}

func (s *PostgresThemeStore) Create(ctx context.Context, t *Theme) error {
	err := s.DB.QueryRow(ctx,
		"INSERT INTO themes(name, colors) VALUES ($1,$2) RETURNING id",
		t.Name, []byte(t.Colors),
	).Scan(&t.ID)
	if err != nil {
		logging.Log.Errorf("THEME: create failed: %v", err)
	}
	return err
}

func (s *PostgresThemeStore) GetAll(ctx context.Context) ([]*Theme, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, colors, is_active FROM themes ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Theme
	for rows.Next() {
		var t Theme
		var raw []byte
		if err := rows.Scan(&t.ID, &t.Name, &raw, &t.IsActive); err != nil {
			return nil, err
		}
		t.Colors = raw
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresThemeStore) Active(ctx context.Context) (*Theme, error) {
	var t Theme
	var raw []byte
	err := s.DB.QueryRow(ctx,
		"SELECT id, name, colors, is_active FROM themes WHERE is_active=true LIMIT 1",
	).Scan(&t.ID, &t.Name, &raw, &t.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Colors = raw
	return &t, nil
}

func (s *PostgresThemeStore) Update(ctx context.Context, t *Theme) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE themes SET name=$1, colors=$2 WHERE id=$3",
		t.Name, []byte(t.Colors), t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate flips the chosen theme on and every other theme off in one
// transaction, so exactly one theme is active at a time.
func (s *PostgresThemeStore) Activate(ctx context.Context, id int) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "UPDATE themes SET is_active=true WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, "UPDATE themes SET is_active=false WHERE id<>$1", id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresThemeStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM themes WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
