package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hackhub/internal/logging"
)

type EventStore interface {
	Create(ctx context.Context, e *Event) error
	Get(ctx context.Context, id int) (*Event, error)
	List(ctx context.Context, publishedOnly bool) ([]*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int) error

	AddImage(ctx context.Context, img *GalleryImage) error
	Gallery(ctx context.Context, eventID int) ([]*GalleryImage, error)
	RemoveImage(ctx context.Context, id int) (*GalleryImage, error)
}

type PostgresEventStore struct {
	DB *pgxpool.Pool
}

const eventCols = "id, title, description, location, starts_at, ends_at, is_published, created_at"

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.EndsAt, &e.IsPublished, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresEventStore) Create(ctx context.Context, e *Event) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO events(title, description, location, starts_at, ends_at, is_published)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.IsPublished,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		logging.Log.Errorf("EVENT: create failed: %v", err)
	}
	return err
}

func (s *PostgresEventStore) Get(ctx context.Context, id int) (*Event, error) {
	e, err := scanEvent(s.DB.QueryRow(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *PostgresEventStore) List(ctx context.Context, publishedOnly bool) ([]*Event, error) {
	sql := "SELECT " + eventCols + " FROM events"
	if publishedOnly {
		sql += " WHERE is_published = true"
	}
	sql += " ORDER BY starts_at ASC"

	rows, err := s.DB.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresEventStore) Update(ctx context.Context, e *Event) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE events SET title=$1, description=$2, location=$3, starts_at=$4, ends_at=$5, is_published=$6
		 WHERE id=$7`,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.IsPublished, e.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresEventStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM events WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresEventStore) AddImage(ctx context.Context, img *GalleryImage) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO event_gallery(event_id, object_key, url, caption)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		img.EventID, img.ObjectKey, img.URL, img.Caption,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		logging.Log.Errorf("EVENT: gallery insert failed: %v", err)
	}
	return err
}

func (s *PostgresEventStore) Gallery(ctx context.Context, eventID int) ([]*GalleryImage, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT id, event_id, object_key, url, caption, created_at
		 FROM event_gallery WHERE event_id=$1 ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GalleryImage
	for rows.Next() {
		var img GalleryImage
		if err := rows.Scan(&img.ID, &img.EventID, &img.ObjectKey, &img.URL,
			&img.Caption, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}

// RemoveImage deletes the row and returns it so the caller can also drop the
// object from the bucket.
func (s *PostgresEventStore) RemoveImage(ctx context.Context, id int) (*GalleryImage, error) {
	var img GalleryImage
	err := s.DB.QueryRow(ctx,
		`DELETE FROM event_gallery WHERE id=$1
		 RETURNING id, event_id, object_key, url, caption, created_at`, id,
	).Scan(&img.ID, &img.EventID, &img.ObjectKey, &img.URL, &img.Caption, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}
