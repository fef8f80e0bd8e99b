package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hackhub/internal/logging"
)

/* ===================== NEWS ===================== */

type NewsStore interface {
	Create(ctx context.Context, n *News) error
	Get(ctx context.Context, id int) (*News, error)
	List(ctx context.Context, publishedOnly bool) ([]*News, error)
	Update(ctx context.Context, n *News) error
	Delete(ctx context.Context, id int) error
}

type PostgresNewsStore struct {
	DB *pgxpool.Pool
}

const newsCols = "id, title, body, cover_image, is_published, created_at, updated_at"

func scanNews(row pgx.Row) (*News, error) {
	var n News
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.CoverImage, &n.IsPublished, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *PostgresNewsStore) Create(ctx context.Context, n *News) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO news(title, body, cover_image, is_published)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
		n.Title, n.Body, n.CoverImage, n.IsPublished,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		logging.Log.Errorf("NEWS: create failed: %v", err)
	}
	return err
}

func (s *PostgresNewsStore) Get(ctx context.Context, id int) (*News, error) {
	n, err := scanNews(s.DB.QueryRow(ctx,
		"SELECT "+newsCols+" FROM news WHERE id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

func (s *PostgresNewsStore) List(ctx context.Context, publishedOnly bool) ([]*News, error) {
	sql := "SELECT " + newsCols + " FROM news"
	if publishedOnly {
		sql += " WHERE is_published = true"
	}
	sql += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresNewsStore) Update(ctx context.Context, n *News) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE news SET title=$1, body=$2, cover_image=$3, is_published=$4, updated_at=now()
		 WHERE id=$5`,
		n.Title, n.Body, n.CoverImage, n.IsPublished, n.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresNewsStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM news WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* ===================== LEGAL DOCUMENTS ===================== */

type LegalStore interface {
	Create(ctx context.Context, d *LegalDocument) error
	List(ctx context.Context) ([]*LegalDocument, error)
	LatestPublished(ctx context.Context, slug string) (*LegalDocument, error)
	Update(ctx context.Context, d *LegalDocument) error
	Publish(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type PostgresLegalStore struct {
	DB *pgxpool.Pool
}

const legalCols = "id, slug, title, content, version, is_published, published_at, created_at"

func scanLegal(row pgx.Row) (*LegalDocument, error) {
	var d LegalDocument
	err := row.Scan(&d.ID, &d.Slug, &d.Title, &d.Content, &d.Version,
		&d.IsPublished, &d.PublishedAt, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresLegalStore) Create(ctx context.Context, d *LegalDocument) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO legal_documents(slug, title, content, version)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		d.Slug, d.Title, d.Content, d.Version,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		logging.Log.Errorf("LEGAL: create failed: %v", err)
	}
	return err
}

func (s *PostgresLegalStore) List(ctx context.Context) ([]*LegalDocument, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+legalCols+" FROM legal_documents ORDER BY slug ASC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LegalDocument
	for rows.Next() {
		d, err := scanLegal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresLegalStore) LatestPublished(ctx context.Context, slug string) (*LegalDocument, error) {
	d, err := scanLegal(s.DB.QueryRow(ctx,
		`SELECT `+legalCols+` FROM legal_documents
		 WHERE slug=$1 AND is_published=true
		 ORDER BY published_at DESC LIMIT 1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *PostgresLegalStore) Update(ctx context.Context, d *LegalDocument) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE legal_documents SET slug=$1, title=$2, content=$3, version=$4 WHERE id=$5`,
		d.Slug, d.Title, d.Content, d.Version, d.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresLegalStore) Publish(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE legal_documents SET is_published=true, published_at=$1 WHERE id=$2",
		time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresLegalStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM legal_documents WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* ===================== CONTACT ===================== */

type ContactStore interface {
	Create(ctx context.Context, m *ContactMessage) error
	List(ctx context.Context) ([]*ContactMessage, error)
	Delete(ctx context.Context, id int) error
}

type PostgresContactStore struct {
	DB *pgxpool.Pool
}

func (s *PostgresContactStore) Create(ctx context.Context, m *ContactMessage) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO contact_messages(name, email, subject, message)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		m.Name, m.Email, m.Subject, m.Message,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		logging.Log.Errorf("CONTACT: create failed: %v", err)
	}
	return err
}

func (s *PostgresContactStore) List(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, name, email, subject, message, created_at FROM contact_messages ORDER BY created_at DESC LIMIT 500")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *PostgresContactStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM contact_messages WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
