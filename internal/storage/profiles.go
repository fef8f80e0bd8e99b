package storage

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hackhub/internal/logging"
)

type ProfileStore interface {
	Create(ctx context.Context, p *Profile, passHash string) (int, error)
	Get(ctx context.Context, id int) (*Profile, error)
	GetCredentials(ctx context.Context, email string) (*Profile, string, error)
	List(ctx context.Context, role string) ([]*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id int) error
	SetMentorStatus(ctx context.Context, id int, status string, reason *string, approvedAt *time.Time) error
	ListMentorApplications(ctx context.Context, status string) ([]*Profile, error)
	ListApprovedMentors(ctx context.Context) ([]*Profile, error)
}

type PostgresProfileStore struct {
	DB *pgxpool.Pool
}

const profileCols = "id, email, full_name, role, mentor_status, rejection_reason, approved_at, max_teams, created_at"

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.MentorStatus,
		&p.RejectionReason, &p.ApprovedAt, &p.MaxTeams, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresProfileStore) Create(ctx context.Context, p *Profile, passHash string) (int, error) {
	var id int
	err := s.DB.QueryRow(ctx,
		`INSERT INTO profiles(email, full_name, pass_hash, role, mentor_status, max_teams)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		p.Email, p.FullName, passHash, p.Role, p.MentorStatus, p.MaxTeams,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		logging.Log.Errorf("PROFILE: create failed: %v", err)
		return 0, err
	}
	return id, nil
}

func (s *PostgresProfileStore) Get(ctx context.Context, id int) (*Profile, error) {
	p, err := scanProfile(s.DB.QueryRow(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PostgresProfileStore) GetCredentials(ctx context.Context, email string) (*Profile, string, error) {
	var p Profile
	var hash string
	err := s.DB.QueryRow(ctx,
		`SELECT `+profileCols+`, pass_hash FROM profiles WHERE email=$1`, email,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.MentorStatus,
		&p.RejectionReason, &p.ApprovedAt, &p.MaxTeams, &p.CreatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return &p, hash, nil
}

func (s *PostgresProfileStore) List(ctx context.Context, role string) ([]*Profile, error) {
	q := psql.Select(profileCols).From("profiles").OrderBy("id ASC")
	if role != "" && role != "all" {
		q = q.Where(sq.Eq{"role": role})
	}
	rows, err := qQuery(ctx, s.DB, q)
	if err != nil {
		logging.Log.Errorf("PROFILE: list failed: %v", err)
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func collectProfiles(rows pgx.Rows) ([]*Profile, error) {
	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresProfileStore) Update(ctx context.Context, p *Profile) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE profiles SET full_name=$1, role=$2, mentor_status=$3, max_teams=$4 WHERE id=$5`,
		p.FullName, p.Role, p.MentorStatus, p.MaxTeams, p.ID,
	)
	if err != nil {
		logging.Log.Errorf("PROFILE: update %d failed: %v", p.ID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresProfileStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM profiles WHERE id=$1", id)
	if err != nil {
		logging.Log.Errorf("PROFILE: delete %d failed: %v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresProfileStore) SetMentorStatus(ctx context.Context, id int, status string, reason *string, approvedAt *time.Time) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE profiles SET mentor_status=$1, rejection_reason=$2, approved_at=$3 WHERE id=$4 AND role='mentor'`,
		status, reason, approvedAt, id,
	)
	if err != nil {
		logging.Log.Errorf("PROFILE: set mentor status for %d failed: %v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresProfileStore) ListMentorApplications(ctx context.Context, status string) ([]*Profile, error) {
	q := psql.Select(profileCols).From("profiles").
		Where(sq.Eq{"role": RoleMentor}).
		OrderBy("created_at ASC, id ASC")
	if status != "" && status != "all" {
		q = q.Where(sq.Eq{"mentor_status": status})
	}
	rows, err := qQuery(ctx, s.DB, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (s *PostgresProfileStore) ListApprovedMentors(ctx context.Context) ([]*Profile, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE role='mentor' AND mentor_status='approved' ORDER BY full_name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}
