package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teris-io/shortid"

	"hackhub/internal/logging"
)

type TeamStore interface {
	Create(ctx context.Context, t *Team) error
	Get(ctx context.Context, id int) (*Team, error)
	GetByJoinCode(ctx context.Context, code string) (*Team, error)
	Lobby(ctx context.Context) ([]*Team, error)
	TeamOfUser(ctx context.Context, userID int) (*Team, error)
	Members(ctx context.Context, teamID int) ([]*TeamMember, error)
	Join(ctx context.Context, teamID, userID int) error
	RemoveMember(ctx context.Context, teamID, userID int) error
	SetReady(ctx context.Context, teamID int, ready bool) error
	UpdateSettings(ctx context.Context, teamID int, name, description string, stack []string, looking bool) error
	Delete(ctx context.Context, id int) error
}

type PostgresTeamStore struct {
	DB *pgxpool.Pool
}

const teamCols = "id, name, description, leader_id, join_code, tech_stack, is_ready, looking_for_members, max_members, created_at"

func scanTeam(row pgx.Row) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.JoinCode,
		&t.TechStack, &t.IsReady, &t.LookingForMembers, &t.MaxMembers, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts the team and the leader's membership in one transaction, so a
// failed second step can never leave an orphaned team behind.
func (s *PostgresTeamStore) Create(ctx context.Context, t *Team) error {
	// Retry a couple of times in case the generated join code collides.
	for attempt := 0; attempt < 3; attempt++ {
		code, err := shortid.Generate()
		if err != nil {
			return err
		}
		t.JoinCode = code

		err = s.createOnce(ctx, t)
		if err == nil || !errors.Is(err, errJoinCodeTaken) {
			return err
		}
	}
	return errors.New("could not generate a unique join code")
}

var errJoinCodeTaken = errors.New("join code taken")

func (s *PostgresTeamStore) createOnce(ctx context.Context, t *Team) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO teams(name, description, leader_id, join_code, tech_stack, looking_for_members, max_members)
		 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at`,
		t.Name, t.Description, t.LeaderID, t.JoinCode, t.TechStack, t.LookingForMembers, t.MaxMembers,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "teams_join_code_key" {
				return errJoinCodeTaken
			}
			return ErrAlreadyExists
		}
		logging.Log.Errorf("TEAM: insert failed: %v", err)
		return err
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO team_members(team_id, user_id) VALUES ($1,$2)",
		t.ID, t.LeaderID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyInTeam
		}
		logging.Log.Errorf("TEAM: leader membership insert failed: %v", err)
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresTeamStore) Get(ctx context.Context, id int) (*Team, error) {
	t, err := scanTeam(s.DB.QueryRow(ctx,
		"SELECT "+teamCols+" FROM teams WHERE id=$1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *PostgresTeamStore) GetByJoinCode(ctx context.Context, code string) (*Team, error) {
	t, err := scanTeam(s.DB.QueryRow(ctx,
		"SELECT "+teamCols+" FROM teams WHERE join_code=$1", code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// Lobby lists teams advertising for members that still have a free slot.
func (s *PostgresTeamStore) Lobby(ctx context.Context) ([]*Team, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT t.id, t.name, t.description, t.leader_id, t.join_code, t.tech_stack,
		       t.is_ready, t.looking_for_members, t.max_members, t.created_at,
		       COUNT(tm.id) AS member_count
		FROM teams t
		LEFT JOIN team_members tm ON tm.team_id = t.id
		WHERE t.looking_for_members = true
		GROUP BY t.id
		HAVING COUNT(tm.id) < t.max_members
		ORDER BY t.created_at DESC
	`)
	if err != nil {
		logging.Log.Errorf("TEAM: lobby query failed: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []*Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.JoinCode,
			&t.TechStack, &t.IsReady, &t.LookingForMembers, &t.MaxMembers, &t.CreatedAt,
			&t.MemberCount); err != nil {
			return nil, err
		}
		// Join codes are invitations, not lobby data.
		t.JoinCode = ""
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresTeamStore) TeamOfUser(ctx context.Context, userID int) (*Team, error) {
	t, err := scanTeam(s.DB.QueryRow(ctx, `
		SELECT t.id, t.name, t.description, t.leader_id, t.join_code, t.tech_stack,
		       t.is_ready, t.looking_for_members, t.max_members, t.created_at
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE tm.user_id = $1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *PostgresTeamStore) Members(ctx context.Context, teamID int) ([]*TeamMember, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, p.full_name, p.email
		FROM team_members tm
		JOIN profiles p ON p.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at ASC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.FullName, &m.Email); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Join checks capacity and inserts the membership in one transaction. The
// unique index on team_members.user_id rejects users who already have a team.
func (s *PostgresTeamStore) Join(ctx context.Context, teamID, userID int) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var count, max int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(tm.id), t.max_members
		FROM teams t
		LEFT JOIN team_members tm ON tm.team_id = t.id
		WHERE t.id = $1
		GROUP BY t.max_members
	`, teamID).Scan(&count, &max)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if count >= max {
		return ErrTeamFull
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO team_members(team_id, user_id) VALUES ($1,$2)",
		teamID, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyInTeam
		}
		logging.Log.Errorf("TEAM: join insert failed: %v", err)
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresTeamStore) RemoveMember(ctx context.Context, teamID, userID int) error {
	tag, err := s.DB.Exec(ctx,
		"DELETE FROM team_members WHERE team_id=$1 AND user_id=$2",
		teamID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresTeamStore) SetReady(ctx context.Context, teamID int, ready bool) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE teams SET is_ready=$1 WHERE id=$2", ready, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresTeamStore) UpdateSettings(ctx context.Context, teamID int, name, description string, stack []string, looking bool) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE teams SET name=$1, description=$2, tech_stack=$3, looking_for_members=$4 WHERE id=$5`,
		name, description, stack, looking, teamID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresTeamStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM teams WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
