package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hackhub/internal/logging"
)

type VendorStore interface {
	Create(ctx context.Context, v *Vendor) error
	Get(ctx context.Context, id int) (*Vendor, error)
	GetAll(ctx context.Context) ([]*Vendor, error)
	Update(ctx context.Context, v *Vendor) error
	Delete(ctx context.Context, id int) error
}

type PostgresVendorStore struct {
	DB *pgxpool.Pool
}

func (s *PostgresVendorStore) Create(ctx context.Context, v *Vendor) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO vendors(name, website, icon, redemption_instructions)
		 VALUES ($1,$2,$3,$4) RETURNING id`,
		v.Name, v.Website, v.Icon, v.RedemptionInstructions,
	).Scan(&v.ID)
	if err != nil {
		logging.Log.Errorf("VENDOR: create failed: %v", err)
	}
	return err
}

func (s *PostgresVendorStore) Get(ctx context.Context, id int) (*Vendor, error) {
	var v Vendor
	err := s.DB.QueryRow(ctx,
		"SELECT id, name, website, icon, redemption_instructions FROM vendors WHERE id=$1", id,
	).Scan(&v.ID, &v.Name, &v.Website, &v.Icon, &v.RedemptionInstructions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PostgresVendorStore) GetAll(ctx context.Context) ([]*Vendor, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, name, website, icon, redemption_instructions FROM vendors ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Website, &v.Icon, &v.RedemptionInstructions); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (s *PostgresVendorStore) Update(ctx context.Context, v *Vendor) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE vendors SET name=$1, website=$2, icon=$3, redemption_instructions=$4 WHERE id=$5`,
		v.Name, v.Website, v.Icon, v.RedemptionInstructions, v.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresVendorStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM vendors WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
