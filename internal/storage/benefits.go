package storage

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hackhub/internal/logging"
)

type BenefitStore interface {
	Create(ctx context.Context, b *Benefit) error
	BulkCreate(ctx context.Context, bs []*Benefit) (int, error)
	List(ctx context.Context, vendorID int, unassignedOnly bool) ([]*Benefit, error)
	Update(ctx context.Context, b *Benefit) error
	Delete(ctx context.Context, id int) error

	Assign(ctx context.Context, vendorID int, userIDs []int) (int, error)
	AutoAssign(ctx context.Context, vendorID int, role string) (int, error)
	AssignmentsForUser(ctx context.Context, userID int) ([]*Assignment, error)
	Redeem(ctx context.Context, assignmentID, userID int) error
}

type PostgresBenefitStore struct {
	DB *pgxpool.Pool
}

func (s *PostgresBenefitStore) Create(ctx context.Context, b *Benefit) error {
	err := s.DB.QueryRow(ctx,
		`INSERT INTO benefits(vendor_id, coupon_code, is_active, expiry_date, user_type)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`,
		b.VendorID, b.CouponCode, b.IsActive, b.ExpiryDate, b.UserType,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		logging.Log.Errorf("BENEFIT: create failed: %v", err)
	}
	return err
}

// BulkCreate inserts one row per coupon code. Used by the CSV import.
func (s *PostgresBenefitStore) BulkCreate(ctx context.Context, bs []*Benefit) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	n := 0
	for _, b := range bs {
		_, err := tx.Exec(ctx,
			`INSERT INTO benefits(vendor_id, coupon_code, is_active, expiry_date, user_type)
			 VALUES ($1,$2,$3,$4,$5)`,
			b.VendorID, b.CouponCode, b.IsActive, b.ExpiryDate, b.UserType,
		)
		if err != nil {
			logging.Log.Errorf("BENEFIT: bulk insert failed at row %d: %v", n, err)
			return 0, err
		}
		n++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PostgresBenefitStore) List(ctx context.Context, vendorID int, unassignedOnly bool) ([]*Benefit, error) {
	q := psql.Select("id, vendor_id, coupon_code, is_assigned, is_active, expiry_date, user_type, created_at").
		From("benefits").
		OrderBy("created_at ASC, id ASC")
	if vendorID != 0 {
		q = q.Where(sq.Eq{"vendor_id": vendorID})
	}
	if unassignedOnly {
		q = q.Where(sq.Eq{"is_assigned": false, "is_active": true})
	}
	rows, err := qQuery(ctx, s.DB, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Benefit
	for rows.Next() {
		var b Benefit
		if err := rows.Scan(&b.ID, &b.VendorID, &b.CouponCode, &b.IsAssigned,
			&b.IsActive, &b.ExpiryDate, &b.UserType, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *PostgresBenefitStore) Update(ctx context.Context, b *Benefit) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE benefits SET coupon_code=$1, is_active=$2, expiry_date=$3, user_type=$4 WHERE id=$5`,
		b.CouponCode, b.IsActive, b.ExpiryDate, b.UserType, b.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresBenefitStore) Delete(ctx context.Context, id int) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM benefits WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign hands one unassigned active benefit of the vendor to every user in
// userIDs. Allocation order is FIFO by benefit creation time. The whole
// operation runs in a single transaction: either every user gets a coupon or
// nothing is written. Each claim re-checks is_assigned, so two operators
// assigning the same vendor concurrently cannot hand out the same coupon.
func (s *PostgresBenefitStore) Assign(ctx context.Context, vendorID int, userIDs []int) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	n, err := assignInTx(ctx, tx, vendorID, userIDs)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit(ctx)
}

// AutoAssign computes users of the given role who hold no assignment for the
// vendor yet and pairs them FIFO against the vendor's unassigned benefits.
func (s *PostgresBenefitStore) AutoAssign(ctx context.Context, vendorID int, role string) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT p.id
		FROM profiles p
		WHERE p.role = $1
		  AND NOT EXISTS (
			SELECT 1 FROM benefit_assignments ba
			JOIN benefits b ON b.id = ba.benefit_id
			WHERE ba.user_id = p.id AND b.vendor_id = $2
		  )
		ORDER BY p.id ASC
	`, role, vendorID)
	if err != nil {
		return 0, err
	}
	var userIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		userIDs = append(userIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(userIDs) == 0 {
		return 0, nil
	}

	n, err := assignInTx(ctx, tx, vendorID, userIDs)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit(ctx)
}

func assignInTx(ctx context.Context, tx pgx.Tx, vendorID int, userIDs []int) (int, error) {
	// Claim the first N unassigned benefits, oldest first. FOR UPDATE SKIP
	// LOCKED keeps concurrent assigners off the same rows.
	rows, err := tx.Query(ctx, `
		SELECT id FROM benefits
		WHERE vendor_id=$1 AND is_assigned=false AND is_active=true
		ORDER BY created_at ASC, id ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, vendorID, len(userIDs))
	if err != nil {
		return 0, err
	}
	var benefitIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		benefitIDs = append(benefitIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(benefitIDs) < len(userIDs) {
		return 0, ErrNotEnoughBenefits
	}

	for i, userID := range userIDs {
		benefitID := benefitIDs[i]

		tag, err := tx.Exec(ctx,
			"UPDATE benefits SET is_assigned=true WHERE id=$1 AND is_assigned=false",
			benefitID,
		)
		if err != nil {
			return 0, err
		}
		if tag.RowsAffected() == 0 {
			// Locked rows cannot be claimed twice; seeing this means the
			// snapshot changed under us. Abort, nothing is committed.
			return 0, ErrNotEnoughBenefits
		}

		_, err = tx.Exec(ctx,
			"INSERT INTO benefit_assignments(user_id, benefit_id) VALUES ($1,$2)",
			userID, benefitID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return 0, ErrAlreadyExists
			}
			logging.Log.Errorf("BENEFIT: assignment insert failed: %v", err)
			return 0, err
		}
	}

	return len(userIDs), nil
}

func (s *PostgresBenefitStore) AssignmentsForUser(ctx context.Context, userID int) ([]*Assignment, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT ba.id, ba.user_id, ba.benefit_id, ba.is_redeemed, ba.redeemed_at,
		       b.coupon_code, b.expiry_date,
		       v.name, v.website, v.redemption_instructions
		FROM benefit_assignments ba
		JOIN benefits b ON b.id = ba.benefit_id
		JOIN vendors v ON v.id = b.vendor_id
		WHERE ba.user_id = $1
		ORDER BY ba.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.BenefitID, &a.IsRedeemed, &a.RedeemedAt,
			&a.CouponCode, &a.ExpiryDate,
			&a.VendorName, &a.VendorWebsite, &a.RedemptionInstructions); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Redeem marks the assignment redeemed. Idempotent: redeeming twice keeps the
// original redeemed_at.
func (s *PostgresBenefitStore) Redeem(ctx context.Context, assignmentID, userID int) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE benefit_assignments
		SET is_redeemed=true, redeemed_at=COALESCE(redeemed_at, $1)
		WHERE id=$2 AND user_id=$3
	`, time.Now(), assignmentID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
