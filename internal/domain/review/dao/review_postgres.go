package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expertraah/marketplace-api/internal/domain/review/entity"
)

// ErrDuplicateReview is returned when the buyer already reviewed the job
var ErrDuplicateReview = errors.New("review already exists for job and buyer")

const uniqueViolation = "23505"

const reviewColumns = `r.id, r.job_id, r.buyer_id, r.consultant_id, r.rating, r.comment,
	r.created_at, r.updated_at, u.id, u.name, u.profile_image`

// ReviewPostgres implements review storage for PostgreSQL
type ReviewPostgres struct {
	pool *pgxpool.Pool
}

// NewReviewPostgres creates a new PostgreSQL review repository
func NewReviewPostgres(pool *pgxpool.Pool) *ReviewPostgres {
	return &ReviewPostgres{pool: pool}
}

// Create inserts the review and refreshes the consultant's average rating in
// one transaction
func (r *ReviewPostgres) Create(ctx context.Context, rev *entity.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	rev.CreatedAt = now
	rev.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, job_id, buyer_id, consultant_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rev.ID, rev.JobID, rev.BuyerID, rev.ConsultantID, rev.Rating, rev.Comment, rev.CreatedAt, rev.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateReview
		}
		return fmt.Errorf("inserting review: %w", err)
	}

	if err := refreshRating(ctx, tx, rev.ConsultantID, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a review; returns nil when not found
func (r *ReviewPostgres) GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.buyer_id
		WHERE r.id = $1
	`, id)
	return scanReview(row)
}

// ListByConsultant retrieves a consultant's reviews, newest first
func (r *ReviewPostgres) ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.buyer_id
		WHERE r.consultant_id = $1
		ORDER BY r.created_at DESC
	`, consultantID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		var rev entity.Review
		var b entity.Reviewer
		err := rows.Scan(
			&rev.ID, &rev.JobID, &rev.BuyerID, &rev.ConsultantID, &rev.Rating, &rev.Comment,
			&rev.CreatedAt, &rev.UpdatedAt, &b.ID, &b.Name, &b.ProfileImage,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		rev.Buyer = &b
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// Delete removes the review and refreshes the consultant's average rating in
// one transaction
func (r *ReviewPostgres) Delete(ctx context.Context, rev *entity.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, rev.ID)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	if err := refreshRating(ctx, tx, rev.ConsultantID, time.Now()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Count returns the total number of reviews
func (r *ReviewPostgres) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	return total, nil
}

// refreshRating recomputes the consultant's average from surviving reviews
func refreshRating(ctx context.Context, tx pgx.Tx, consultantID uuid.UUID, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE consultants SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE consultant_id = $1), 0),
			updated_at = $2
		WHERE id = $1
	`, consultantID, now)
	if err != nil {
		return fmt.Errorf("refreshing consultant rating: %w", err)
	}
	return nil
}

func scanReview(row pgx.Row) (*entity.Review, error) {
	var rev entity.Review
	var b entity.Reviewer
	err := row.Scan(
		&rev.ID, &rev.JobID, &rev.BuyerID, &rev.ConsultantID, &rev.Rating, &rev.Comment,
		&rev.CreatedAt, &rev.UpdatedAt, &b.ID, &b.Name, &b.ProfileImage,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning review: %w", err)
	}
	rev.Buyer = &b
	return &rev, nil
}
