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

	"github.com/expertraah/marketplace-api/internal/domain/user/entity"
)

// ErrDuplicateProfile is returned when the user already has a profile
var ErrDuplicateProfile = errors.New("profile already exists for user")

const profileColumns = `id, user_id, fullname, bio, contact_number,
	portfolio_links, verification_docs, created_at, updated_at`

// ProfilePostgres implements profile storage for PostgreSQL
type ProfilePostgres struct {
	pool *pgxpool.Pool
}

// NewProfilePostgres creates a new PostgreSQL profile repository
func NewProfilePostgres(pool *pgxpool.Pool) *ProfilePostgres {
	return &ProfilePostgres{pool: pool}
}

// Create inserts a new profile
func (r *ProfilePostgres) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (
			id, user_id, fullname, bio, contact_number,
			portfolio_links, verification_docs, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Fullname,
		p.Bio,
		p.ContactNumber,
		p.PortfolioLinks,
		p.VerificationDocs,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateProfile
		}
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's profile; returns nil when not found
func (r *ProfilePostgres) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	return r.scanProfile(row)
}

// Update replaces the mutable profile fields
func (r *ProfilePostgres) Update(ctx context.Context, p *entity.Profile) error {
	query := `
		UPDATE profiles SET
			fullname = $2, bio = $3, contact_number = $4,
			portfolio_links = $5, verification_docs = $6, updated_at = $7
		WHERE user_id = $1
	`

	p.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, query,
		p.UserID,
		p.Fullname,
		p.Bio,
		p.ContactNumber,
		p.PortfolioLinks,
		p.VerificationDocs,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// scanProfile scans a single profile row
func (r *ProfilePostgres) scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Fullname,
		&p.Bio,
		&p.ContactNumber,
		&p.PortfolioLinks,
		&p.VerificationDocs,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	return &p, nil
}
