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

	"github.com/expertraah/marketplace-api/internal/domain/consultant/entity"
)

// ErrDuplicateConsultant is returned when the user already has a consultant record
var ErrDuplicateConsultant = errors.New("consultant already exists for user")

const uniqueViolation = "23505"

const consultantColumns = `c.id, c.user_id, c.title, c.bio, c.specialization, c.hourly_rate,
	c.availability, c.experience, c.skills, c.id_card_front, c.id_card_back,
	c.supporting_documents, c.is_verified, c.rating, c.total_projects, c.total_earnings,
	c.created_at, c.updated_at,
	u.id, u.name, u.email, u.profile_image, u.phone, u.is_online`

// ConsultantPostgres implements consultant storage for PostgreSQL
type ConsultantPostgres struct {
	pool *pgxpool.Pool
}

// NewConsultantPostgres creates a new PostgreSQL consultant repository
func NewConsultantPostgres(pool *pgxpool.Pool) *ConsultantPostgres {
	return &ConsultantPostgres{pool: pool}
}

// Create inserts a new consultant record
func (r *ConsultantPostgres) Create(ctx context.Context, c *entity.Consultant) error {
	query := `
		INSERT INTO consultants (
			id, user_id, title, bio, specialization, hourly_rate, availability,
			experience, skills, id_card_front, id_card_back, supporting_documents,
			is_verified, rating, total_projects, total_earnings, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.Title, c.Bio, c.Specialization, c.HourlyRate, c.Availability,
		c.Experience, c.Skills, c.IDCardFront, c.IDCardBack, c.SupportingDocuments,
		c.IsVerified, c.Rating, c.TotalProjects, c.TotalEarnings, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateConsultant
		}
		return fmt.Errorf("inserting consultant: %w", err)
	}

	return nil
}

// GetByID retrieves a consultant by ID with the owning user populated;
// returns nil when not found
func (r *ConsultantPostgres) GetByID(ctx context.Context, id uuid.UUID) (*entity.Consultant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+consultantColumns+`
		FROM consultants c JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`, id)
	return r.scanConsultant(row)
}

// GetByUserID retrieves a consultant by the owning user; returns nil when none
func (r *ConsultantPostgres) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Consultant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+consultantColumns+`
		FROM consultants c JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
	`, userID)
	return r.scanConsultant(row)
}

// List retrieves consultants matching the filter, highest rated first
func (r *ConsultantPostgres) List(ctx context.Context, f entity.ListFilter) ([]entity.Consultant, int64, error) {
	where := `WHERE ($1 = '' OR $1 = ANY(c.specialization))
		AND ($2 = '' OR c.availability = $2)
		AND c.rating >= $3
		AND (NOT $4 OR c.is_verified)`

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM consultants c `+where,
		f.Specialization, string(f.Availability), f.MinRating, f.VerifiedOnly).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting consultants: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+consultantColumns+`
		FROM consultants c JOIN users u ON u.id = c.user_id
		`+where+`
		ORDER BY c.rating DESC, c.created_at DESC
		LIMIT $5 OFFSET $6
	`, f.Specialization, string(f.Availability), f.MinRating, f.VerifiedOnly, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying consultants: %w", err)
	}
	defer rows.Close()

	consultants, err := r.scanConsultants(rows)
	if err != nil {
		return nil, 0, err
	}
	return consultants, total, nil
}

// ListPending retrieves unverified consultants that have submitted identity
// documents, oldest first
func (r *ConsultantPostgres) ListPending(ctx context.Context) ([]entity.Consultant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+consultantColumns+`
		FROM consultants c JOIN users u ON u.id = c.user_id
		WHERE NOT c.is_verified AND c.id_card_front <> ''
		ORDER BY c.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pending consultants: %w", err)
	}
	defer rows.Close()

	return r.scanConsultants(rows)
}

// Update replaces the mutable consultant fields
func (r *ConsultantPostgres) Update(ctx context.Context, c *entity.Consultant) error {
	query := `
		UPDATE consultants SET
			title = $2, bio = $3, specialization = $4, hourly_rate = $5,
			availability = $6, experience = $7, skills = $8,
			id_card_front = $9, id_card_back = $10, supporting_documents = $11,
			is_verified = $12, updated_at = $13
		WHERE id = $1
	`

	c.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, query,
		c.ID, c.Title, c.Bio, c.Specialization, c.HourlyRate,
		c.Availability, c.Experience, c.Skills,
		c.IDCardFront, c.IDCardBack, c.SupportingDocuments,
		c.IsVerified, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating consultant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetVerified flips the verification flag
func (r *ConsultantPostgres) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*entity.Consultant, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE consultants SET is_verified = $2, updated_at = $3 WHERE id = $1`,
		id, verified, time.Now())
	if err != nil {
		return nil, fmt.Errorf("setting verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// SetRating replaces the aggregate rating
func (r *ConsultantPostgres) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE consultants SET rating = $2, updated_at = $3 WHERE id = $1`,
		id, rating, time.Now())
	if err != nil {
		return fmt.Errorf("setting rating: %w", err)
	}
	return nil
}

// Delete removes a consultant record
func (r *ConsultantPostgres) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM consultants WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting consultant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the total number of consultants, split by verification
func (r *ConsultantPostgres) Count(ctx context.Context) (total, pending int64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_verified) FROM consultants`).Scan(&total, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("counting consultants: %w", err)
	}
	return total, pending, nil
}

// scanConsultant scans a single consultant row with the joined user
func (r *ConsultantPostgres) scanConsultant(row pgx.Row) (*entity.Consultant, error) {
	var c entity.Consultant
	var u entity.Identity

	err := row.Scan(
		&c.ID, &c.UserID, &c.Title, &c.Bio, &c.Specialization, &c.HourlyRate,
		&c.Availability, &c.Experience, &c.Skills, &c.IDCardFront, &c.IDCardBack,
		&c.SupportingDocuments, &c.IsVerified, &c.Rating, &c.TotalProjects, &c.TotalEarnings,
		&c.CreatedAt, &c.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.ProfileImage, &u.Phone, &u.IsOnline,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning consultant: %w", err)
	}

	c.User = &u
	return &c, nil
}

// scanConsultants scans multiple consultant rows
func (r *ConsultantPostgres) scanConsultants(rows pgx.Rows) ([]entity.Consultant, error) {
	var consultants []entity.Consultant
	for rows.Next() {
		var c entity.Consultant
		var u entity.Identity

		err := rows.Scan(
			&c.ID, &c.UserID, &c.Title, &c.Bio, &c.Specialization, &c.HourlyRate,
			&c.Availability, &c.Experience, &c.Skills, &c.IDCardFront, &c.IDCardBack,
			&c.SupportingDocuments, &c.IsVerified, &c.Rating, &c.TotalProjects, &c.TotalEarnings,
			&c.CreatedAt, &c.UpdatedAt,
			&u.ID, &u.Name, &u.Email, &u.ProfileImage, &u.Phone, &u.IsOnline,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning consultant row: %w", err)
		}

		c.User = &u
		consultants = append(consultants, c)
	}
	return consultants, rows.Err()
}
