package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expertraah/marketplace-api/internal/domain/job/entity"
)

const jobColumns = `j.id, j.buyer_id, j.category, j.title, j.description,
	j.budget_min, j.budget_max, j.timeline, j.location, j.skills, j.attachments,
	j.status, j.proposals_count, j.hired_consultant_id, j.created_at, j.updated_at,
	u.id, u.name, u.email, u.profile_image, u.phone`

// JobPostgres implements job storage for PostgreSQL
type JobPostgres struct {
	pool *pgxpool.Pool
}

// NewJobPostgres creates a new PostgreSQL job repository
func NewJobPostgres(pool *pgxpool.Pool) *JobPostgres {
	return &JobPostgres{pool: pool}
}

// Create inserts a new job
func (r *JobPostgres) Create(ctx context.Context, j *entity.Job) error {
	query := `
		INSERT INTO jobs (
			id, buyer_id, category, title, description, budget_min, budget_max,
			timeline, location, skills, attachments, status, proposals_count,
			hired_consultant_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	now := time.Now()
	j.CreatedAt = now
	j.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		j.ID, j.BuyerID, j.Category, j.Title, j.Description, j.Budget.Min, j.Budget.Max,
		j.Timeline, j.Location, j.Skills, j.Attachments, j.Status, j.ProposalsCount,
		j.HiredConsultantID, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// GetByID retrieves a job with the buyer populated; returns nil when not found
func (r *JobPostgres) GetByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM jobs j JOIN users u ON u.id = j.buyer_id
		WHERE j.id = $1
	`, id)
	return r.scanJob(row)
}

// List retrieves jobs matching the filter, newest first
func (r *JobPostgres) List(ctx context.Context, f entity.ListFilter) ([]entity.Job, int64, error) {
	where := `WHERE ($1 = '' OR j.category = $1)
		AND ($2 = '' OR j.status = $2)
		AND j.budget_max >= $3
		AND ($4 <= 0 OR j.budget_min <= $4)
		AND ($5 = '' OR j.location ILIKE '%' || $5 || '%')`

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j `+where,
		f.Category, string(f.Status), f.MinBudget, f.MaxBudget, f.Location).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting jobs: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs j JOIN users u ON u.id = j.buyer_id
		`+where+`
		ORDER BY j.created_at DESC
		LIMIT $6 OFFSET $7
	`, f.Category, string(f.Status), f.MinBudget, f.MaxBudget, f.Location, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := r.scanJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListByBuyer retrieves a buyer's jobs, newest first
func (r *JobPostgres) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs j JOIN users u ON u.id = j.buyer_id
		WHERE j.buyer_id = $1
		ORDER BY j.created_at DESC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("querying buyer jobs: %w", err)
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

// Update replaces the mutable job fields
func (r *JobPostgres) Update(ctx context.Context, j *entity.Job) error {
	query := `
		UPDATE jobs SET
			category = $2, title = $3, description = $4, budget_min = $5, budget_max = $6,
			timeline = $7, location = $8, skills = $9, attachments = $10,
			status = $11, hired_consultant_id = $12, updated_at = $13
		WHERE id = $1
	`

	j.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, query,
		j.ID, j.Category, j.Title, j.Description, j.Budget.Min, j.Budget.Max,
		j.Timeline, j.Location, j.Skills, j.Attachments,
		j.Status, j.HiredConsultantID, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AdjustProposalsCount atomically changes the proposal counter
func (r *JobPostgres) AdjustProposalsCount(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET proposals_count = GREATEST(proposals_count + $2, 0), updated_at = $3
		WHERE id = $1
	`, id, delta, time.Now())
	if err != nil {
		return fmt.Errorf("adjusting proposals count: %w", err)
	}
	return nil
}

// Delete removes a job
func (r *JobPostgres) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByStatus returns job totals grouped by status
func (r *JobPostgres) CountByStatus(ctx context.Context) (map[entity.Status]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.Status]int64)
	for rows.Next() {
		var st entity.Status
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning job count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// scanJob scans a single job row with the joined buyer
func (r *JobPostgres) scanJob(row pgx.Row) (*entity.Job, error) {
	var j entity.Job
	var b entity.Buyer

	err := row.Scan(
		&j.ID, &j.BuyerID, &j.Category, &j.Title, &j.Description,
		&j.Budget.Min, &j.Budget.Max, &j.Timeline, &j.Location, &j.Skills, &j.Attachments,
		&j.Status, &j.ProposalsCount, &j.HiredConsultantID, &j.CreatedAt, &j.UpdatedAt,
		&b.ID, &b.Name, &b.Email, &b.ProfileImage, &b.Phone,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	j.Buyer = &b
	return &j, nil
}

// scanJobs scans multiple job rows
func (r *JobPostgres) scanJobs(rows pgx.Rows) ([]entity.Job, error) {
	var jobs []entity.Job
	for rows.Next() {
		var j entity.Job
		var b entity.Buyer

		err := rows.Scan(
			&j.ID, &j.BuyerID, &j.Category, &j.Title, &j.Description,
			&j.Budget.Min, &j.Budget.Max, &j.Timeline, &j.Location, &j.Skills, &j.Attachments,
			&j.Status, &j.ProposalsCount, &j.HiredConsultantID, &j.CreatedAt, &j.UpdatedAt,
			&b.ID, &b.Name, &b.Email, &b.ProfileImage, &b.Phone,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}

		j.Buyer = &b
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
