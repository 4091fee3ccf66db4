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

	"github.com/expertraah/marketplace-api/internal/domain/proposal/entity"
)

// ErrDuplicateProposal is returned when the consultant already bid on the job
var ErrDuplicateProposal = errors.New("proposal already exists for job and consultant")

const uniqueViolation = "23505"

const proposalColumns = `p.id, p.job_id, p.consultant_id, p.bid_amount, p.delivery_time,
	p.cover_letter, p.status, p.created_at, p.updated_at,
	j.id, j.title, j.category, j.budget_min, j.budget_max, j.status, j.buyer_id,
	c.id, c.user_id, u.name, c.title, c.hourly_rate, c.rating`

const proposalJoins = `FROM proposals p
	JOIN jobs j ON j.id = p.job_id
	JOIN consultants c ON c.id = p.consultant_id
	JOIN users u ON u.id = c.user_id`

// ProposalPostgres implements proposal storage for PostgreSQL
type ProposalPostgres struct {
	pool *pgxpool.Pool
}

// NewProposalPostgres creates a new PostgreSQL proposal repository
func NewProposalPostgres(pool *pgxpool.Pool) *ProposalPostgres {
	return &ProposalPostgres{pool: pool}
}

// Create inserts a proposal and bumps the job's proposal counter atomically
func (r *ProposalPostgres) Create(ctx context.Context, p *entity.Proposal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO proposals (id, job_id, consultant_id, bid_amount, delivery_time, cover_letter, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.JobID, p.ConsultantID, p.BidAmount, p.DeliveryTime, p.CoverLetter, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateProposal
		}
		return fmt.Errorf("inserting proposal: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE jobs SET proposals_count = proposals_count + 1, updated_at = $2 WHERE id = $1`,
		p.JobID, now)
	if err != nil {
		return fmt.Errorf("bumping proposals count: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a proposal with references populated; nil when not found
func (r *ProposalPostgres) GetByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` `+proposalJoins+` WHERE p.id = $1`, id)
	return r.scanProposal(row)
}

// List retrieves proposals, optionally filtered by status, newest first
func (r *ProposalPostgres) List(ctx context.Context, status entity.Status, limit, offset int) ([]entity.Proposal, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM proposals p WHERE ($1 = '' OR p.status = $1)`, string(status)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting proposals: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` `+proposalJoins+`
		WHERE ($1 = '' OR p.status = $1)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying proposals: %w", err)
	}
	defer rows.Close()

	proposals, err := r.scanProposals(rows)
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// ListByJob retrieves a job's proposals, newest first
func (r *ProposalPostgres) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Proposal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+proposalColumns+` `+proposalJoins+` WHERE p.job_id = $1 ORDER BY p.created_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("querying job proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(rows)
}

// ListByConsultant retrieves a consultant's proposals, newest first
func (r *ProposalPostgres) ListByConsultant(ctx context.Context, consultantID uuid.UUID) ([]entity.Proposal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+proposalColumns+` `+proposalJoins+` WHERE p.consultant_id = $1 ORDER BY p.created_at DESC`, consultantID)
	if err != nil {
		return nil, fmt.Errorf("querying consultant proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(rows)
}

// ListByBuyer retrieves proposals received across a buyer's jobs, newest first
func (r *ProposalPostgres) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]entity.Proposal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+proposalColumns+` `+proposalJoins+` WHERE j.buyer_id = $1 ORDER BY p.created_at DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("querying buyer proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(rows)
}

// Update replaces the mutable bid fields
func (r *ProposalPostgres) Update(ctx context.Context, p *entity.Proposal) error {
	p.UpdatedAt = time.Now()
	tag, err := r.pool.Exec(ctx, `
		UPDATE proposals SET bid_amount = $2, delivery_time = $3, cover_letter = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.BidAmount, p.DeliveryTime, p.CoverLetter, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Accept marks the proposal accepted, rejects its pending siblings and moves
// the job to in_progress with the hired consultant, all in one transaction
func (r *ProposalPostgres) Accept(ctx context.Context, proposalID, jobID, consultantID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	_, err = tx.Exec(ctx,
		`UPDATE proposals SET status = $2, updated_at = $3 WHERE id = $1`,
		proposalID, entity.StatusAccepted, now)
	if err != nil {
		return fmt.Errorf("accepting proposal: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = $4
		WHERE job_id = $1 AND id <> $2 AND status = $5
	`, jobID, proposalID, entity.StatusRejected, now, entity.StatusPending)
	if err != nil {
		return fmt.Errorf("rejecting sibling proposals: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE jobs SET status = 'in_progress', hired_consultant_id = $2, updated_at = $3
		WHERE id = $1
	`, jobID, consultantID, now)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}

	return tx.Commit(ctx)
}

// SetStatus updates only the proposal status
func (r *ProposalPostgres) SetStatus(ctx context.Context, id uuid.UUID, status entity.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE proposals SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return fmt.Errorf("setting proposal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a proposal and decrements the job's counter atomically
func (r *ProposalPostgres) Delete(ctx context.Context, id, jobID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx,
		`UPDATE jobs SET proposals_count = GREATEST(proposals_count - 1, 0), updated_at = $2 WHERE id = $1`,
		jobID, time.Now())
	if err != nil {
		return fmt.Errorf("decrementing proposals count: %w", err)
	}

	return tx.Commit(ctx)
}

// Count returns the total number of proposals
func (r *ProposalPostgres) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting proposals: %w", err)
	}
	return total, nil
}

// scanProposal scans a single proposal row with references
func (r *ProposalPostgres) scanProposal(row pgx.Row) (*entity.Proposal, error) {
	var p entity.Proposal
	var j entity.JobRef
	var c entity.ConsultantRef

	err := row.Scan(
		&p.ID, &p.JobID, &p.ConsultantID, &p.BidAmount, &p.DeliveryTime,
		&p.CoverLetter, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&j.ID, &j.Title, &j.Category, &j.BudgetMin, &j.BudgetMax, &j.Status, &j.BuyerID,
		&c.ID, &c.UserID, &c.Name, &c.Title, &c.HourlyRate, &c.Rating,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning proposal: %w", err)
	}

	p.Job = &j
	p.Consultant = &c
	return &p, nil
}

// scanProposals scans multiple proposal rows
func (r *ProposalPostgres) scanProposals(rows pgx.Rows) ([]entity.Proposal, error) {
	var proposals []entity.Proposal
	for rows.Next() {
		var p entity.Proposal
		var j entity.JobRef
		var c entity.ConsultantRef

		err := rows.Scan(
			&p.ID, &p.JobID, &p.ConsultantID, &p.BidAmount, &p.DeliveryTime,
			&p.CoverLetter, &p.Status, &p.CreatedAt, &p.UpdatedAt,
			&j.ID, &j.Title, &j.Category, &j.BudgetMin, &j.BudgetMax, &j.Status, &j.BuyerID,
			&c.ID, &c.UserID, &c.Name, &c.Title, &c.HourlyRate, &c.Rating,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning proposal row: %w", err)
		}

		p.Job = &j
		p.Consultant = &c
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}
