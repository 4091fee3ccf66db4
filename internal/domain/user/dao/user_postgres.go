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

// ErrDuplicateEmail is returned when the email unique index is violated
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, account_type, roles,
	profile_image, phone, is_verified, is_banned, is_online, created_at, updated_at`

// UserPostgres implements user storage for PostgreSQL
type UserPostgres struct {
	pool *pgxpool.Pool
}

// NewUserPostgres creates a new PostgreSQL user repository
func NewUserPostgres(pool *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{pool: pool}
}

// Create inserts a new user
func (r *UserPostgres) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, account_type, roles,
			profile_image, phone, is_verified, is_banned, is_online, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.AccountType,
		u.Roles,
		u.ProfileImage,
		u.Phone,
		u.IsVerified,
		u.IsBanned,
		u.IsOnline,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID; returns nil when not found
func (r *UserPostgres) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return r.scanUser(row)
}

// GetByEmail retrieves a user by email; returns nil when not found
func (r *UserPostgres) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return r.scanUser(row)
}

// GetByRole retrieves the first user carrying the given role
func (r *UserPostgres) GetByRole(ctx context.Context, role string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE $1 = ANY(roles) ORDER BY created_at LIMIT 1`, role)
	return r.scanUser(row)
}

// List retrieves all users, newest first
func (r *UserPostgres) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// ListByAccountType retrieves users of one account type, newest first
func (r *UserPostgres) ListByAccountType(ctx context.Context, accountType entity.AccountType) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE account_type = $1 ORDER BY created_at DESC`, accountType)
	if err != nil {
		return nil, fmt.Errorf("querying users by account type: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// UpdatePassword replaces the stored password hash
func (r *UserPostgres) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetBanned flips the banned flag
func (r *UserPostgres) SetBanned(ctx context.Context, id uuid.UUID, banned bool) (*entity.User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET is_banned = $2, updated_at = $3 WHERE id = $1 RETURNING `+userColumns,
		id, banned, time.Now())
	return r.scanUser(row)
}

// Delete removes a user
func (r *UserPostgres) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountByAccountType returns user totals grouped by account type
func (r *UserPostgres) CountByAccountType(ctx context.Context) (map[entity.AccountType]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT account_type, COUNT(*) FROM users GROUP BY account_type`)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.AccountType]int64)
	for rows.Next() {
		var t entity.AccountType
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scanning user count: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// scanUser scans a single user row
func (r *UserPostgres) scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.AccountType,
		&u.Roles,
		&u.ProfileImage,
		&u.Phone,
		&u.IsVerified,
		&u.IsBanned,
		&u.IsOnline,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// scanUsers scans multiple user rows
func (r *UserPostgres) scanUsers(rows pgx.Rows) ([]entity.User, error) {
	var users []entity.User
	for rows.Next() {
		var u entity.User
		err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.AccountType,
			&u.Roles,
			&u.ProfileImage,
			&u.Phone,
			&u.IsVerified,
			&u.IsBanned,
			&u.IsOnline,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
