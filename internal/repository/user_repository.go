package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"panchayat/internal/apperr"
	"panchayat/internal/models"
)

var (
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	ErrEmailTaken   = apperr.New(apperr.KindConflict, "email_taken", "email is already registered")
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, phone, password_hash, role, reset_token_hash, reset_token_expiry, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user and returns the stored row, timestamps included.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (
			id, name, email, phone, password_hash, role, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
	))
	if isUniqueViolation(err) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, apperr.Storage("create user", err)
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByResetToken returns the user holding digest whose reset token has not expired at now.
func (r *UserRepository) FindByResetToken(ctx context.Context, digest []byte, now time.Time) (models.User, error) {
	return r.findOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1 AND reset_token_expiry > $2`,
		digest, now)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperr.Storage("list users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Storage("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error) {
	const query = `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, update.Name, update.Email, update.Phone))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return models.User{}, ErrUserNotFound
	case isUniqueViolation(err):
		return models.User{}, ErrEmailTaken
	case err != nil:
		return models.User{}, apperr.Storage("update profile", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) (models.User, error) {
	const query = `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, role))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, apperr.Storage("update role", err)
	}
	return user, nil
}

// UpdatePassword stores a new hash and clears any pending reset token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_token_expiry = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id string, digest []byte, expiry time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expiry = $3, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, "set reset token", query, id, digest, expiry)
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, "clear reset token", query, id)
}

// PurgeExpiredResetTokens clears reset tokens that expired before now and returns how many.
func (r *UserRepository) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry <= $1
	`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, apperr.Storage("purge reset tokens", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *UserRepository) execOne(ctx context.Context, op string, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, apperr.Storage("load user", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.ResetTokenHash,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
