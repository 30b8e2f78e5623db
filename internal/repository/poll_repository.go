package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"panchayat/internal/apperr"
	"panchayat/internal/models"
)

// ErrVersionConflict means the poll changed between load and save.
var ErrVersionConflict = apperr.New(apperr.KindConflict, "version_conflict", "poll was modified concurrently")

const pollColumns = `id, title, description, options, votes, is_active, end_date, created_by, version, created_at, updated_at`

type PollRepository struct {
	db DBTX
}

func NewPollRepository(db DBTX) *PollRepository {
	return &PollRepository{db: db}
}

func (r *PollRepository) Create(ctx context.Context, poll models.Poll) (models.Poll, error) {
	const query = `
		INSERT INTO polls (
			id, title, description, options, votes, is_active, end_date, created_by, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW()
		)
		RETURNING ` + pollColumns

	if poll.Votes == nil {
		poll.Votes = []models.Vote{}
	}

	created, err := scanPoll(r.db.QueryRow(ctx, query,
		poll.ID,
		poll.Title,
		poll.Description,
		poll.Options,
		poll.Votes,
		poll.IsActive,
		poll.EndDate,
		poll.CreatedBy,
	))
	if err != nil {
		return models.Poll{}, apperr.Storage("create poll", err)
	}
	return created, nil
}

func (r *PollRepository) GetByID(ctx context.Context, id string) (models.Poll, error) {
	poll, err := scanPoll(r.db.QueryRow(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Poll{}, models.ErrPollNotFound
		}
		return models.Poll{}, apperr.Storage("load poll", err)
	}
	return poll, nil
}

func (r *PollRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Poll, error) {
	const query = `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE ($1 = FALSE OR is_active)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, activeOnly, limit, offset)
	if err != nil {
		return nil, apperr.Storage("list polls", err)
	}
	defer rows.Close()

	var polls []models.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, apperr.Storage("scan poll", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list polls", err)
	}
	return polls, nil
}

// Save writes the whole aggregate if the stored version still equals poll.Version and
// returns the stored result with the incremented version.
func (r *PollRepository) Save(ctx context.Context, poll models.Poll) (models.Poll, error) {
	const query = `
		UPDATE polls
		SET title = $3,
		    description = $4,
		    options = $5,
		    votes = $6,
		    is_active = $7,
		    end_date = $8,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + pollColumns

	if poll.Votes == nil {
		poll.Votes = []models.Vote{}
	}

	saved, err := scanPoll(r.db.QueryRow(ctx, query,
		poll.ID,
		poll.Version,
		poll.Title,
		poll.Description,
		poll.Options,
		poll.Votes,
		poll.IsActive,
		poll.EndDate,
	))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Poll{}, apperr.Storage("save poll", err)
	}

	if _, lookupErr := r.GetByID(ctx, poll.ID); lookupErr != nil {
		return models.Poll{}, lookupErr
	}
	return models.Poll{}, ErrVersionConflict
}

func (r *PollRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage("delete poll", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrPollNotFound
	}
	return nil
}

// DeactivateExpired closes active polls whose end date has passed.
func (r *PollRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE polls
		SET is_active = FALSE, version = version + 1, updated_at = NOW()
		WHERE is_active AND end_date IS NOT NULL AND end_date < $1
	`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, apperr.Storage("deactivate expired polls", err)
	}
	return cmd.RowsAffected(), nil
}

func scanPoll(row pgx.Row) (models.Poll, error) {
	var poll models.Poll
	err := row.Scan(
		&poll.ID,
		&poll.Title,
		&poll.Description,
		&poll.Options,
		&poll.Votes,
		&poll.IsActive,
		&poll.EndDate,
		&poll.CreatedBy,
		&poll.Version,
		&poll.CreatedAt,
		&poll.UpdatedAt,
	)
	return poll, err
}
