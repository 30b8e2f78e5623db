package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"panchayat/internal/apperr"
	"panchayat/internal/ids"
	"panchayat/internal/models"
	"panchayat/internal/repository"
	"panchayat/internal/security"
)

// maxSaveAttempts bounds how often a poll write is re-applied after a version conflict.
const maxSaveAttempts = 5

var ErrPollBusy = apperr.New(apperr.KindConflict, "poll_busy", "poll is being updated, please retry")

type PollStore interface {
	Create(ctx context.Context, poll models.Poll) (models.Poll, error)
	GetByID(ctx context.Context, id string) (models.Poll, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Poll, error)
	Save(ctx context.Context, poll models.Poll) (models.Poll, error)
	Delete(ctx context.Context, id string) error
}

type PollService struct {
	polls PollStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewPollService(polls PollStore, log zerolog.Logger) *PollService {
	return &PollService{
		polls: polls,
		now:   time.Now,
		log:   log,
	}
}

type CreatePollInput struct {
	Title       string
	Description string
	Options     []string
	IsActive    bool
	EndDate     *time.Time
}

type OptionResult struct {
	Text       string  `json:"text"`
	VoteCount  int     `json:"voteCount"`
	Percentage float64 `json:"percentage"`
}

type PollResults struct {
	PollID     string         `json:"pollId"`
	Title      string         `json:"title"`
	TotalVotes int            `json:"totalVotes"`
	Options    []OptionResult `json:"options"`
}

func (s *PollService) Create(ctx context.Context, actor security.Identity, input CreatePollInput) (models.Poll, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Poll{}, apperr.Validation("title is required")
	}

	texts := make([]string, 0, len(input.Options))
	for _, text := range input.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			return models.Poll{}, apperr.Validation("option text cannot be empty")
		}
		texts = append(texts, text)
	}
	if len(texts) < models.MinPollOptions {
		return models.Poll{}, apperr.Validation("a poll needs at least two options")
	}

	return s.polls.Create(ctx, models.Poll{
		ID:          ids.New(),
		Title:       title,
		Description: input.Description,
		Options:     models.NewPollOptions(texts),
		Votes:       []models.Vote{},
		IsActive:    input.IsActive,
		EndDate:     input.EndDate,
		CreatedBy:   actor.UserID,
	})
}

func (s *PollService) List(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Poll, error) {
	return s.polls.List(ctx, activeOnly, limit, offset)
}

func (s *PollService) Get(ctx context.Context, id string) (models.Poll, error) {
	return s.polls.GetByID(ctx, id)
}

func (s *PollService) Update(ctx context.Context, id string, update models.PollUpdate) (models.Poll, error) {
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return models.Poll{}, apperr.Validation("title cannot be empty")
	}
	return s.mutate(ctx, id, func(poll *models.Poll) error {
		return poll.Apply(update)
	})
}

func (s *PollService) Delete(ctx context.Context, id string) error {
	return s.polls.Delete(ctx, id)
}

// CastVote records the caller's vote and returns the poll as stored afterwards.
func (s *PollService) CastVote(ctx context.Context, pollID string, voter security.Identity, optionIndex int) (models.Poll, error) {
	return s.mutate(ctx, pollID, func(poll *models.Poll) error {
		return poll.CastVote(voter.UserID, optionIndex, s.now())
	})
}

func (s *PollService) Results(ctx context.Context, id string) (PollResults, error) {
	poll, err := s.polls.GetByID(ctx, id)
	if err != nil {
		return PollResults{}, err
	}

	total := poll.TotalVotes()
	results := PollResults{
		PollID:     poll.ID,
		Title:      poll.Title,
		TotalVotes: total,
		Options:    make([]OptionResult, 0, len(poll.Options)),
	}
	for _, option := range poll.Options {
		pct := 0.0
		if total > 0 {
			pct = float64(option.VoteCount) * 100 / float64(total)
		}
		results.Options = append(results.Options, OptionResult{
			Text:       option.Text,
			VoteCount:  option.VoteCount,
			Percentage: pct,
		})
	}
	return results, nil
}

// MyVote returns the caller's ledger entry, or nil when they have not voted.
func (s *PollService) MyVote(ctx context.Context, pollID string, voter security.Identity) (*models.Vote, error) {
	poll, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	idx := poll.VoteOf(voter.UserID)
	if idx < 0 {
		return nil, nil
	}
	vote := poll.Votes[idx]
	return &vote, nil
}

// mutate loads the poll, applies fn and saves it, reloading and re-applying fn when
// another writer saved in between.
func (s *PollService) mutate(ctx context.Context, id string, fn func(*models.Poll) error) (models.Poll, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		poll, err := s.polls.GetByID(ctx, id)
		if err != nil {
			return models.Poll{}, err
		}
		if err := fn(&poll); err != nil {
			return models.Poll{}, err
		}

		saved, err := s.polls.Save(ctx, poll)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return models.Poll{}, err
		}
		s.log.Debug().Str("poll_id", id).Int("attempt", attempt).Msg("poll version conflict")

		if err := ctx.Err(); err != nil {
			return models.Poll{}, err
		}
	}
	return models.Poll{}, ErrPollBusy
}
