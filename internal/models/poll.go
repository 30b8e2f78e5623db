package models

import (
	"time"

	"panchayat/internal/apperr"
)

var (
	ErrPollNotFound  = apperr.New(apperr.KindNotFound, "poll_not_found", "poll not found")
	ErrPollInactive  = apperr.New(apperr.KindValidation, "poll_inactive", "poll is not active")
	ErrPollExpired   = apperr.New(apperr.KindValidation, "poll_expired", "poll has ended")
	ErrInvalidOption = apperr.New(apperr.KindValidation, "invalid_option", "option index out of range")
	ErrDuplicateVote = apperr.New(apperr.KindConflict, "duplicate_vote", "you have already voted for this option")
	ErrPollHasVotes  = apperr.New(apperr.KindConflict, "poll_has_votes", "options cannot change once votes are cast")
)

const MinPollOptions = 2

type PollOption struct {
	Text      string `json:"text"`
	VoteCount int    `json:"voteCount"`
}

type Vote struct {
	UserID      string    `json:"userId"`
	OptionIndex int       `json:"optionIndex"`
	VotedAt     time.Time `json:"votedAt"`
}

// Poll is a single aggregate: the option tallies and the vote ledger are always
// written together. Version increases on every write.
type Poll struct {
	ID          string
	Title       string
	Description string
	Options     []PollOption
	Votes       []Vote
	IsActive    bool
	EndDate     *time.Time
	CreatedBy   string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PollUpdate struct {
	Title       *string
	Description *string
	IsActive    *bool
	EndDate     *time.Time
	ClearEnd    bool
	Options     []string
}

func NewPollOptions(texts []string) []PollOption {
	options := make([]PollOption, 0, len(texts))
	for _, text := range texts {
		options = append(options, PollOption{Text: text})
	}
	return options
}

// VoteOf returns the index of userID's ledger entry, or -1.
func (p *Poll) VoteOf(userID string) int {
	for i, v := range p.Votes {
		if v.UserID == userID {
			return i
		}
	}
	return -1
}

// CastVote records userID's vote for optionIndex, moving an existing vote if the
// user already voted for a different option. On error the poll is unchanged.
func (p *Poll) CastVote(userID string, optionIndex int, now time.Time) error {
	if !p.IsActive {
		return ErrPollInactive
	}
	if p.EndDate != nil && p.EndDate.Before(now) {
		return ErrPollExpired
	}
	if optionIndex < 0 || optionIndex >= len(p.Options) {
		return ErrInvalidOption
	}

	existing := p.VoteOf(userID)
	if existing < 0 {
		p.Votes = append(p.Votes, Vote{UserID: userID, OptionIndex: optionIndex, VotedAt: now})
		p.Options[optionIndex].VoteCount++
		return nil
	}

	previous := p.Votes[existing].OptionIndex
	if previous == optionIndex {
		return ErrDuplicateVote
	}

	if previous >= 0 && previous < len(p.Options) && p.Options[previous].VoteCount > 0 {
		p.Options[previous].VoteCount--
	}
	p.Options[optionIndex].VoteCount++
	p.Votes[existing].OptionIndex = optionIndex
	p.Votes[existing].VotedAt = now
	return nil
}

// Apply copies the set fields of u onto the poll.
func (p *Poll) Apply(u PollUpdate) error {
	if u.Options != nil {
		if len(p.Votes) > 0 {
			return ErrPollHasVotes
		}
		if len(u.Options) < MinPollOptions {
			return apperr.Validation("a poll needs at least two options")
		}
		p.Options = NewPollOptions(u.Options)
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.ClearEnd {
		p.EndDate = nil
	} else if u.EndDate != nil {
		end := *u.EndDate
		p.EndDate = &end
	}
	return nil
}

// Consistent reports whether the tallies match the ledger.
func (p *Poll) Consistent() bool {
	counts := make([]int, len(p.Options))
	seen := make(map[string]struct{}, len(p.Votes))
	for _, v := range p.Votes {
		if v.OptionIndex < 0 || v.OptionIndex >= len(p.Options) {
			return false
		}
		if _, dup := seen[v.UserID]; dup {
			return false
		}
		seen[v.UserID] = struct{}{}
		counts[v.OptionIndex]++
	}
	for i, option := range p.Options {
		if option.VoteCount != counts[i] {
			return false
		}
	}
	return true
}

func (p *Poll) TotalVotes() int {
	total := 0
	for _, option := range p.Options {
		total += option.VoteCount
	}
	return total
}
