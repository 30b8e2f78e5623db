package models

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoll(options ...string) *Poll {
	return &Poll{
		ID:       "p1",
		Title:    "Road repair",
		Options:  NewPollOptions(options),
		IsActive: true,
	}
}

func tallies(p *Poll) []int {
	out := make([]int, len(p.Options))
	for i, o := range p.Options {
		out[i] = o.VoteCount
	}
	return out
}

func TestCastVote_ChangeAndDuplicate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := newPoll("A", "B")

	require.NoError(t, p.CastVote("u1", 0, now))
	assert.Equal(t, []int{1, 0}, tallies(p))
	require.Len(t, p.Votes, 1)
	assert.Equal(t, 0, p.Votes[0].OptionIndex)

	later := now.Add(time.Minute)
	require.NoError(t, p.CastVote("u1", 1, later))
	assert.Equal(t, []int{0, 1}, tallies(p))
	require.Len(t, p.Votes, 1)
	assert.Equal(t, 1, p.Votes[0].OptionIndex)
	assert.Equal(t, later, p.Votes[0].VotedAt)

	err := p.CastVote("u1", 1, later.Add(time.Minute))
	assert.True(t, errors.Is(err, ErrDuplicateVote))
	assert.Equal(t, []int{0, 1}, tallies(p))
	assert.Equal(t, later, p.Votes[0].VotedAt)
}

func TestCastVote_Inactive(t *testing.T) {
	p := newPoll("A", "B")
	p.IsActive = false

	err := p.CastVote("u1", 0, time.Now())
	assert.True(t, errors.Is(err, ErrPollInactive))
	assert.Empty(t, p.Votes)
	assert.Equal(t, []int{0, 0}, tallies(p))
}

func TestCastVote_Expired(t *testing.T) {
	now := time.Now()
	end := now.Add(-time.Hour)
	p := newPoll("A", "B")
	p.EndDate = &end

	err := p.CastVote("u1", 0, now)
	assert.True(t, errors.Is(err, ErrPollExpired))
	assert.Empty(t, p.Votes)
}

func TestCastVote_FutureEndDateAllowed(t *testing.T) {
	now := time.Now()
	end := now.Add(time.Hour)
	p := newPoll("A", "B")
	p.EndDate = &end

	assert.NoError(t, p.CastVote("u1", 1, now))
}

func TestCastVote_InvalidOption(t *testing.T) {
	p := newPoll("A", "B")

	for _, idx := range []int{5, 2, -1} {
		err := p.CastVote("u1", idx, time.Now())
		assert.True(t, errors.Is(err, ErrInvalidOption), "index %d", idx)
	}
	assert.Empty(t, p.Votes)
}

func TestCastVote_RandomSequenceKeepsTalliesConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := newPoll("A", "B", "C", "D")
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	now := time.Now()

	for i := 0; i < 500; i++ {
		user := users[rng.Intn(len(users))]
		option := rng.Intn(len(p.Options)+2) - 1
		_ = p.CastVote(user, option, now.Add(time.Duration(i)*time.Second))

		require.True(t, p.Consistent(), "step %d", i)
		require.Equal(t, len(p.Votes), p.TotalVotes(), "step %d", i)
	}
}

func TestApply_OptionsLockedOnceVoted(t *testing.T) {
	p := newPoll("A", "B")
	require.NoError(t, p.Apply(PollUpdate{Options: []string{"X", "Y", "Z"}}))
	assert.Len(t, p.Options, 3)

	require.NoError(t, p.CastVote("u1", 0, time.Now()))
	err := p.Apply(PollUpdate{Options: []string{"P", "Q"}})
	assert.True(t, errors.Is(err, ErrPollHasVotes))
	assert.Equal(t, "X", p.Options[0].Text)
}

func TestApply_FieldEdits(t *testing.T) {
	p := newPoll("A", "B")
	title := "Water tank"
	inactive := false
	end := time.Now().Add(24 * time.Hour)

	require.NoError(t, p.Apply(PollUpdate{Title: &title, IsActive: &inactive, EndDate: &end}))
	assert.Equal(t, "Water tank", p.Title)
	assert.False(t, p.IsActive)
	require.NotNil(t, p.EndDate)

	require.NoError(t, p.Apply(PollUpdate{ClearEnd: true}))
	assert.Nil(t, p.EndDate)
}
