package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"panchayat/internal/models"
	"panchayat/internal/security"
	"panchayat/internal/service"
)

type createPollRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	Options     []string   `json:"options" binding:"required,min=2,max=20,dive,required,max=200"`
	IsActive    *bool      `json:"isActive"`
	EndDate     *time.Time `json:"endDate"`
}

type updatePollRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=200"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	IsActive     *bool      `json:"isActive"`
	EndDate      *time.Time `json:"endDate"`
	ClearEndDate bool       `json:"clearEndDate"`
	Options      []string   `json:"options" binding:"omitempty,min=2,max=20,dive,required,max=200"`
}

type voteRequest struct {
	OptionIndex *int `json:"optionIndex" binding:"required,min=0"`
}

type pollResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Options     []models.PollOption `json:"options"`
	TotalVotes  int                 `json:"totalVotes"`
	IsActive    bool                `json:"isActive"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	CreatedBy   string              `json:"createdBy"`
	MyVote      *int                `json:"myVote,omitempty"`
	Votes       []models.Vote       `json:"votes,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// toPollResponse shows the full ledger to admins only; everyone else sees tallies and
// their own choice.
func toPollResponse(poll models.Poll, viewer security.Identity) pollResponse {
	resp := pollResponse{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		Options:     poll.Options,
		TotalVotes:  poll.TotalVotes(),
		IsActive:    poll.IsActive,
		EndDate:     poll.EndDate,
		CreatedBy:   poll.CreatedBy,
		CreatedAt:   poll.CreatedAt,
		UpdatedAt:   poll.UpdatedAt,
	}
	if idx := poll.VoteOf(viewer.UserID); idx >= 0 {
		choice := poll.Votes[idx].OptionIndex
		resp.MyVote = &choice
	}
	if viewer.Role == models.UserRoleAdmin {
		resp.Votes = poll.Votes
	}
	return resp
}

func (h HandlerSet) ListPolls(c *gin.Context) {
	limit, offset := pagination(c)
	activeOnly := c.Query("active") == "true"

	polls, err := h.svc.Polls.List(c.Request.Context(), activeOnly, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	viewer := identity(c)
	items := make([]pollResponse, 0, len(polls))
	for _, poll := range polls {
		items = append(items, toPollResponse(poll, viewer))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) GetPoll(c *gin.Context) {
	poll, err := h.svc.Polls.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPollResponse(poll, identity(c)))
}

func (h HandlerSet) CreatePoll(c *gin.Context) {
	var req createPollRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	viewer := identity(c)
	poll, err := h.svc.Polls.Create(c.Request.Context(), viewer, service.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
		IsActive:    active,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPollResponse(poll, viewer))
}

func (h HandlerSet) UpdatePoll(c *gin.Context) {
	var req updatePollRequest
	if !bindJSON(c, &req) {
		return
	}

	poll, err := h.svc.Polls.Update(c.Request.Context(), c.Param("id"), models.PollUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
		EndDate:     req.EndDate,
		ClearEnd:    req.ClearEndDate,
		Options:     req.Options,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPollResponse(poll, identity(c)))
}

func (h HandlerSet) DeletePoll(c *gin.Context) {
	if err := h.svc.Polls.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Vote(c *gin.Context) {
	var req voteRequest
	if !bindJSON(c, &req) {
		return
	}

	viewer := identity(c)
	poll, err := h.svc.Polls.CastVote(c.Request.Context(), c.Param("id"), viewer, *req.OptionIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPollResponse(poll, viewer))
}

func (h HandlerSet) PollResults(c *gin.Context) {
	results, err := h.svc.Polls.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h HandlerSet) MyVote(c *gin.Context) {
	vote, err := h.svc.Polls.MyVote(c.Request.Context(), c.Param("id"), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if vote == nil {
		c.JSON(http.StatusOK, gin.H{"hasVoted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hasVoted":    true,
		"optionIndex": vote.OptionIndex,
		"votedAt":     vote.VotedAt,
	})
}
