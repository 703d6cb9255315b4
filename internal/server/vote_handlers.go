package server

import (
	"time"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// voteResult is the post with fresh counters and the applied transition.
type voteResult struct {
	*models.Post
	VoteAction models.VoteAction `json:"vote_action"`
}

type voteStatusVote struct {
	VoteType  string    `json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}

type voteStatus struct {
	HasVoted bool            `json:"has_voted"`
	Vote     *voteStatusVote `json:"vote"`
}

// VoteOnPost handles POST /api/posts/:id/vote
// @Summary Vote on a post
// @Description Same type again removes the vote, the other type switches it.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body validation.VoteRequest true "upvote or downvote"
// @Success 200 {object} models.Response{data=voteResult}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id}/vote [post]
func (s *Server) VoteOnPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}
	var req validation.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	upvote, err := req.Validate()
	if err != nil {
		return respondError(c, "Validation failed", err)
	}

	user, _ := middleware.CurrentUser(c)
	post, action, err := s.votes.Vote(c.UserContext(), user.ID, postID, upvote)
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			return respondError(c, "Vote failed", err)
		}
		return respondError(c, "", err)
	}

	return models.RespondOK(c, fiber.StatusOK, "Vote "+string(action)+" successfully",
		voteResult{Post: post, VoteAction: action})
}

// GetVoteStatus handles GET /api/posts/:id/vote-status
// @Summary Current user's vote on a post
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=voteStatus}
// @Router /posts/{id}/vote-status [get]
func (s *Server) GetVoteStatus(c *fiber.Ctx) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return nil
	}

	user, _ := middleware.CurrentUser(c)
	vote, err := s.votes.Status(c.UserContext(), user.ID, postID)
	if err != nil {
		return respondError(c, "Error retrieving vote status", err)
	}

	status := voteStatus{HasVoted: vote != nil}
	if vote != nil {
		status.Vote = &voteStatusVote{VoteType: vote.Kind(), CreatedAt: vote.CreatedAt}
	}
	return models.RespondOK(c, fiber.StatusOK, "Vote status retrieved", status)
}
