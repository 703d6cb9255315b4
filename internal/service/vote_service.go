package service

import (
	"context"
	"log/slog"

	"blogapi/internal/middleware"
	"blogapi/internal/models"
	"blogapi/internal/observability"
	"blogapi/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const voteConflictMessage = "Voting conflict occurred, please try again"

// VoteService toggles votes. Per (user, post) the states are no vote,
// upvoted and downvoted; repeating the current vote removes it and the
// opposite vote replaces it.
type VoteService struct {
	store repository.Store
}

func NewVoteService(store repository.Store) *VoteService {
	return &VoteService{store: store}
}

// Vote applies one transition and returns the post with fresh counters.
// The post row is locked for the duration so votes on the same post
// serialize.
func (s *VoteService) Vote(ctx context.Context, userID, postID uint, wantsUpvote bool) (post *models.Post, action models.VoteAction, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "VoteService", "Vote",
		attribute.Int64("post.id", int64(postID)),
		attribute.Bool("vote.upvote", wantsUpvote),
	)
	defer func() { observability.EndSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Posts().LockByID(ctx, postID); err != nil {
			return err
		}

		existing, err := tx.Votes().Find(ctx, userID, postID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			err = tx.Votes().Create(ctx, &models.Vote{UserID: userID, PostID: postID, VoteType: wantsUpvote})
			action = models.VoteAdded
		case existing.VoteType == wantsUpvote:
			err = tx.Votes().Delete(ctx, existing)
			action = models.VoteRemoved
		default:
			err = tx.Votes().SetType(ctx, existing, wantsUpvote)
			action = models.VoteUpdated
		}
		if err != nil {
			return err
		}

		post, err = tx.Posts().GetByID(ctx, postID)
		return err
	})
	if err != nil {
		if repository.IsUniqueViolation(err) || repository.IsSerializationFailure(err) {
			observability.VoteConflicts.Inc()
			middleware.Logger.WarnContext(ctx, "vote conflict",
				slog.Uint64("post_id", uint64(postID)),
				slog.String("error", err.Error()),
			)
			return nil, "", models.NewConflictError(voteConflictMessage, err).WithField("vote")
		}
		return nil, "", internal(ctx, "vote", err)
	}

	observability.VoteActions.WithLabelValues(string(action)).Inc()
	middleware.Logger.InfoContext(ctx, "vote applied",
		slog.Uint64("post_id", uint64(postID)),
		slog.String("action", string(action)),
	)
	return post, action, nil
}

// Status returns the user's current vote on the post, or nil.
func (s *VoteService) Status(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	vote, err := s.store.Votes().Find(ctx, userID, postID)
	if err != nil {
		return nil, internal(ctx, "vote status", err)
	}
	return vote, nil
}
