package repository

import (
	"context"
	"errors"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

// VoteRepository defines persistence operations for votes.
type VoteRepository interface {
	// Find returns nil, nil when the user has not voted on the post.
	Find(ctx context.Context, userID, postID uint) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	SetType(ctx context.Context, vote *models.Vote, isUpvote bool) error
	Delete(ctx context.Context, vote *models.Vote) error
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Find(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) SetType(ctx context.Context, vote *models.Vote, isUpvote bool) error {
	if err := r.db.WithContext(ctx).Model(vote).Update("vote_type", isUpvote).Error; err != nil {
		return err
	}
	vote.VoteType = isUpvote
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Delete(vote).Error
}
