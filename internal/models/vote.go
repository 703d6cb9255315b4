package models

import (
	"encoding/json"
	"time"
)

// Vote records one user's up or down vote on a post. A (user, post) pair
// has at most one row.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:unique_user_post_vote,priority:1" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:unique_user_post_vote,priority:2;index" json:"post_id"`
	VoteType  bool      `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Post *Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Wire names for vote types.
const (
	VoteTypeUpvote   = "upvote"
	VoteTypeDownvote = "downvote"
)

// VoteAction is the transition applied by a vote request.
type VoteAction string

const (
	VoteAdded   VoteAction = "added"
	VoteRemoved VoteAction = "removed"
	VoteUpdated VoteAction = "updated"
)

// Kind returns "upvote" or "downvote".
func (v *Vote) Kind() string {
	if v.VoteType {
		return VoteTypeUpvote
	}
	return VoteTypeDownvote
}

// MarshalJSON renders vote_type by name instead of as a boolean.
func (v Vote) MarshalJSON() ([]byte, error) {
	type alias Vote
	return json.Marshal(struct {
		alias
		VoteType string `json:"vote_type"`
	}{alias: alias(v), VoteType: v.Kind()})
}
