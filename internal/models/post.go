// Package models contains data structures for the blog's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post.
type Post struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:200;not null;index" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`
	// Author is a free-text display name and may differ from the owning user's username.
	Author      string    `gorm:"size:100;not null" json:"author"`
	AuthorID    *uint     `gorm:"index" json:"author_id"`
	AuthorUser  *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	PublishedAt time.Time `gorm:"not null;index" json:"published_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
	IsPublished bool      `gorm:"not null;default:true;index" json:"is_published"`

	// Computed at query time, never persisted.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
	Upvotes      int64 `gorm:"->;-:migration" json:"upvotes"`
	Downvotes    int64 `gorm:"->;-:migration" json:"downvotes"`
	VoteScore    int64 `gorm:"->;-:migration" json:"vote_score"`
}

// BeforeCreate stamps the publication time when the caller left it empty.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	return nil
}

// IsAuthoredBy reports whether the post is owned by the given user.
func (p *Post) IsAuthoredBy(userID uint) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}

// Post list sort keys.
const (
	SortByPublishedAt = "published_at"
	SortByTitle       = "title"
	SortByVoteScore   = "vote_score"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)
