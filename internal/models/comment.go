package models

import (
	"encoding/json"
	"time"
)

// Comment is a reply on a post. Inactive comments are hidden from listings.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Post   *Post `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// MarshalJSON adds author_username when the author was loaded.
func (c Comment) MarshalJSON() ([]byte, error) {
	type alias Comment
	var username *string
	if c.Author != nil {
		name := c.Author.Username
		username = &name
	}
	return json.Marshal(struct {
		alias
		AuthorUsername *string `json:"author_username"`
	}{alias: alias(c), AuthorUsername: username})
}
