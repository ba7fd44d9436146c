package models

import (
	"time"
)

// Comment represents a reply attached to a Post.
//
// AuthorID is nullable: deleting the author keeps the comment and nulls the
// reference, while deleting the post removes the comment with it.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:255;not null" json:"body"`
	AuthorID  *uint     `gorm:"index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
