package models

import (
	"time"
)

// Post represents a user-authored article with an optional uploaded image.
//
// Rows are hard-deleted: the schema relies on ON DELETE CASCADE from users
// and to comments/user_tags, and soft deletion would bypass those rules.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Body      string    `gorm:"size:255;not null" json:"body"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	ImagePath string    `json:"image"`
	Safe      bool      `gorm:"default:true" json:"safe"`
	CreatedAt time.Time `json:"created_at"`

	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// TaggedCount is not persisted; computed at query time
	TaggedCount int `gorm:"->;-:migration" json:"tagged_count"`
	// LastTagDate is the created_at of the most recent tag, nil when untagged (computed)
	LastTagDate *time.Time `gorm:"->;-:migration" json:"last_tag_date"`
	// VisitsCount comes from the counter store, never the database
	VisitsCount int64 `gorm:"-" json:"visits_count"`
}
