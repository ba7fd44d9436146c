package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// PostFilter translates listing query parameters into store predicates.
// All set fields combine with AND semantics.
type PostFilter struct {
	// User is a case-insensitive substring match on the author's username.
	User string
	// Safe filters on the safe flag when set.
	Safe *bool
	// CreatedAfter/CreatedBefore bound the creation date range (inclusive).
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	// Search matches a substring across title, body and author username.
	Search string
	// Ordering is a field name with an optional leading '-' for descending.
	Ordering string
}

// orderableFields whitelists what `ordering` may reference; anything else
// falls back to primary-key order.
var orderableFields = map[string]string{
	"id":         "posts.id",
	"created_at": "posts.created_at",
	"title":      "posts.title",
	"safe":       "posts.safe",
}

// Apply appends the filter's predicates and ordering to the query. The query
// must already join users as the post author when User or Search is set;
// applyDetails in the post repository does that unconditionally.
func (f PostFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.User != "" {
		db = db.Where("LOWER(users.username) LIKE ?", "%"+strings.ToLower(f.User)+"%")
	}
	if f.Safe != nil {
		db = db.Where("posts.safe = ?", *f.Safe)
	}
	if f.CreatedAfter != nil {
		db = db.Where("posts.created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("posts.created_at <= ?", *f.CreatedBefore)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		db = db.Where(
			"LOWER(posts.title) LIKE ? OR LOWER(posts.body) LIKE ? OR LOWER(users.username) LIKE ?",
			like, like, like,
		)
	}

	return db.Order(f.orderClause())
}

func (f PostFilter) orderClause() string {
	field := f.Ordering
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")

	column, ok := orderableFields[field]
	if !ok {
		return "posts.id"
	}
	if column == "posts.id" {
		if desc {
			return "posts.id DESC"
		}
		return "posts.id"
	}
	if desc {
		return column + " DESC, posts.id"
	}
	return column + ", posts.id"
}
