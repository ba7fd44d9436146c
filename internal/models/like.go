package models

import (
	"time"
)

// LikeTarget discriminates what kind of entity a like points at.
type LikeTarget string

const (
	LikeTargetPost    LikeTarget = "post"
	LikeTargetComment LikeTarget = "comment"
)

// Like records that a user liked a post or a comment.
//
// The target is a (kind, id) pair rather than a foreign key, so like rows
// for a target must be cleaned up in the same transaction that deletes the
// target. The combination of UserID, TargetKind and TargetID must be unique.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_user_target" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	TargetKind LikeTarget `gorm:"size:16;not null;uniqueIndex:idx_user_target" json:"target_kind"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_user_target" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}
