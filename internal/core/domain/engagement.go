package domain

import (
	"errors"
	"time"
)

var ErrCommentNotFound = errors.New("comment not found")
var ErrLikeNotFound = errors.New("like not found")

// Like records that a user liked a sandwich. At most one per (user, sandwich)
// pair, enforced by a unique index.
type Like struct {
	ID         string
	UserID     string
	SandwichID string
	CreatedAt  time.Time
}

// Comment is a message on a sandwich. Threads are two levels deep: a reply
// carries the id of a top-level comment in ParentID.
type Comment struct {
	ID         string
	Content    string
	SandwichID string
	UserID     string
	ParentID   string // empty for top-level comments
	CreatedAt  time.Time
}
