// Package models contains data structures for the application's domain models.
package models

import "time"

// Post is an on-ledger post record. The ledger stores only an opaque content
// reference; the referenced blob lives in the external content store and is
// never interpreted here.
type Post struct {
	ID           uint64    `json:"id"`
	Creator      string    `json:"creator"`
	ContentRef   string    `json:"content_ref"`
	LikeCount    uint64    `json:"like_count"`
	CommentCount uint64    `json:"comment_count"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment is an on-ledger comment. Unlike posts, comment text is stored
// inline rather than content-addressed. Comments are discoverable only
// through the event journal; the ledger keeps no per-post comment index.
type Comment struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"post_id"`
	Creator   string    `json:"creator"`
	Content   string    `json:"content"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
