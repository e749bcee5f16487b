// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"time"
)

// Event kinds emitted by the social and governance ledgers. Exactly one
// event is emitted per successful mutating operation.
const (
	EventProfileCreated   = "profile_created"
	EventProfileUpdated   = "profile_updated"
	EventPostCreated      = "post_created"
	EventPostLiked        = "post_liked"
	EventPostUnliked      = "post_unliked"
	EventCommentAdded     = "comment_added"
	EventFollowed         = "followed"
	EventUnfollowed       = "unfollowed"
	EventProposalCreated  = "proposal_created"
	EventVoteCast         = "vote_cast"
	EventProposalExecuted = "proposal_executed"
	EventProposalCanceled = "proposal_canceled"
)

// Event is the journal record for one committed ledger mutation. PostID and
// ProposalID are denormalized out of the payload so the journal can answer
// per-post and per-proposal history queries; the full operation data lives in
// the kind-specific Payload. The event stream is the only way to discover
// comments for a post — the ledger itself keeps no such index.
type Event struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement" json:"seq"`
	Kind       string    `gorm:"type:varchar(32);not null;index" json:"kind"`
	Actor      string    `gorm:"type:varchar(64);not null;index" json:"actor"`
	PostID     uint64    `gorm:"index" json:"post_id,omitempty"`
	ProposalID uint64    `gorm:"index" json:"proposal_id,omitempty"`
	Payload    string    `gorm:"type:text" json:"payload,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// ProfileEventPayload accompanies profile_created and profile_updated.
type ProfileEventPayload struct {
	Username   string `json:"username"`
	Bio        string `json:"bio"`
	ContentRef string `json:"content_ref"`
}

// PostEventPayload accompanies post_created.
type PostEventPayload struct {
	ContentRef string `json:"content_ref"`
}

// CommentEventPayload accompanies comment_added.
type CommentEventPayload struct {
	CommentID uint64 `json:"comment_id"`
	Content   string `json:"content"`
}

// FollowEventPayload accompanies followed and unfollowed.
type FollowEventPayload struct {
	Target string `json:"target"`
}

// ProposalEventPayload accompanies proposal_created.
type ProposalEventPayload struct {
	Description string    `json:"description"`
	ContentRef  string    `json:"content_ref"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// VoteEventPayload accompanies vote_cast.
type VoteEventPayload struct {
	Support bool `json:"support"`
}

// EncodePayload marshals a kind-specific payload into the event's Payload
// column. Payload types are plain structs, so marshalling cannot fail in
// practice; a failure here indicates a programming error.
func EncodePayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodePayload unmarshals the event payload into out.
func (e *Event) DecodePayload(out any) error {
	return json.Unmarshal([]byte(e.Payload), out)
}
