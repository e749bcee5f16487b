// Package ledger implements the authoritative social and governance state
// machines. Each ledger owns its records exclusively and applies every
// mutating operation atomically under a single writer lock: operations
// serialize in a total order and either fully apply or fully fail. Callers
// are identified by an explicit principal argument; the ledger never derives
// identity from ambient state.
package ledger

import (
	"context"
	"sync"
	"time"

	"agora/internal/models"
)

// EventSink receives one event per committed mutation. Publish is invoked
// while the ledger's write lock is held, so sinks observe events in commit
// order. Sinks must not call back into the ledger.
type EventSink interface {
	Publish(ctx context.Context, ev *models.Event)
}

// Clock supplies ledger time. Injected so tests and replay control timestamps.
type Clock func() time.Time

type likeKey struct {
	Account string
	PostID  uint64
}

type followKey struct {
	Follower string
	Followed string
}

// SocialLedger is the sole authoritative store for profiles, posts, comments,
// like edges and follow edges, together with the post and comment ID
// sequences. Identifiers are assigned sequentially from 1; 0 never refers to
// an existing record.
type SocialLedger struct {
	mu sync.RWMutex

	profiles map[string]*models.Profile
	posts    map[uint64]*models.Post
	comments map[uint64]*models.Comment
	likes    map[likeKey]bool
	follows  map[followKey]bool

	lastPostID    uint64
	lastCommentID uint64

	sink  EventSink
	clock Clock
}

// NewSocialLedger creates an empty social ledger. A nil sink drops events;
// a nil clock defaults to time.Now.
func NewSocialLedger(sink EventSink, clock Clock) *SocialLedger {
	if clock == nil {
		clock = time.Now
	}
	return &SocialLedger{
		profiles: make(map[string]*models.Profile),
		posts:    make(map[uint64]*models.Post),
		comments: make(map[uint64]*models.Comment),
		likes:    make(map[likeKey]bool),
		follows:  make(map[followKey]bool),
		sink:     sink,
		clock:    clock,
	}
}

func (l *SocialLedger) emit(ctx context.Context, ev *models.Event) {
	if l.sink == nil {
		return
	}
	l.sink.Publish(ctx, ev)
}

// CreateProfile registers the caller's profile. Each account gets at most one
// profile, ever.
func (l *SocialLedger) CreateProfile(ctx context.Context, caller, username, bio, contentRef string) (*models.Profile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.profiles[caller]; ok {
		return nil, models.NewAlreadyExistsError("profile", caller)
	}

	profile := &models.Profile{
		Account:    caller,
		Username:   username,
		Bio:        bio,
		ContentRef: contentRef,
		Active:     true,
	}
	l.profiles[caller] = profile

	l.emit(ctx, &models.Event{
		Kind:      models.EventProfileCreated,
		Actor:     caller,
		Payload:   models.EncodePayload(models.ProfileEventPayload{Username: username, Bio: bio, ContentRef: contentRef}),
		CreatedAt: l.clock(),
	})
	out := *profile
	return &out, nil
}

// UpdateProfile overwrites the caller's username, bio and content reference.
// Follower counts are untouched.
func (l *SocialLedger) UpdateProfile(ctx context.Context, caller, username, bio, contentRef string) (*models.Profile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, ok := l.profiles[caller]
	if !ok {
		return nil, models.NewNotFoundError("profile", caller)
	}
	if !profile.Active {
		return nil, models.NewInactiveError("profile", caller)
	}

	profile.Username = username
	profile.Bio = bio
	profile.ContentRef = contentRef

	l.emit(ctx, &models.Event{
		Kind:      models.EventProfileUpdated,
		Actor:     caller,
		Payload:   models.EncodePayload(models.ProfileEventPayload{Username: username, Bio: bio, ContentRef: contentRef}),
		CreatedAt: l.clock(),
	})
	out := *profile
	return &out, nil
}

// CreatePost allocates the next post ID and stores a post pointing at the
// given content reference. The caller must have an active profile.
func (l *SocialLedger) CreatePost(ctx context.Context, caller, contentRef string) (*models.Post, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, ok := l.profiles[caller]
	if !ok {
		return nil, models.NewNotFoundError("profile", caller)
	}
	if !profile.Active {
		return nil, models.NewInactiveError("profile", caller)
	}

	l.lastPostID++
	post := &models.Post{
		ID:         l.lastPostID,
		Creator:    caller,
		ContentRef: contentRef,
		Active:     true,
		CreatedAt:  l.clock(),
	}
	l.posts[post.ID] = post

	l.emit(ctx, &models.Event{
		Kind:      models.EventPostCreated,
		Actor:     caller,
		PostID:    post.ID,
		Payload:   models.EncodePayload(models.PostEventPayload{ContentRef: contentRef}),
		CreatedAt: post.CreatedAt,
	})
	out := *post
	return &out, nil
}

// LikePost records a like edge for (caller, postID) and bumps the post's like
// count. Liking does not require the caller to have a profile; only the post
// must exist and the edge must not already be set.
func (l *SocialLedger) LikePost(ctx context.Context, caller string, postID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	post, err := l.activePost(postID)
	if err != nil {
		return err
	}
	key := likeKey{Account: caller, PostID: postID}
	if l.likes[key] {
		return models.NewEdgeError(models.CodeAlreadyLiked, "post already liked")
	}

	l.likes[key] = true
	post.LikeCount++

	l.emit(ctx, &models.Event{
		Kind:      models.EventPostLiked,
		Actor:     caller,
		PostID:    postID,
		CreatedAt: l.clock(),
	})
	return nil
}

// UnlikePost clears the like edge for (caller, postID) and decrements the
// post's like count.
func (l *SocialLedger) UnlikePost(ctx context.Context, caller string, postID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	post, err := l.activePost(postID)
	if err != nil {
		return err
	}
	key := likeKey{Account: caller, PostID: postID}
	if !l.likes[key] {
		return models.NewEdgeError(models.CodeNotLiked, "post not liked")
	}

	delete(l.likes, key)
	post.LikeCount--

	l.emit(ctx, &models.Event{
		Kind:      models.EventPostUnliked,
		Actor:     caller,
		PostID:    postID,
		CreatedAt: l.clock(),
	})
	return nil
}

// AddComment allocates the next comment ID, stores the comment inline and
// bumps the parent post's comment count. Requires an existing active post and
// an active caller profile.
func (l *SocialLedger) AddComment(ctx context.Context, caller string, postID uint64, content string) (*models.Comment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	post, err := l.activePost(postID)
	if err != nil {
		return nil, err
	}
	profile, ok := l.profiles[caller]
	if !ok {
		return nil, models.NewNotFoundError("profile", caller)
	}
	if !profile.Active {
		return nil, models.NewInactiveError("profile", caller)
	}

	l.lastCommentID++
	comment := &models.Comment{
		ID:        l.lastCommentID,
		PostID:    postID,
		Creator:   caller,
		Content:   content,
		Active:    true,
		CreatedAt: l.clock(),
	}
	l.comments[comment.ID] = comment
	post.CommentCount++

	l.emit(ctx, &models.Event{
		Kind:      models.EventCommentAdded,
		Actor:     caller,
		PostID:    postID,
		Payload:   models.EncodePayload(models.CommentEventPayload{CommentID: comment.ID, Content: content}),
		CreatedAt: comment.CreatedAt,
	})
	out := *comment
	return &out, nil
}

// FollowUser records a follow edge from caller to target and adjusts both
// profiles' counters. Self-follows are rejected; both profiles must exist and
// be active.
func (l *SocialLedger) FollowUser(ctx context.Context, caller, target string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller == target {
		return models.NewEdgeError(models.CodeSelfReference, "cannot follow yourself")
	}
	follower, ok := l.profiles[caller]
	if !ok {
		return models.NewNotFoundError("profile", caller)
	}
	followed, ok := l.profiles[target]
	if !ok {
		return models.NewNotFoundError("profile", target)
	}
	if !follower.Active {
		return models.NewInactiveError("profile", caller)
	}
	if !followed.Active {
		return models.NewInactiveError("profile", target)
	}
	key := followKey{Follower: caller, Followed: target}
	if l.follows[key] {
		return models.NewEdgeError(models.CodeAlreadyFollowing, "already following")
	}

	l.follows[key] = true
	follower.FollowingCount++
	followed.FollowerCount++

	l.emit(ctx, &models.Event{
		Kind:      models.EventFollowed,
		Actor:     caller,
		Payload:   models.EncodePayload(models.FollowEventPayload{Target: target}),
		CreatedAt: l.clock(),
	})
	return nil
}

// UnfollowUser clears the follow edge from caller to target and adjusts both
// counters. Only the edge itself is checked; an edge can only exist between
// profiles that were present when it was set.
func (l *SocialLedger) UnfollowUser(ctx context.Context, caller, target string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := followKey{Follower: caller, Followed: target}
	if !l.follows[key] {
		return models.NewEdgeError(models.CodeNotFollowing, "not following")
	}

	delete(l.follows, key)
	if follower, ok := l.profiles[caller]; ok {
		follower.FollowingCount--
	}
	if followed, ok := l.profiles[target]; ok {
		followed.FollowerCount--
	}

	l.emit(ctx, &models.Event{
		Kind:      models.EventUnfollowed,
		Actor:     caller,
		Payload:   models.EncodePayload(models.FollowEventPayload{Target: target}),
		CreatedAt: l.clock(),
	})
	return nil
}

// activePost returns the stored post or the NotFound/Inactive rejection.
// Callers must hold the lock.
func (l *SocialLedger) activePost(postID uint64) (*models.Post, error) {
	post, ok := l.posts[postID]
	if !ok {
		return nil, models.NewNotFoundError("post", postID)
	}
	if !post.Active {
		return nil, models.NewInactiveError("post", postID)
	}
	return post, nil
}

// GetPost returns a snapshot of the post with the given ID.
func (l *SocialLedger) GetPost(postID uint64) (*models.Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	post, ok := l.posts[postID]
	if !ok {
		return nil, models.NewNotFoundError("post", postID)
	}
	out := *post
	return &out, nil
}

// GetProfile returns a snapshot of the profile for the given account.
func (l *SocialLedger) GetProfile(account string) (*models.Profile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	profile, ok := l.profiles[account]
	if !ok {
		return nil, models.NewNotFoundError("profile", account)
	}
	out := *profile
	return &out, nil
}

// HasLiked reports whether account has liked postID. Unknown pairs are false.
func (l *SocialLedger) HasLiked(account string, postID uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.likes[likeKey{Account: account, PostID: postID}]
}

// IsFollowing reports whether follower follows followed. Unknown pairs are
// false.
func (l *SocialLedger) IsFollowing(follower, followed string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.follows[followKey{Follower: follower, Followed: followed}]
}

// TotalPosts returns the current value of the post ID sequence, which equals
// the number of posts ever created.
func (l *SocialLedger) TotalPosts() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastPostID
}
