package ledger

import (
	"fmt"

	"agora/internal/models"
)

// Restore applies a journaled event directly to the social ledger's state,
// bypassing validation and event emission. Events must be replayed in their
// original sequence order; they were validated when first committed, so a
// replay failure indicates a corrupt or reordered journal.
func (l *SocialLedger) Restore(ev *models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Kind {
	case models.EventProfileCreated:
		var p models.ProfileEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		l.profiles[ev.Actor] = &models.Profile{
			Account:    ev.Actor,
			Username:   p.Username,
			Bio:        p.Bio,
			ContentRef: p.ContentRef,
			Active:     true,
		}

	case models.EventProfileUpdated:
		var p models.ProfileEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		profile, ok := l.profiles[ev.Actor]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown profile %s", ev.Kind, ev.Seq, ev.Actor)
		}
		profile.Username = p.Username
		profile.Bio = p.Bio
		profile.ContentRef = p.ContentRef

	case models.EventPostCreated:
		var p models.PostEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		l.posts[ev.PostID] = &models.Post{
			ID:         ev.PostID,
			Creator:    ev.Actor,
			ContentRef: p.ContentRef,
			Active:     true,
			CreatedAt:  ev.CreatedAt,
		}
		l.lastPostID = ev.PostID

	case models.EventPostLiked:
		post, ok := l.posts[ev.PostID]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown post %d", ev.Kind, ev.Seq, ev.PostID)
		}
		l.likes[likeKey{Account: ev.Actor, PostID: ev.PostID}] = true
		post.LikeCount++

	case models.EventPostUnliked:
		post, ok := l.posts[ev.PostID]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown post %d", ev.Kind, ev.Seq, ev.PostID)
		}
		delete(l.likes, likeKey{Account: ev.Actor, PostID: ev.PostID})
		post.LikeCount--

	case models.EventCommentAdded:
		var p models.CommentEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		post, ok := l.posts[ev.PostID]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown post %d", ev.Kind, ev.Seq, ev.PostID)
		}
		l.comments[p.CommentID] = &models.Comment{
			ID:        p.CommentID,
			PostID:    ev.PostID,
			Creator:   ev.Actor,
			Content:   p.Content,
			Active:    true,
			CreatedAt: ev.CreatedAt,
		}
		l.lastCommentID = p.CommentID
		post.CommentCount++

	case models.EventFollowed:
		var p models.FollowEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		l.follows[followKey{Follower: ev.Actor, Followed: p.Target}] = true
		if follower, ok := l.profiles[ev.Actor]; ok {
			follower.FollowingCount++
		}
		if followed, ok := l.profiles[p.Target]; ok {
			followed.FollowerCount++
		}

	case models.EventUnfollowed:
		var p models.FollowEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		delete(l.follows, followKey{Follower: ev.Actor, Followed: p.Target})
		if follower, ok := l.profiles[ev.Actor]; ok {
			follower.FollowingCount--
		}
		if followed, ok := l.profiles[p.Target]; ok {
			followed.FollowerCount--
		}

	default:
		return fmt.Errorf("replay: unknown social event kind %q at seq %d", ev.Kind, ev.Seq)
	}
	return nil
}

// Restore applies a journaled governance event directly, bypassing validation
// and emission. The same ordering contract as SocialLedger.Restore applies.
func (l *GovernanceLedger) Restore(ev *models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Kind {
	case models.EventProposalCreated:
		var p models.ProposalEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		l.proposals[ev.ProposalID] = &models.Proposal{
			ID:          ev.ProposalID,
			Proposer:    ev.Actor,
			Description: p.Description,
			ContentRef:  p.ContentRef,
			StartTime:   p.StartTime,
			EndTime:     p.EndTime,
		}
		l.lastProposalID = ev.ProposalID

	case models.EventVoteCast:
		var p models.VoteEventPayload
		if err := ev.DecodePayload(&p); err != nil {
			return fmt.Errorf("replay %s seq %d: %w", ev.Kind, ev.Seq, err)
		}
		proposal, ok := l.proposals[ev.ProposalID]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown proposal %d", ev.Kind, ev.Seq, ev.ProposalID)
		}
		l.voted[voteKey{ProposalID: ev.ProposalID, Voter: ev.Actor}] = true
		if p.Support {
			proposal.ForVotes++
		} else {
			proposal.AgainstVotes++
		}

	case models.EventProposalExecuted:
		proposal, ok := l.proposals[ev.ProposalID]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown proposal %d", ev.Kind, ev.Seq, ev.ProposalID)
		}
		proposal.Executed = true

	case models.EventProposalCanceled:
		proposal, ok := l.proposals[ev.ProposalID]
		if !ok {
			return fmt.Errorf("replay %s seq %d: unknown proposal %d", ev.Kind, ev.Seq, ev.ProposalID)
		}
		proposal.Canceled = true

	default:
		return fmt.Errorf("replay: unknown governance event kind %q at seq %d", ev.Kind, ev.Seq)
	}
	return nil
}

// IsSocialEvent reports whether kind belongs to the social ledger's event
// set. Used when splitting a mixed journal between the two ledgers.
func IsSocialEvent(kind string) bool {
	switch kind {
	case models.EventProfileCreated, models.EventProfileUpdated,
		models.EventPostCreated, models.EventPostLiked, models.EventPostUnliked,
		models.EventCommentAdded, models.EventFollowed, models.EventUnfollowed:
		return true
	}
	return false
}
