package ledger

import (
	"context"
	"sync"
	"time"

	"agora/internal/models"
)

type voteKey struct {
	ProposalID uint64
	Voter      string
}

// GovernanceLedger tracks proposals, votes and their execution lifecycle.
// It is independent of the social ledger but follows the same construction:
// single writer lock, explicit caller principal, one event per mutation.
//
// The quorum threshold is a percentage of the votes actually cast, not of
// any external electorate, so for any quorum percentage up to 100 the check
// can never fail once at least one vote exists.
type GovernanceLedger struct {
	mu sync.RWMutex

	proposals map[uint64]*models.Proposal
	voted     map[voteKey]bool

	lastProposalID uint64

	owner           string
	minVotingPeriod time.Duration
	quorumPct       uint64

	sink  EventSink
	clock Clock
}

// NewGovernanceLedger creates an empty governance ledger. The owner account
// is fixed for the ledger's lifetime and may cancel any proposal.
func NewGovernanceLedger(owner string, minVotingPeriod time.Duration, quorumPct uint64, sink EventSink, clock Clock) *GovernanceLedger {
	if clock == nil {
		clock = time.Now
	}
	return &GovernanceLedger{
		proposals:       make(map[uint64]*models.Proposal),
		voted:           make(map[voteKey]bool),
		owner:           owner,
		minVotingPeriod: minVotingPeriod,
		quorumPct:       quorumPct,
		sink:            sink,
		clock:           clock,
	}
}

func (l *GovernanceLedger) emit(ctx context.Context, ev *models.Event) {
	if l.sink == nil {
		return
	}
	l.sink.Publish(ctx, ev)
}

// CreateProposal opens a proposal whose voting window runs from now for the
// given period. Periods shorter than the ledger's minimum are rejected.
func (l *GovernanceLedger) CreateProposal(ctx context.Context, caller, description, contentRef string, votingPeriod time.Duration) (*models.Proposal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if votingPeriod < l.minVotingPeriod {
		return nil, models.NewInvalidArgumentError("voting period below minimum")
	}

	now := l.clock()
	l.lastProposalID++
	proposal := &models.Proposal{
		ID:          l.lastProposalID,
		Proposer:    caller,
		Description: description,
		ContentRef:  contentRef,
		StartTime:   now,
		EndTime:     now.Add(votingPeriod),
	}
	l.proposals[proposal.ID] = proposal

	l.emit(ctx, &models.Event{
		Kind:       models.EventProposalCreated,
		Actor:      caller,
		ProposalID: proposal.ID,
		Payload: models.EncodePayload(models.ProposalEventPayload{
			Description: description,
			ContentRef:  contentRef,
			StartTime:   proposal.StartTime,
			EndTime:     proposal.EndTime,
		}),
		CreatedAt: now,
	})
	out := *proposal
	return &out, nil
}

// CastVote records a for/against vote. Each account votes at most once per
// proposal, and only while the voting window is open.
func (l *GovernanceLedger) CastVote(ctx context.Context, caller string, proposalID uint64, support bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	proposal, err := l.openProposal(proposalID)
	if err != nil {
		return err
	}
	if l.clock().After(proposal.EndTime) {
		return &models.AppError{Code: models.CodePeriodElapsed, Message: "voting period has ended"}
	}
	key := voteKey{ProposalID: proposalID, Voter: caller}
	if l.voted[key] {
		return models.NewEdgeError(models.CodeAlreadyVoted, "already voted")
	}

	l.voted[key] = true
	if support {
		proposal.ForVotes++
	} else {
		proposal.AgainstVotes++
	}

	l.emit(ctx, &models.Event{
		Kind:       models.EventVoteCast,
		Actor:      caller,
		ProposalID: proposalID,
		Payload:    models.EncodePayload(models.VoteEventPayload{Support: support}),
		CreatedAt:  l.clock(),
	})
	return nil
}

// ExecuteProposal marks a proposal executed once its voting window has closed
// with a passing tally.
func (l *GovernanceLedger) ExecuteProposal(ctx context.Context, caller string, proposalID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	proposal, err := l.openProposal(proposalID)
	if err != nil {
		return err
	}
	if !l.clock().After(proposal.EndTime) {
		return &models.AppError{Code: models.CodePeriodNotElapsed, Message: "voting period has not ended"}
	}

	totalVotes := proposal.ForVotes + proposal.AgainstVotes
	quorumVotes := totalVotes * l.quorumPct / 100
	if totalVotes < quorumVotes {
		return &models.AppError{Code: models.CodeQuorumNotMet, Message: "quorum not met"}
	}
	if proposal.ForVotes <= proposal.AgainstVotes {
		return &models.AppError{Code: models.CodeProposalRejected, Message: "proposal did not pass"}
	}

	proposal.Executed = true

	l.emit(ctx, &models.Event{
		Kind:       models.EventProposalExecuted,
		Actor:      caller,
		ProposalID: proposalID,
		CreatedAt:  l.clock(),
	})
	return nil
}

// CancelProposal withdraws a proposal. Only the proposer or the ledger owner
// may cancel.
func (l *GovernanceLedger) CancelProposal(ctx context.Context, caller string, proposalID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	proposal, err := l.openProposal(proposalID)
	if err != nil {
		return err
	}
	if caller != proposal.Proposer && caller != l.owner {
		return models.NewUnauthorizedError("only the proposer or owner may cancel")
	}

	proposal.Canceled = true

	l.emit(ctx, &models.Event{
		Kind:       models.EventProposalCanceled,
		Actor:      caller,
		ProposalID: proposalID,
		CreatedAt:  l.clock(),
	})
	return nil
}

// openProposal returns the proposal unless it is absent, executed or
// canceled. Callers must hold the lock.
func (l *GovernanceLedger) openProposal(proposalID uint64) (*models.Proposal, error) {
	proposal, ok := l.proposals[proposalID]
	if !ok {
		return nil, models.NewNotFoundError("proposal", proposalID)
	}
	if proposal.Executed || proposal.Canceled {
		return nil, models.NewInactiveError("proposal", proposalID)
	}
	return proposal, nil
}

// GetProposal returns a snapshot of the proposal with the given ID.
func (l *GovernanceLedger) GetProposal(proposalID uint64) (*models.Proposal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	proposal, ok := l.proposals[proposalID]
	if !ok {
		return nil, models.NewNotFoundError("proposal", proposalID)
	}
	out := *proposal
	return &out, nil
}

// HasVoted reports whether voter has already voted on proposalID.
func (l *GovernanceLedger) HasVoted(proposalID uint64, voter string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.voted[voteKey{ProposalID: proposalID, Voter: voter}]
}

// TotalProposals returns the current value of the proposal ID sequence.
func (l *GovernanceLedger) TotalProposals() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastProposalID
}

// Owner returns the administrative owner account fixed at construction.
func (l *GovernanceLedger) Owner() string {
	return l.owner
}
