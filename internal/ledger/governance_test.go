package ledger

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner     = "owner"
	testMinPeriod = 24 * time.Hour
	testQuorumPct = 51
)

// govForTest returns a governance ledger with a mutable clock.
func govForTest() (*GovernanceLedger, *time.Time, *recordingSink) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink := &recordingSink{}
	l := NewGovernanceLedger(testOwner, testMinPeriod, testQuorumPct, sink, func() time.Time { return now })
	return l, &now, sink
}

func TestCreateProposal(t *testing.T) {
	l, now, sink := govForTest()
	ctx := context.Background()

	_, err := l.CreateProposal(ctx, "alice", "short vote", "cid1", time.Hour)
	assertCode(t, err, models.CodeInvalidArgument)

	proposal, err := l.CreateProposal(ctx, "alice", "upgrade", "cid1", 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.ID)
	assert.Equal(t, "alice", proposal.Proposer)
	assert.Equal(t, *now, proposal.StartTime)
	assert.Equal(t, now.Add(48*time.Hour), proposal.EndTime)
	assert.False(t, proposal.Executed)
	assert.False(t, proposal.Canceled)
	assert.Equal(t, uint64(1), l.TotalProposals())

	require.Len(t, sink.events, 1)
	assert.Equal(t, models.EventProposalCreated, sink.events[0].Kind)
	assert.Equal(t, uint64(1), sink.events[0].ProposalID)
}

func TestCastVote(t *testing.T) {
	l, now, _ := govForTest()
	ctx := context.Background()

	err := l.CastVote(ctx, "bob", 1, true)
	assertCode(t, err, models.CodeNotFound)

	proposal, err := l.CreateProposal(ctx, "alice", "upgrade", "", 48*time.Hour)
	require.NoError(t, err)

	require.NoError(t, l.CastVote(ctx, "bob", proposal.ID, true))
	require.NoError(t, l.CastVote(ctx, "carol", proposal.ID, false))
	assert.True(t, l.HasVoted(proposal.ID, "bob"))
	assert.False(t, l.HasVoted(proposal.ID, "dave"))

	err = l.CastVote(ctx, "bob", proposal.ID, false)
	assertCode(t, err, models.CodeAlreadyVoted)

	got, err := l.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.ForVotes)
	assert.Equal(t, uint64(1), got.AgainstVotes)

	// Voting after the window closes is rejected.
	*now = now.Add(49 * time.Hour)
	err = l.CastVote(ctx, "dave", proposal.ID, true)
	assertCode(t, err, models.CodePeriodElapsed)
}

func TestExecuteProposal(t *testing.T) {
	l, now, sink := govForTest()
	ctx := context.Background()

	proposal, err := l.CreateProposal(ctx, "alice", "upgrade", "", 48*time.Hour)
	require.NoError(t, err)
	require.NoError(t, l.CastVote(ctx, "bob", proposal.ID, true))
	require.NoError(t, l.CastVote(ctx, "carol", proposal.ID, true))
	require.NoError(t, l.CastVote(ctx, "dave", proposal.ID, false))

	err = l.ExecuteProposal(ctx, "alice", proposal.ID)
	assertCode(t, err, models.CodePeriodNotElapsed)

	*now = now.Add(49 * time.Hour)
	require.NoError(t, l.ExecuteProposal(ctx, "alice", proposal.ID))

	got, err := l.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.True(t, got.Executed)

	// Executed proposals are closed to further operations.
	err = l.ExecuteProposal(ctx, "alice", proposal.ID)
	assertCode(t, err, models.CodeInactive)

	last := sink.events[len(sink.events)-1]
	assert.Equal(t, models.EventProposalExecuted, last.Kind)
}

func TestExecuteProposalRejectedTally(t *testing.T) {
	l, now, _ := govForTest()
	ctx := context.Background()

	proposal, err := l.CreateProposal(ctx, "alice", "upgrade", "", 48*time.Hour)
	require.NoError(t, err)
	require.NoError(t, l.CastVote(ctx, "bob", proposal.ID, true))
	require.NoError(t, l.CastVote(ctx, "carol", proposal.ID, false))

	*now = now.Add(49 * time.Hour)
	err = l.ExecuteProposal(ctx, "alice", proposal.ID)
	assertCode(t, err, models.CodeProposalRejected)
}

// The quorum threshold is a percentage of the votes cast, so with any quorum
// percentage up to 100 it cannot reject a proposal that has votes. A no-vote
// proposal still fails, but on the tally, not on quorum.
func TestQuorumCheckNeverFailsWithVotesCast(t *testing.T) {
	l, now, _ := govForTest()
	ctx := context.Background()

	single, err := l.CreateProposal(ctx, "alice", "one voter", "", 48*time.Hour)
	require.NoError(t, err)
	require.NoError(t, l.CastVote(ctx, "bob", single.ID, true))

	empty, err := l.CreateProposal(ctx, "alice", "no voters", "", 48*time.Hour)
	require.NoError(t, err)

	*now = now.Add(49 * time.Hour)

	require.NoError(t, l.ExecuteProposal(ctx, "alice", single.ID))

	err = l.ExecuteProposal(ctx, "alice", empty.ID)
	assertCode(t, err, models.CodeProposalRejected)
}

func TestCancelProposal(t *testing.T) {
	l, _, _ := govForTest()
	ctx := context.Background()

	proposal, err := l.CreateProposal(ctx, "alice", "upgrade", "", 48*time.Hour)
	require.NoError(t, err)

	err = l.CancelProposal(ctx, "mallory", proposal.ID)
	assertCode(t, err, models.CodeUnauthorized)

	// The ledger owner may cancel any proposal.
	require.NoError(t, l.CancelProposal(ctx, testOwner, proposal.ID))
	got, err := l.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.True(t, got.Canceled)

	err = l.CancelProposal(ctx, "alice", proposal.ID)
	assertCode(t, err, models.CodeInactive)
}

func TestCancelProposalByProposer(t *testing.T) {
	l, _, _ := govForTest()
	ctx := context.Background()

	proposal, err := l.CreateProposal(ctx, "alice", "upgrade", "", 48*time.Hour)
	require.NoError(t, err)
	require.NoError(t, l.CancelProposal(ctx, "alice", proposal.ID))

	err = l.CastVote(ctx, "bob", proposal.ID, true)
	assertCode(t, err, models.CodeInactive)
}
